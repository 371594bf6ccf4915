// Package groupflow runs the admin group workflow for one class session:
// listing sessions, deriving the ungrouped students, creating groups under a
// grouping mode, editing membership, deleting groups and broadcasting
// notifications to the session.
//
// Every operation works on a caller-owned *State and reports its results
// through a Reporter. Operations never panic and never leave State.Loading
// set.
package groupflow

import (
	"context"
	"errors"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/domain/grouping"
	"github.com/dalemusser/classhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Gateway is the slice of the backend the engine needs.
// *gateway.Client satisfies it.
type Gateway interface {
	ListSessions(ctx context.Context) ([]models.ClassSession, error)
	StudentsBySession(ctx context.Context, sessionID models.ID) ([]models.Student, error)
	GroupsBySession(ctx context.Context, sessionID models.ID) ([]models.Group, error)
	CreateGroup(ctx context.Context, req gateway.CreateGroupRequest) ([]models.Group, error)
	UpdateGroupMembers(ctx context.Context, groupID models.ID, mssvs []string) (models.Group, error)
	DeleteGroup(ctx context.Context, groupID models.ID) error
	SendNotification(ctx context.Context, sessionID models.ID, message, createdBy string) error
}

// Fallback messages used when the backend gives none.
const (
	msgLoadSessions = "Could not load class sessions."
	msgLoadStudents = "Could not load the students for this session."
	msgLoadGroups   = "Could not load the groups for this session."
	msgCreate       = "Could not create the group."
	msgUpdate       = "Could not update the group."
	msgDelete       = "Could not delete the group."
	msgNotify       = "Could not send the notification."
	msgGroupGone    = "That group no longer exists."
)

// Engine is stateless; one Engine serves every request.
type Engine struct {
	gw  Gateway
	log *zap.Logger
}

// New builds an Engine over gw.
func New(gw Gateway, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{gw: gw, log: logger}
}

// begin marks st as loading and returns the cleanup that clears it.
func begin(st *State) func() {
	st.Loading = true
	return func() { st.Loading = false }
}

// fail logs err and reports it with the gateway's message or fallback.
func (e *Engine) fail(rep Reporter, op Op, st *State, err error, fallback string) {
	e.log.Warn("group workflow call failed",
		zap.String("op", string(op)),
		zap.String("session_id", st.SelectedSession.String()),
		zap.Error(err))
	report(rep, Outcome{Op: op, Message: gateway.MessageFor(err, fallback)})
}

func (e *Engine) reject(rep Reporter, op Op, ve *ValidationError) error {
	e.log.Debug("group workflow input rejected", zap.String("op", string(op)), zap.Error(ve))
	report(rep, Outcome{Op: op, Message: ve.Message()})
	return ve
}

func succeed(rep Reporter, op Op, msg string) {
	report(rep, Outcome{Op: op, OK: true, Message: msg})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Loading                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// ListSessions fetches every class session. On failure Sessions is empty.
// A SelectedSession that is no longer listed is dropped.
func (e *Engine) ListSessions(ctx context.Context, st *State, rep Reporter) error {
	defer begin(st)()
	return e.listSessions(ctx, st, rep)
}

func (e *Engine) listSessions(ctx context.Context, st *State, rep Reporter) error {
	sessions, err := e.gw.ListSessions(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		st.Sessions = nil
		e.fail(rep, OpListSessions, st, err, msgLoadSessions)
		return err
	}
	st.Sessions = sessions
	if !st.SelectedSession.IsZero() && st.Session() == nil {
		st.SelectedSession = ""
		st.resetEdit()
		st.ClearSelection()
	}
	return nil
}

// SelectSession switches to session id, discarding edit state, the draft
// selection and the draft message, and loads the session's data. Selecting
// the same session again retries a failed load.
func (e *Engine) SelectSession(ctx context.Context, st *State, id models.ID, rep Reporter) error {
	defer begin(st)()
	st.SelectedSession = id
	st.resetEdit()
	st.ClearSelection()
	st.DraftMessage = ""
	st.Composing = false
	if id.IsZero() {
		st.Students, st.Groups = nil, nil
		return nil
	}
	return e.reload(ctx, st, rep)
}

// Load is the page-view entry point: list sessions and, when one is
// selected, load its students and groups. Drafts in st are kept.
func (e *Engine) Load(ctx context.Context, st *State, rep Reporter) error {
	defer begin(st)()
	if err := e.listSessions(ctx, st, rep); err != nil {
		st.Students, st.Groups = nil, nil
		return err
	}
	return e.reload(ctx, st, rep)
}

// Reload re-fetches the selected session's enrolled students and groups and
// recomputes the ungrouped list.
func (e *Engine) Reload(ctx context.Context, st *State, rep Reporter) error {
	defer begin(st)()
	return e.reload(ctx, st, rep)
}

func (e *Engine) reload(ctx context.Context, st *State, rep Reporter) error {
	if st.SelectedSession.IsZero() {
		st.Students, st.Groups = nil, nil
		return nil
	}
	sessionID := st.SelectedSession

	var (
		enrolled    []models.Student
		groups      []models.Group
		studentsErr error
		groupsErr   error
	)
	// A plain Group never cancels, so both fetches always finish; each
	// branch also keeps its own error for its own failure report.
	var g errgroup.Group
	g.Go(func() error {
		enrolled, studentsErr = e.gw.StudentsBySession(ctx, sessionID)
		return studentsErr
	})
	g.Go(func() error {
		groups, groupsErr = e.gw.GroupsBySession(ctx, sessionID)
		return groupsErr
	})
	waitErr := g.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if groupsErr != nil {
		st.Groups = nil
		e.fail(rep, OpReload, st, groupsErr, msgLoadGroups)
	} else {
		st.Groups = groups
	}
	if studentsErr != nil {
		e.fail(rep, OpReload, st, studentsErr, msgLoadStudents)
	}
	if waitErr != nil {
		st.Students = nil
		return errors.Join(studentsErr, groupsErr)
	}

	st.Students = grouping.Ungrouped(enrolled, groups)
	st.keepSelectable()
	if !st.EditingGroup.IsZero() && st.Editing() == nil {
		st.resetEdit()
	}
	return nil
}

// Refresh resets every draft and edit state to defaults and reloads
// sessions and, when one is still selected, its students and groups.
func (e *Engine) Refresh(ctx context.Context, st *State, rep Reporter) error {
	defer begin(st)()
	st.resetDrafts()
	if err := e.listSessions(ctx, st, rep); err != nil {
		st.Students, st.Groups = nil, nil
		return err
	}
	if err := e.reload(ctx, st, rep); err != nil {
		return err
	}
	succeed(rep, OpRefresh, "Data refreshed.")
	return nil
}

// ensureGroup loads the session's groups when st has none in memory, so
// membership edits always start from the backend's current list.
func (e *Engine) ensureGroup(ctx context.Context, st *State, op Op, id models.ID, rep Reporter) (*models.Group, error) {
	if g := models.FindGroup(st.Groups, id); g != nil {
		return g, nil
	}
	if err := e.reload(ctx, st, rep); err != nil {
		return nil, err
	}
	if g := models.FindGroup(st.Groups, id); g != nil {
		return g, nil
	}
	report(rep, Outcome{Op: op, Message: msgGroupGone})
	return nil, invalid("group", ErrNoGroup)
}
