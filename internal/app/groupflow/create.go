// internal/app/groupflow/create.go
package groupflow

import (
	"context"
	"fmt"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/domain/models"
)

// validateCreate checks a create-group draft without touching the network.
func validateCreate(st *State) (models.GroupMode, *ValidationError) {
	if st.SelectedSession.IsZero() {
		return "", invalid("session", ErrNoSession)
	}
	mode, ok := models.ParseGroupMode(string(st.Settings.Mode))
	if !ok {
		return "", invalid("mode", ErrBadMode)
	}
	if st.Settings.Min < 1 || st.Settings.Max < st.Settings.Min {
		return "", invalid("min_members", ErrBadBounds)
	}
	if mode.RequiresSelection() && len(st.Selected) == 0 {
		return "", invalid("students", ErrEmptySelection)
	}
	return mode, nil
}

// CreateGroup submits the create-group draft. Random mode lets the backend
// partition every ungrouped student and ignores the selection; teacher and
// student modes form one group from the selection. On success the
// selection is cleared and the session reloaded.
func (e *Engine) CreateGroup(ctx context.Context, st *State, rep Reporter) error {
	mode, ve := validateCreate(st)
	if ve != nil {
		return e.reject(rep, OpCreateGroup, ve)
	}
	defer begin(st)()

	req := gateway.CreateGroupRequest{
		SessionID:  st.SelectedSession,
		Mode:       mode,
		MinMembers: st.Settings.Min,
		MaxMembers: st.Settings.Max,
	}
	if mode.RequiresSelection() {
		req.Students = append([]string(nil), st.Selected...)
	}

	created, err := e.gw.CreateGroup(ctx, req)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		e.fail(rep, OpCreateGroup, st, err, msgCreate)
		return err
	}

	st.ClearSelection()
	if st.EditMode == EditSelecting {
		st.EditMode = EditNone
	}
	succeed(rep, OpCreateGroup, createdMessage(mode, created))
	return e.reload(ctx, st, rep)
}

func createdMessage(mode models.GroupMode, created []models.Group) string {
	switch {
	case len(created) > 1:
		return fmt.Sprintf("%d groups created (%s).", len(created), mode.Label())
	case len(created) == 1 && created[0].Name != "":
		return fmt.Sprintf("%s created with %d members.", created[0].Name, created[0].MemberCount)
	}
	return "Group created."
}
