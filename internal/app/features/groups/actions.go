// internal/app/features/groups/actions.go
package groups

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/groupflow"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/domain/models"
)

// action parses the form into a State and runs fn with a toast reporter.
// When fn returns, the browser is sent back to the page for the resulting
// state.
func (h *Handler) action(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, st *groupflow.State, rep *toastReporter)) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", basePath)
		return
	}
	st := groupflow.FromValues(r.PostForm)
	rep := &toastReporter{w: w, r: r, sm: h.SessionMgr}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Gateway(), h.Log, "group action")
	defer cancel()

	fn(ctx, st, rep)
	http.Redirect(w, r, st.URL(basePath), http.StatusSeeOther)
}

func formID(r *http.Request, key string) models.ID {
	return models.ID(strings.TrimSpace(r.PostForm.Get(key)))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session and refresh                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSelectSession switches sessions and drops every draft.
func (h *Handler) HandleSelectSession(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st *groupflow.State, rep *toastReporter) {
		_ = h.Engine.SelectSession(ctx, st, st.SelectedSession, rep)
	})
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st *groupflow.State, rep *toastReporter) {
		_ = h.Engine.Refresh(ctx, st, rep)
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Create                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleCreate submits the create-group draft. A rejected draft comes back
// with its selection and settings intact.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st *groupflow.State, rep *toastReporter) {
		_ = h.Engine.CreateGroup(ctx, st, rep)
		if rep.succeeded(groupflow.OpCreateGroup) {
			h.AuditLog.GroupCreated(ctx, r, authz.ActorEmail(r), sessionIDOf(st),
				string(st.Settings.Mode), st.Settings.Min, st.Settings.Max)
		}
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Membership                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleBeginEdit opens a group in add or remove mode.
func (h *Handler) HandleBeginEdit(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st *groupflow.State, rep *toastReporter) {
		mode := groupflow.ParseEditMode(r.PostForm.Get("edit_mode"))
		_ = h.Engine.BeginEdit(st, formID(r, "group_id"), mode, rep)
	})
}

func (h *Handler) HandleCancelEdit(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st *groupflow.State, rep *toastReporter) {
		h.Engine.CancelEdit(st)
	})
}

// HandleAddMembers adds the checked students to the group being edited.
func (h *Handler) HandleAddMembers(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st *groupflow.State, rep *toastReporter) {
		groupID := st.EditingGroup
		selected := append([]string(nil), st.Selected...)
		_ = h.Engine.AddMembers(ctx, st, rep)
		if rep.succeeded(groupflow.OpAddMembers) {
			h.AuditLog.MembersAdded(ctx, r, authz.ActorEmail(r), sessionIDOf(st), groupID.String(), selected)
		}
	})
}

// HandleRemoveMember removes one student. The edit stays open unless the
// group was deleted with its last member.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st *groupflow.State, rep *toastReporter) {
		groupID := formID(r, "group_id")
		mssv := strings.TrimSpace(r.PostForm.Get("mssv"))
		_ = h.Engine.RemoveMember(ctx, st, groupID, mssv, rep)
		if rep.succeeded(groupflow.OpRemoveMember) {
			h.AuditLog.MemberRemoved(ctx, r, authz.ActorEmail(r), sessionIDOf(st), groupID.String(), mssv)
		}
	})
}

// HandleDelete deletes a whole group.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st *groupflow.State, rep *toastReporter) {
		groupID := formID(r, "group_id")
		// Load first so the toast can name the group.
		_ = h.Engine.Reload(ctx, st, nil)
		_ = h.Engine.DeleteGroup(ctx, st, groupID, rep)
		if rep.succeeded(groupflow.OpDeleteGroup) {
			h.AuditLog.GroupDeleted(ctx, r, authz.ActorEmail(r), sessionIDOf(st), groupID.String())
		}
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Notifications                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleOpenCompose(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st *groupflow.State, rep *toastReporter) {
		h.Engine.OpenCompose(st)
	})
}

func (h *Handler) HandleCloseCompose(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, func(ctx context.Context, st *groupflow.State, rep *toastReporter) {
		h.Engine.CloseCompose(st)
	})
}

// HandleNotify broadcasts the draft message to the selected session. The
// draft never travels in a URL, so a failed send re-renders the page with
// the dialog open and the message kept.
func (h *Handler) HandleNotify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", basePath)
		return
	}
	st := groupflow.FromValues(r.PostForm)
	st.Composing = true

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Gateway(), h.Log, "send notification")
	defer cancel()

	var rec groupflow.Recorder
	_ = h.Engine.SendNotification(ctx, st, authz.ActorEmail(r), &rec)
	if out := rec.Last(); out.OK {
		h.AuditLog.NotificationSent(ctx, r, authz.ActorEmail(r), sessionIDOf(st))
		rep := &toastReporter{w: w, r: r, sm: h.SessionMgr}
		rep.Report(out)
		http.Redirect(w, r, st.URL(basePath), http.StatusSeeOther)
		return
	}

	errs := failures{}
	for _, o := range rec.Failures() {
		errs.Report(o)
	}
	h.load(ctx, st, &errs)
	h.render(w, r, st, errs.msgs)
}
