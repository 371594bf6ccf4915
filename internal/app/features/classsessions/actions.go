// internal/app/features/classsessions/actions.go
package classsessions

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

func pageURL(id models.ID) string {
	if id.IsZero() {
		return "/class-management"
	}
	return "/class-management?session=" + url.QueryEscape(id.String())
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /class-management/sessions                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/class-management")
		return
	}
	draft := models.ClassSession{
		Date:     strings.TrimSpace(r.FormValue("date")),
		TimeSlot: strings.TrimSpace(r.FormValue("time_slot")),
		Room:     strings.TrimSpace(r.FormValue("room")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	if res := inputval.Validate(draft); res.HasErrors() {
		templates.Render(w, r, "sessions_page", h.buildPage(ctx, w, r, "", draft, res.First()))
		return
	}

	created, err := h.GW.CreateSession(ctx, draft)
	if err != nil {
		h.Log.Info("create session rejected", zap.Error(err))
		templates.Render(w, r, "sessions_page", h.buildPage(ctx, w, r, "", draft, gateway.MessageFor(err, "Could not create the session.")))
		return
	}

	h.AuditLog.SessionCreated(ctx, r, authz.ActorEmail(r), created.ID.String(), created.Label())
	h.SessionMgr.AddToast(w, r, auth.ToastSuccess, "Session "+created.Label()+" created.")
	http.Redirect(w, r, pageURL(created.ID), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /class-management/enroll                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleEnroll adds the checked students to a session. Re-enrolling an
// already enrolled student is a no-op in the backend.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/class-management")
		return
	}
	sessionID := models.ID(strings.TrimSpace(r.FormValue("session_id")))
	mssvs := cleanIDs(r.Form["students"])
	back := pageURL(sessionID)

	if sessionID.IsZero() {
		h.SessionMgr.AddToast(w, r, auth.ToastError, "Choose a class session first.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if len(mssvs) == 0 {
		h.SessionMgr.AddToast(w, r, auth.ToastError, "Select at least one student to enroll.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	if err := h.GW.EnrollStudents(ctx, sessionID, mssvs); err != nil {
		h.Log.Info("enroll rejected", zap.String("session_id", sessionID.String()), zap.Error(err))
		h.SessionMgr.AddToast(w, r, auth.ToastError, gateway.MessageFor(err, "Could not enroll the students."))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	h.AuditLog.StudentsEnrolled(ctx, r, authz.ActorEmail(r), sessionID.String(), mssvs)
	h.SessionMgr.AddToast(w, r, auth.ToastSuccess, fmt.Sprintf("Enrolled %d student(s).", len(mssvs)))
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// cleanIDs trims, drops blanks and de-duplicates, keeping first-seen order.
func cleanIDs(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
