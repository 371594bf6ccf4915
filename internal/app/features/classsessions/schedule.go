// internal/app/features/classsessions/schedule.go
package classsessions

import (
	"context"
	"net/http"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type scheduleData struct {
	viewdata.BaseVM
	Sessions  []models.ClassSession
	LoadError string
}

func (h *Handler) buildSchedule(ctx context.Context, w http.ResponseWriter, r *http.Request) scheduleData {
	data := scheduleData{BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Schedule", "/student/home")}
	mssv, ok := authz.StudentMSSV(r)
	if !ok {
		data.LoadError = "Your student profile is missing. Please sign in again."
		return data
	}
	sessions, err := h.GW.StudentSessions(ctx, mssv)
	if err != nil {
		data.LoadError = gateway.MessageFor(err, "Could not load your schedule.")
		return data
	}
	models.SortSessions(sessions)
	data.Sessions = sessions
	return data
}

// ServeSchedule lists the sessions the signed-in student is enrolled in.
func (h *Handler) ServeSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	templates.Render(w, r, "student_schedule", h.buildSchedule(ctx, w, r))
}
