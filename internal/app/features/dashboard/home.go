// internal/app/features/dashboard/home.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/notifyflow"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// upcomingLimit caps the sessions listed on the home page.
const upcomingLimit = 3

type homeData struct {
	viewdata.BaseVM

	Student *models.Student

	Upcoming    []models.ClassSession
	SessionsErr string

	Present   int
	Absent    int
	AttendErr string

	GroupName string
	HasGroup  bool
	Unread    int
	Alerts    []string
	GroupErr  string
}

// buildHome fetches the three dashboard panels in parallel. A failed panel
// shows its own message; the others still render.
func (h *Handler) buildHome(ctx context.Context, w http.ResponseWriter, r *http.Request) homeData {
	data := homeData{BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Home", "/student/home")}
	u, _ := auth.CurrentUser(r)
	if u == nil || u.Student == nil {
		data.SessionsErr = notifyflow.Message(notifyflow.ErrNoStudent)
		return data
	}
	data.Student = u.Student
	mssv := u.Student.MSSV
	today := h.Now().Format("2006-01-02")

	var (
		sessions []models.ClassSession
		records  []models.AttendanceRecord
		view     notifyflow.View
	)
	// Each branch keeps its own error so one failure does not cancel the
	// other fetches.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if sessions, err = h.GW.StudentSessions(ctx, mssv); err != nil {
			data.SessionsErr = gateway.MessageFor(err, "Could not load your schedule.")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if records, err = h.GW.StudentAttendance(ctx, mssv); err != nil {
			data.AttendErr = gateway.MessageFor(err, "Could not load your attendance.")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if view, err = h.Notify.Load(ctx, mssv); err != nil {
			data.GroupErr = notifyflow.Message(err)
		}
		return nil
	})
	_ = g.Wait()

	models.SortSessions(sessions)
	for _, s := range sessions {
		if s.Date >= today && len(data.Upcoming) < upcomingLimit {
			data.Upcoming = append(data.Upcoming, s)
		}
	}
	for _, rec := range records {
		switch rec.Status {
		case models.StatusPresent:
			data.Present++
		case models.StatusAbsent:
			data.Absent++
		}
	}
	if view.HasGroup() {
		data.HasGroup = true
		data.GroupName = view.Group.Name
		data.Unread = view.UnreadCount()
		data.Alerts = view.Alerts
	}
	return data
}

// ServeHome handles GET /student/home.
func (h *Handler) ServeHome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	data := h.buildHome(ctx, w, r)
	h.Log.Debug("student home served", zap.String("user", data.UserName))
	templates.Render(w, r, "student_home", data)
}
