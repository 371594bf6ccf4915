// internal/app/features/classsessions/list.go
package classsessions

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type sessionRow struct {
	ID       string
	Label    string
	Date     string
	TimeSlot string
	Room     string
	Selected bool
}

type pageData struct {
	viewdata.BaseVM
	Error     string
	LoadError string

	Sessions []sessionRow
	Draft    models.ClassSession

	Selected  *sessionRow
	Enrolled  []models.Student
	Available []models.Student
	DetailErr string
}

func rows(ss []models.ClassSession, selected models.ID) []sessionRow {
	out := make([]sessionRow, 0, len(ss))
	for _, s := range ss {
		out = append(out, sessionRow{
			ID:       s.ID.String(),
			Label:    s.Label(),
			Date:     s.Date,
			TimeSlot: s.TimeSlot,
			Room:     s.Room,
			Selected: s.ID == selected,
		})
	}
	return out
}

// buildPage loads the session list and, for a selected session, its
// enrolled students and the students not yet enrolled.
func (h *Handler) buildPage(ctx context.Context, w http.ResponseWriter, r *http.Request, selected models.ID, draft models.ClassSession, msg string) pageData {
	data := pageData{
		BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Class sessions", "/class-management"),
		Error:  msg,
		Draft:  draft,
	}

	sessions, err := h.GW.ListSessions(ctx)
	if err != nil {
		h.Log.Warn("list sessions failed", zap.Error(err))
		data.LoadError = gateway.MessageFor(err, "Could not load class sessions.")
		return data
	}
	data.Sessions = rows(sessions, selected)
	for i := range data.Sessions {
		if data.Sessions[i].Selected {
			data.Selected = &data.Sessions[i]
		}
	}
	if data.Selected == nil {
		return data
	}

	var (
		enrolled, all []models.Student
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		enrolled, err = h.GW.StudentsBySession(gctx, selected)
		return err
	})
	g.Go(func() (err error) {
		all, err = h.GW.ListStudents(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.Log.Warn("load session detail failed", zap.String("session_id", selected.String()), zap.Error(err))
		data.DetailErr = gateway.MessageFor(err, "Could not load the students for this session.")
		return data
	}
	data.Enrolled = enrolled
	data.Available = notEnrolled(all, enrolled)
	return data
}

func notEnrolled(all, enrolled []models.Student) []models.Student {
	in := make(map[string]bool, len(enrolled))
	for _, s := range enrolled {
		in[s.MSSV] = true
	}
	out := make([]models.Student, 0, len(all))
	for _, s := range all {
		if !in[s.MSSV] {
			out = append(out, s)
		}
	}
	return out
}

// ServeList handles GET /class-management.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	selected := models.ID(strings.TrimSpace(query.Get(r, "session")))
	templates.Render(w, r, "sessions_page", h.buildPage(ctx, w, r, selected, models.ClassSession{}, ""))
}
