// internal/app/features/students/roster.go
package students

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
)

type rosterData struct {
	viewdata.BaseVM
	Query     string
	Students  []models.Student
	Total     int
	Shown     int
	LoadError string
}

// buildRoster lists the students matching q. The backend returns the full
// roster; filtering happens here.
func (h *Handler) buildRoster(ctx context.Context, w http.ResponseWriter, r *http.Request, q string) rosterData {
	data := rosterData{
		BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Students", "/home"),
		Query:  q,
	}
	all, err := h.GW.ListStudents(ctx)
	if err != nil {
		h.Log.Warn("list students failed", zap.Error(err))
		data.LoadError = gateway.MessageFor(err, "Could not load students.")
		return data
	}
	data.Students = models.FilterStudents(all, q)
	data.Total = len(all)
	data.Shown = len(data.Students)
	return data
}

// ServeRoster handles GET /home for admins.
func (h *Handler) ServeRoster(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	q := strings.TrimSpace(query.Get(r, "q"))
	templates.Render(w, r, "students_roster", h.buildRoster(ctx, w, r, q))
}
