// internal/app/features/attendance/routes.go
package attendance

import (
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeSheet)
		pr.Post("/mark", h.HandleMark)
		pr.Get("/export", h.ServeExport)
	})
	return r
}

// StudentRoutes serves a student's own attendance history; mount it at
// "/student/attendance".
func StudentRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleStudent))
	r.Get("/", h.ServeMine)
	return r
}
