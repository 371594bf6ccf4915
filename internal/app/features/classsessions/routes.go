// internal/app/features/classsessions/routes.go
package classsessions

import (
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeList)
		pr.Post("/sessions", h.HandleCreate)
		pr.Post("/enroll", h.HandleEnroll)
	})
	return r
}

// StudentRoutes serves a student's own timetable; mount it at
// "/student/schedule".
func StudentRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleStudent))
	r.Get("/", h.ServeSchedule)
	return r
}
