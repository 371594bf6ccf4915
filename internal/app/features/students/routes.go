// internal/app/features/students/routes.go
package students

import (
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// RosterRoutes serves the admin landing page at /home.
func RosterRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeRoster)
	return r
}

// Routes serves roster maintenance under /students.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))
		pr.Get("/new", h.ServeNew)
		pr.Post("/new", h.HandleCreate)
		pr.Get("/import", h.ServeImport)
		pr.Post("/import", h.HandleImport)
		pr.Get("/{mssv}/edit", h.ServeEdit)
		pr.Post("/{mssv}/edit", h.HandleEdit)
		pr.Post("/{mssv}/delete", h.HandleDelete)
	})
	return r
}
