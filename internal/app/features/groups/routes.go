// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServePage)
		pr.Get("/export", h.ServeExport)
		pr.Post("/session", h.HandleSelectSession)
		pr.Post("/refresh", h.HandleRefresh)
		pr.Post("/create", h.HandleCreate)
		pr.Post("/edit", h.HandleBeginEdit)
		pr.Post("/cancel", h.HandleCancelEdit)
		pr.Post("/add", h.HandleAddMembers)
		pr.Post("/remove", h.HandleRemoveMember)
		pr.Post("/delete", h.HandleDelete)
		pr.Post("/compose", h.HandleOpenCompose)
		pr.Post("/compose/cancel", h.HandleCloseCompose)
		pr.Post("/notify", h.HandleNotify)
	})
	return r
}
