package home

import (
	"net/http"

	"github.com/dalemusser/classhub/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler sends visitors to the page that fits their role.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRoot redirects to the role home, or to /login when nobody is signed in
// or the stored role is not recognised.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	var role string
	if u, ok := auth.CurrentUser(r); ok {
		role = u.Role
	}
	http.Redirect(w, r, auth.HomeFor(role), http.StatusSeeOther)
}

// NotFound catches every unmatched path. Unknown pages are not shown; the
// visitor lands where ServeRoot would send them.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Log.Debug("unmatched path", zap.String("path", r.URL.Path))
	h.ServeRoot(w, r)
}
