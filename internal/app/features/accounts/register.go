// internal/app/features/accounts/register.go
package accounts

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// buildAccounts loads the account list for the admin page. A load failure
// is shown on the page instead of failing the request.
func (h *Handler) buildAccounts(ctx context.Context, w http.ResponseWriter, r *http.Request, msg string, f accountForm) accountsData {
	data := accountsData{
		BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Accounts", "/home"),
		Error:  msg,
		Form:   f,
		Roles:  roleOptions(f.Role),
	}
	accs, err := h.GW.ListAccounts(ctx)
	if err != nil {
		h.Log.Warn("list accounts failed", zap.Error(err))
		data.LoadError = gateway.MessageFor(err, "Could not load accounts.")
		return data
	}
	data.Accounts = accountRows(accs, authz.ActorEmail(r))
	return data
}

func (h *Handler) ServeAccounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()
	templates.Render(w, r, "accounts_list", h.buildAccounts(ctx, w, r, "", accountForm{Role: models.RoleStudent}))
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/register")
		return
	}
	c, f := readForm(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	if msg := validate(c, f); msg != "" {
		templates.Render(w, r, "accounts_list", h.buildAccounts(ctx, w, r, msg, f))
		return
	}

	if err := h.GW.Register(ctx, registerRequest(c, f)); err != nil {
		h.Log.Info("register rejected", zap.String("email", c.Email), zap.Error(err))
		templates.Render(w, r, "accounts_list", h.buildAccounts(ctx, w, r, gateway.MessageFor(err, "Registration failed."), f))
		return
	}

	h.AuditLog.AccountRegistered(ctx, r, authz.ActorEmail(r), c.Email, c.Role)
	h.SessionMgr.AddToast(w, r, auth.ToastSuccess, "Account "+c.Email+" created.")
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register/{id}/delete                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := models.ID(strings.TrimSpace(chi.URLParam(r, "id")))
	if id.IsZero() {
		uierrors.RenderBadRequest(w, r, "Missing account id.", "/register")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	if err := h.GW.DeleteAccount(ctx, id); err != nil {
		h.Log.Warn("delete account failed", zap.String("id", id.String()), zap.Error(err))
		h.SessionMgr.AddToast(w, r, auth.ToastError, gateway.MessageFor(err, "Could not delete the account."))
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	h.AuditLog.AccountDeleted(ctx, r, authz.ActorEmail(r), id.String())
	h.SessionMgr.AddToast(w, r, auth.ToastSuccess, "Account deleted.")
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}
