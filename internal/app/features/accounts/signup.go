// internal/app/features/accounts/signup.go
package accounts

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

func (h *Handler) signupData(w http.ResponseWriter, r *http.Request, msg string, f accountForm) signupData {
	return signupData{
		BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Student sign-up", "/login"),
		Error:  msg,
		Form:   f,
	}
}

// ServeSignup renders the public student sign-up form.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, auth.HomeFor(u.Role), http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "accounts_signup", h.signupData(w, r, "", accountForm{Role: models.RoleStudent}))
}

// HandleSignup registers a student account with its roster profile. The
// role is always student on this page.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/signup")
		return
	}
	r.Form.Set("role", models.RoleStudent)
	c, f := readForm(r)

	if msg := validate(c, f); msg != "" {
		templates.Render(w, r, "accounts_signup", h.signupData(w, r, msg, f))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	if err := h.GW.Register(ctx, registerRequest(c, f)); err != nil {
		h.Log.Info("signup rejected", zap.String("email", c.Email), zap.Error(err))
		templates.Render(w, r, "accounts_signup", h.signupData(w, r, gateway.MessageFor(err, "Registration failed."), f))
		return
	}

	h.AuditLog.AccountRegistered(ctx, r, c.Email, c.Email, models.RoleStudent)
	h.SessionMgr.AddToast(w, r, auth.ToastSuccess, "Account created. Please sign in.")
	http.Redirect(w, r, "/login?role=student", http.StatusSeeOther)
}
