// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/auditlog"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/ratelimit"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// Gateway is the backend call the login page needs.
type Gateway interface {
	Login(ctx context.Context, email, password, role string) (models.Identity, error)
}

type Handler struct {
	GW         Gateway
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter
}

func NewHandler(gw Gateway, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		GW:         gw,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Limiter:    limiter,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type roleOption struct {
	Value    string
	Label    string
	Selected bool
}

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Email     string
	Roles     []roleOption
	ReturnURL string
}

type loginInput struct {
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Password"`
	Role     string `validate:"required,role" label:"Role"`
}

func roleOptions(selected string) []roleOption {
	if selected == "" {
		selected = models.RoleAdmin
	}
	return []roleOption{
		{Value: models.RoleAdmin, Label: "Admin", Selected: selected == models.RoleAdmin},
		{Value: models.RoleStudent, Label: "Student", Selected: selected == models.RoleStudent},
	}
}

func (h *Handler) formData(w http.ResponseWriter, r *http.Request, msg, email, role, ret string) loginFormData {
	return loginFormData{
		BaseVM:    viewdata.NewBaseVM(w, r, h.SessionMgr, "Sign in", "/"),
		Error:     msg,
		Email:     email,
		Roles:     roleOptions(role),
		ReturnURL: ret,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, auth.HomeFor(u.Role), http.StatusSeeOther)
		return
	}
	ret := query.Get(r, "return")
	templates.Render(w, r, "login", h.formData(w, r, "", "", query.Get(r, "role"), ret))
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/login")
		return
	}

	in := loginInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Role:     strings.ToLower(strings.TrimSpace(r.FormValue("role"))),
	}
	ret := strings.TrimSpace(r.FormValue("return"))

	if res := inputval.Validate(in); res.HasErrors() {
		h.renderFormWithError(w, r, res.First(), in.Email, in.Role, ret)
		return
	}

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, in.Email); !ok {
			h.AuditLog.LoginRateLimited(r.Context(), r, in.Email)
			h.renderFormWithError(w, r, reason, in.Email, in.Role, ret)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	id, err := h.GW.Login(ctx, in.Email, in.Password, in.Role)
	if err != nil {
		msg := gateway.MessageFor(err, "Sign in failed.")
		h.Log.Info("login rejected", zap.String("email", in.Email), zap.String("role", in.Role), zap.Error(err))
		h.AuditLog.LoginFailed(ctx, r, in.Email, in.Role, msg)
		h.renderFormWithError(w, r, msg, in.Email, in.Role, ret)
		return
	}
	if id.Role == "" {
		id.Role = in.Role
	}

	if err := h.SessionMgr.SignIn(w, r, id); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Unable to create session. Please try again.", "/login")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}
	h.AuditLog.LoginSuccess(ctx, r, id.Email, id.Role)
	h.SessionMgr.AddToast(w, r, auth.ToastSuccess, "Welcome, "+id.DisplayName()+".")

	dest := urlutil.SafeReturn(localPath(ret), "", auth.HomeFor(id.Role))
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| helper: render the form with an error                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, role, ret string) {
	templates.Render(w, r, "login", h.formData(w, r, msg, email, role, ret))
}

// localPath keeps only same-site absolute paths.
func localPath(ret string) string {
	if !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") || strings.HasPrefix(ret, "/\\") {
		return ""
	}
	return ret
}
