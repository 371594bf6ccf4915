// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/groupflow"
	"github.com/dalemusser/classhub/internal/app/system/auditlog"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"go.uber.org/zap"
)

// Gateway is what the group page needs beyond the workflow engine.
type Gateway interface {
	groupflow.Gateway
}

// Handler serves /group-management. Every request rebuilds its own
// groupflow.State from the query or form and runs one engine operation.
type Handler struct {
	Engine     *groupflow.Engine
	GW         Gateway
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(gw Gateway, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:     groupflow.New(gw, logger),
		GW:         gw,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}

// basePath is where the page lives and every action redirects back to.
const basePath = "/group-management"

// toastReporter turns engine outcomes into flash messages and remembers
// which operations succeeded.
type toastReporter struct {
	w   http.ResponseWriter
	r   *http.Request
	sm  *auth.SessionManager
	rec groupflow.Recorder
}

func (t *toastReporter) Report(o groupflow.Outcome) {
	t.rec.Report(o)
	kind := auth.ToastSuccess
	if !o.OK {
		kind = auth.ToastError
	}
	t.sm.AddToast(t.w, t.r, kind, o.Message)
}

func (t *toastReporter) succeeded(op groupflow.Op) bool {
	for _, o := range t.rec.Outcomes {
		if o.Op == op && o.OK {
			return true
		}
	}
	return false
}

// sessionIDOf is the selected session id as a string, or "" when none.
func sessionIDOf(st *groupflow.State) string {
	return st.SelectedSession.String()
}

// load fetches the page's data into st, reporting to rep.
func (h *Handler) load(ctx context.Context, st *groupflow.State, rep groupflow.Reporter) {
	if err := h.Engine.Load(ctx, st, rep); err != nil {
		h.Log.Debug("group page load incomplete", zap.Error(err))
	}
}
