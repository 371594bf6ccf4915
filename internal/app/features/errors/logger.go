// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/classhub/internal/app/system/authz"
	"go.uber.org/zap"
)

// ErrorLogger logs unexpected handler failures and renders the 500 page.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger builds an ErrorLogger. A nil logger discards output.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

// LogServerError logs msg with err and request context, then renders a 500
// page showing userMsg (or a generic message) with a link to backURL.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	role, _, email, _ := authz.UserCtx(r)
	e.Log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("role", role),
		zap.String("actor", email))

	if userMsg == "" {
		userMsg = msgServerError
	}
	render(w, r, http.StatusInternalServerError, newPage(w, r, "Error", "Something went wrong", userMsg, backURL))
}
