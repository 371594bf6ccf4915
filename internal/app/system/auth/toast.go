// internal/app/system/auth/toast.go
package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Toast kinds.
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
)

const toastFlashKey = "_toasts"

// Toast is a transient message shown once on the next rendered page.
type Toast struct {
	Kind    string
	Message string
}

// AddToast queues a toast in the session for the next page view.
// Failures are logged; a lost toast never fails the request.
func (sm *SessionManager) AddToast(w http.ResponseWriter, r *http.Request, kind, msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("toast: session unavailable", zap.Error(err))
		return
	}
	sess.AddFlash(kind+"|"+msg, toastFlashKey)
	if err := sess.Save(r, w); err != nil {
		sm.log.Warn("toast: save failed", zap.Error(err))
	}
}

// PopToasts returns and clears the queued toasts. It writes a cookie, so it
// must run before the response body.
func (sm *SessionManager) PopToasts(w http.ResponseWriter, r *http.Request) []Toast {
	if sm == nil {
		return nil
	}
	sess, err := sm.GetSession(r)
	if err != nil {
		return nil
	}
	flashes := sess.Flashes(toastFlashKey)
	if len(flashes) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		sm.log.Warn("toast: save failed", zap.Error(err))
	}
	out := make([]Toast, 0, len(flashes))
	for _, f := range flashes {
		s, ok := f.(string)
		if !ok {
			continue
		}
		kind, msg, found := strings.Cut(s, "|")
		if !found {
			kind, msg = ToastInfo, s
		}
		out = append(out, Toast{Kind: kind, Message: msg})
	}
	return out
}
