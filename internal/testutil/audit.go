package testutil

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/classhub/internal/app/store/audit"
	"github.com/dalemusser/classhub/internal/app/system/auditlog"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"go.uber.org/zap"
)

// AuditRecorder keeps audit events in memory.
type AuditRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *AuditRecorder) Log(_ context.Context, e audit.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	return nil
}

// Events returns a copy of the recorded events.
func (a *AuditRecorder) Events() []audit.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]audit.Event{}, a.events...)
}

// Types returns the recorded event types in order.
func (a *AuditRecorder) Types() []string {
	var out []string
	for _, e := range a.Events() {
		out = append(out, e.EventType)
	}
	return out
}

// Has reports whether an event of the given type was recorded.
func (a *AuditRecorder) Has(eventType string) bool {
	for _, e := range a.Events() {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

// NewAuditLogger returns an audit logger that records every category into
// the returned recorder.
func NewAuditLogger() (*auditlog.Logger, *AuditRecorder) {
	rec := &AuditRecorder{}
	return auditlog.New(rec, zap.NewNop(), auditlog.Config{Auth: "db", Admin: "db"}), rec
}

// SessionCookieName is the cookie used by NewSessionManager.
const SessionCookieName = "test-session"

// NewSessionManager builds a session manager for handler tests.
func NewSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		SessionCookieName,
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// HasCookie reports whether rec set a non-expired cookie called name.
func HasCookie(rec interface{ Result() *http.Response }, name string) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			return true
		}
	}
	return false
}
