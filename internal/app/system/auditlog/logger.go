// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/classhub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout, registration).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for admin action events (roster, sessions, groups, attendance).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// ValidSetting reports whether v is one of the accepted config values.
func ValidSetting(v string) bool {
	switch v {
	case "all", "db", "log", "off":
		return true
	}
	return false
}

// EventStore persists audit events. *audit.Store satisfies it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via EventStore) and/or structured logs (via zap).
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when every category is
// "log" or "off".
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// ClientIP extracts the client IP from the request.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.SessionID != "" {
		fields = append(fields, zap.String("session_id", event.SessionID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) auth(ctx context.Context, r *http.Request, e audit.Event) {
	e.Category = audit.CategoryAuth
	e.IP = ClientIP(r)
	e.UserAgent = r.UserAgent()
	l.Log(ctx, e)
}

func (l *Logger) admin(ctx context.Context, r *http.Request, actor string, e audit.Event) {
	e.Category = audit.CategoryAdmin
	e.Actor = actor
	e.ActorRole = "admin"
	e.IP = ClientIP(r)
	e.UserAgent = r.UserAgent()
	e.Success = true
	l.Log(ctx, e)
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, email, role string) {
	l.auth(ctx, r, audit.Event{
		EventType: audit.EventLoginSuccess,
		Actor:     email,
		ActorRole: role,
		Success:   true,
	})
}

// LoginFailed logs a login the backend rejected or could not serve.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, role, reason string) {
	l.auth(ctx, r, audit.Event{
		EventType:     audit.EventLoginFailed,
		Actor:         email,
		ActorRole:     role,
		FailureReason: reason,
	})
}

// LoginRateLimited logs a login blocked by the rate limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email string) {
	l.auth(ctx, r, audit.Event{
		EventType:     audit.EventLoginFailedRateLimit,
		Actor:         email,
		FailureReason: "too many attempts",
	})
}

// Logout logs a user logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, email, role string) {
	l.auth(ctx, r, audit.Event{
		EventType: audit.EventLogout,
		Actor:     email,
		ActorRole: role,
		Success:   true,
	})
}

// AccountRegistered logs a new account. actor is "" for self-registration.
func (l *Logger) AccountRegistered(ctx context.Context, r *http.Request, actor, email, role string) {
	l.auth(ctx, r, audit.Event{
		EventType: audit.EventAccountRegistered,
		Actor:     actor,
		Subject:   email,
		Success:   true,
		Details:   map[string]string{"role": role},
	})
}

// AccountDeleted logs an admin deleting an account.
func (l *Logger) AccountDeleted(ctx context.Context, r *http.Request, actor, accountID string) {
	l.auth(ctx, r, audit.Event{
		EventType: audit.EventAccountDeleted,
		Actor:     actor,
		ActorRole: "admin",
		Subject:   accountID,
		Success:   true,
	})
}

// --- Admin Events: roster ---

// StudentCreated logs a roster addition.
func (l *Logger) StudentCreated(ctx context.Context, r *http.Request, actor, mssv string) {
	l.admin(ctx, r, actor, audit.Event{EventType: audit.EventStudentCreated, Subject: mssv})
}

// StudentUpdated logs a roster edit.
func (l *Logger) StudentUpdated(ctx context.Context, r *http.Request, actor, mssv string) {
	l.admin(ctx, r, actor, audit.Event{EventType: audit.EventStudentUpdated, Subject: mssv})
}

// StudentDeleted logs a roster removal.
func (l *Logger) StudentDeleted(ctx context.Context, r *http.Request, actor, mssv string) {
	l.admin(ctx, r, actor, audit.Event{EventType: audit.EventStudentDeleted, Subject: mssv})
}

// StudentsImported logs a CSV import.
func (l *Logger) StudentsImported(ctx context.Context, r *http.Request, actor string, created, failed int) {
	l.admin(ctx, r, actor, audit.Event{
		EventType: audit.EventStudentsImported,
		Details: map[string]string{
			"created": strconv.Itoa(created),
			"failed":  strconv.Itoa(failed),
		},
	})
}

// --- Admin Events: sessions ---

// SessionCreated logs a new class session.
func (l *Logger) SessionCreated(ctx context.Context, r *http.Request, actor, sessionID, label string) {
	l.admin(ctx, r, actor, audit.Event{
		EventType: audit.EventSessionCreated,
		SessionID: sessionID,
		Details:   map[string]string{"label": label},
	})
}

// StudentsEnrolled logs an enrollment batch.
func (l *Logger) StudentsEnrolled(ctx context.Context, r *http.Request, actor, sessionID string, mssvs []string) {
	l.admin(ctx, r, actor, audit.Event{
		EventType: audit.EventStudentsEnrolled,
		SessionID: sessionID,
		Details:   map[string]string{"students": strings.Join(mssvs, ",")},
	})
}

// --- Admin Events: groups ---

// GroupCreated logs a create-group submission.
func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, actor, sessionID, mode string, min, max int) {
	l.admin(ctx, r, actor, audit.Event{
		EventType: audit.EventGroupCreated,
		SessionID: sessionID,
		Details: map[string]string{
			"mode":        mode,
			"min_members": strconv.Itoa(min),
			"max_members": strconv.Itoa(max),
		},
	})
}

// GroupDeleted logs a group deletion.
func (l *Logger) GroupDeleted(ctx context.Context, r *http.Request, actor, sessionID, groupID string) {
	l.admin(ctx, r, actor, audit.Event{EventType: audit.EventGroupDeleted, SessionID: sessionID, Subject: groupID})
}

// MembersAdded logs students added to a group.
func (l *Logger) MembersAdded(ctx context.Context, r *http.Request, actor, sessionID, groupID string, mssvs []string) {
	l.admin(ctx, r, actor, audit.Event{
		EventType: audit.EventMembersAdded,
		SessionID: sessionID,
		Subject:   groupID,
		Details:   map[string]string{"students": strings.Join(mssvs, ",")},
	})
}

// MemberRemoved logs a student removed from a group.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actor, sessionID, groupID, mssv string) {
	l.admin(ctx, r, actor, audit.Event{
		EventType: audit.EventMemberRemoved,
		SessionID: sessionID,
		Subject:   groupID,
		Details:   map[string]string{"student": mssv},
	})
}

// NotificationSent logs a broadcast to a session.
func (l *Logger) NotificationSent(ctx context.Context, r *http.Request, actor, sessionID string) {
	l.admin(ctx, r, actor, audit.Event{EventType: audit.EventNotificationSent, SessionID: sessionID})
}

// --- Admin Events: attendance ---

// AttendanceMarked logs one attendance mark.
func (l *Logger) AttendanceMarked(ctx context.Context, r *http.Request, actor, sessionID, date, mssv, status string) {
	l.admin(ctx, r, actor, audit.Event{
		EventType: audit.EventAttendanceMarked,
		SessionID: sessionID,
		Subject:   mssv,
		Details:   map[string]string{"date": date, "status": status},
	})
}

// AttendanceExported logs a spreadsheet export.
func (l *Logger) AttendanceExported(ctx context.Context, r *http.Request, actor, sessionID, date string) {
	l.admin(ctx, r, actor, audit.Event{
		EventType: audit.EventAttendanceExported,
		SessionID: sessionID,
		Details:   map[string]string{"date": date},
	})
}
