// Package notifyflow loads a student's group and the notifications sent to
// that group's session, and marks notifications read.
package notifyflow

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/domain/models"
	"go.uber.org/zap"
)

// Gateway is the slice of the backend the flow needs.
type Gateway interface {
	StudentGroup(ctx context.Context, mssv string) (*models.Group, error)
	Notifications(ctx context.Context, sessionID models.ID, mssv string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID models.ID, mssv string) error
}

// NoGroupMessage is shown to students who have not been placed yet.
const NoGroupMessage = "You are not in a group yet."

// AlertPrefix starts every unread-notification alert.
const AlertPrefix = "New notification: "

var (
	// ErrNoStudent is returned when the caller has no student id.
	ErrNoStudent = errors.New("notifyflow: missing student id")
	// ErrNoNotification is returned when mark-read gets no notification id.
	ErrNoNotification = errors.New("notifyflow: missing notification id")
)

// View is what the student group page shows.
type View struct {
	// Group is nil when the student has no group.
	Group         *models.Group
	Notifications []models.Notification
	// Alerts holds one line per unread notification, in list order.
	Alerts []string
}

// HasGroup reports whether the student has been placed in a group.
func (v View) HasGroup() bool { return v.Group != nil }

// UnreadCount is the number of unread notifications.
func (v View) UnreadCount() int { return len(v.Alerts) }

// Flow is stateless; one Flow serves every request.
type Flow struct {
	gw  Gateway
	log *zap.Logger
}

// New builds a Flow over gw.
func New(gw Gateway, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{gw: gw, log: logger}
}

// Load fetches the group of mssv and, when there is one, the notifications
// for that group's session. A student without a group gets an empty View and
// no notification fetch. When the notification fetch fails the View still
// carries the group.
func (f *Flow) Load(ctx context.Context, mssv string) (View, error) {
	mssv = strings.TrimSpace(mssv)
	if mssv == "" {
		return View{}, ErrNoStudent
	}

	g, err := f.gw.StudentGroup(ctx, mssv)
	if err != nil {
		f.log.Warn("student group fetch failed", zap.String("mssv", mssv), zap.Error(err))
		return View{}, err
	}
	if g == nil {
		return View{}, nil
	}

	v := View{Group: g}
	ns, err := f.gw.Notifications(ctx, g.SessionID, mssv)
	if err != nil {
		f.log.Warn("notifications fetch failed",
			zap.String("mssv", mssv),
			zap.String("session_id", g.SessionID.String()),
			zap.Error(err))
		return v, err
	}
	v.Notifications = ns
	for _, n := range models.Unread(ns) {
		v.Alerts = append(v.Alerts, AlertPrefix+n.Message)
	}
	return v, nil
}

// MarkRead records that mssv has read notification id. Repeating the call
// is harmless; the backend keeps one read record per pair.
func (f *Flow) MarkRead(ctx context.Context, mssv string, id models.ID) error {
	mssv = strings.TrimSpace(mssv)
	if mssv == "" {
		return ErrNoStudent
	}
	if id.IsZero() {
		return ErrNoNotification
	}
	if err := f.gw.MarkNotificationRead(ctx, id, mssv); err != nil {
		f.log.Warn("mark notification read failed",
			zap.String("mssv", mssv),
			zap.String("notification_id", id.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// Message returns the text to show for an error from Load or MarkRead.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNoStudent):
		return "Your student profile is missing. Please sign in again."
	case errors.Is(err, ErrNoNotification):
		return "That notification could not be found."
	}
	return gateway.MessageFor(err, "Could not load your group.")
}
