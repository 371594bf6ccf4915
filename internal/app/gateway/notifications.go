// internal/app/gateway/notifications.go
package gateway

import (
	"context"
	"net/http"

	"github.com/dalemusser/classhub/internal/domain/models"
)

// SendNotification broadcasts message to the grouped students of a session.
func (c *Client) SendNotification(ctx context.Context, sessionID models.ID, message, createdBy string) error {
	_, err := c.do(ctx, call{
		op:     "send notification",
		method: http.MethodPost,
		path:   "/send-notification",
		body: map[string]any{
			"session_id": sessionID,
			"message":    message,
			"created_by": createdBy,
		},
		fallback: "Could not send the notification.",
	})
	return err
}

// StudentGroup returns the group the student belongs to, or nil when the
// student has none.
func (c *Client) StudentGroup(ctx context.Context, mssv string) (*models.Group, error) {
	cl := call{
		op:       "student group",
		method:   http.MethodGet,
		path:     "/get-student-group",
		query:    q("mssv", mssv),
		fallback: "Could not load your group.",
	}
	env, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	var w groupWire
	found, err := env.decodeOptional(&w, "group", "data.group")
	if err != nil {
		return nil, c.malformed(cl, err)
	}
	if !found {
		return nil, nil
	}
	g := w.normalize()
	return &g, nil
}

// Notifications lists a session's notifications with the read flag for one
// student.
func (c *Client) Notifications(ctx context.Context, sessionID models.ID, mssv string) ([]models.Notification, error) {
	var out []models.Notification
	err := c.decodeInto(ctx, call{
		op:       "list notifications",
		method:   http.MethodGet,
		path:     "/get-notifications",
		query:    q("session_id", sessionID.String(), "student_mssv", mssv),
		fallback: "Could not load notifications.",
	}, &out, "data", "notifications")
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// MarkNotificationRead records that the student read the notification.
// Repeating the call is harmless.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID models.ID, mssv string) error {
	_, err := c.do(ctx, call{
		op:     "mark notification read",
		method: http.MethodPost,
		path:   "/mark-notification-read",
		body: map[string]any{
			"notification_id": notificationID,
			"student_mssv":    mssv,
		},
		fallback: "Could not mark the notification as read.",
	})
	return err
}
