// internal/app/gateway/attendance.go
package gateway

import (
	"context"
	"net/http"

	"github.com/dalemusser/classhub/internal/domain/models"
)

// SessionAttendance returns the attendance sheet for a session on a date.
// Students without a mark come back with StatusUnmarked.
func (c *Client) SessionAttendance(ctx context.Context, sessionID models.ID, date string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	err := c.decodeInto(ctx, call{
		op:       "session attendance",
		method:   http.MethodGet,
		path:     "/get-attendance",
		query:    q("session_id", sessionID.String(), "date", date),
		fallback: "Could not load attendance.",
	}, &out, "data.attendance", "attendance")
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// MarkAttendance records status for one student.
func (c *Client) MarkAttendance(ctx context.Context, sessionID models.ID, mssv string, status models.AttendanceStatus, date string) error {
	_, err := c.do(ctx, call{
		op:     "mark attendance",
		method: http.MethodPost,
		path:   "/attendance",
		body: map[string]any{
			"session_id": sessionID,
			"mssv":       mssv,
			"status":     status,
			"date":       date,
		},
		fallback: "Could not update attendance.",
	})
	return err
}

// StudentAttendance returns one student's attendance across sessions.
func (c *Client) StudentAttendance(ctx context.Context, mssv string) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	err := c.decodeInto(ctx, call{
		op:       "student attendance",
		method:   http.MethodGet,
		path:     "/get-attendance-by-student",
		query:    q("mssv", mssv),
		fallback: "Could not load your attendance.",
	}, &out, "data.attendance", "attendance")
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}
