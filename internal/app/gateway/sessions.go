// internal/app/gateway/sessions.go
package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/classhub/internal/domain/models"
)

// ListSessions returns every class session, ordered by date and time slot.
func (c *Client) ListSessions(ctx context.Context) ([]models.ClassSession, error) {
	cl := call{
		op:       "list sessions",
		method:   http.MethodGet,
		path:     "/class-sessions",
		fallback: "Could not load class sessions.",
	}
	var raw json.RawMessage
	if err := c.decodeInto(ctx, cl, &raw, "data", "sessions"); err != nil {
		return nil, err
	}
	out, err := decodeSessions(raw)
	if err != nil {
		return nil, c.malformed(cl, err)
	}
	return out, nil
}

// CreateSession schedules a new class session.
func (c *Client) CreateSession(ctx context.Context, s models.ClassSession) (models.ClassSession, error) {
	cl := call{
		op:     "create session",
		method: http.MethodPost,
		path:   "/class-sessions",
		body: map[string]string{
			"date":      s.Date,
			"time_slot": s.TimeSlot,
			"room":      s.Room,
		},
		fallback: "Could not create the class session.",
	}
	env, err := c.do(ctx, cl)
	if err != nil {
		return models.ClassSession{}, err
	}
	var created models.ClassSession
	if _, err := env.decodeOptional(&created, "data", "session"); err != nil {
		return models.ClassSession{}, c.malformed(cl, err)
	}
	return created, nil
}

// EnrollStudents adds the given students to a session's roster.
func (c *Client) EnrollStudents(ctx context.Context, sessionID models.ID, mssvs []string) error {
	_, err := c.do(ctx, call{
		op:     "enroll students",
		method: http.MethodPost,
		path:   "/enroll-students",
		body: map[string]any{
			"session_id": sessionID,
			"students":   mssvs,
		},
		fallback: "Could not enroll the students.",
	})
	return err
}

// StudentSessions returns the sessions a student is enrolled in.
func (c *Client) StudentSessions(ctx context.Context, mssv string) ([]models.ClassSession, error) {
	cl := call{
		op:       "student sessions",
		method:   http.MethodGet,
		path:     "/get-student-sessions",
		query:    q("mssv", mssv),
		fallback: "Could not load your schedule.",
	}
	env, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	found, err := env.decodeOptional(&raw, "sessions", "data")
	if err != nil {
		return nil, c.malformed(cl, err)
	}
	if !found {
		return []models.ClassSession{}, nil
	}
	out, err := decodeSessions(raw)
	if err != nil {
		return nil, c.malformed(cl, err)
	}
	return out, nil
}

// decodeSessions accepts a list, a map keyed by id, or an object wrapping
// either under "sessions".
func decodeSessions(raw json.RawMessage) ([]models.ClassSession, error) {
	var list []models.ClassSession
	if err := json.Unmarshal(raw, &list); err == nil {
		models.SortSessions(list)
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if inner, ok := obj["sessions"]; ok {
		return decodeSessions(inner)
	}

	out := make([]models.ClassSession, 0, len(obj))
	for key, v := range obj {
		var s models.ClassSession
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		if s.ID.IsZero() {
			s.ID = models.ID(key)
		}
		out = append(out, s)
	}
	models.SortSessions(out)
	return out, nil
}
