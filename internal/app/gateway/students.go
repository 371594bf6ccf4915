// internal/app/gateway/students.go
package gateway

import (
	"context"
	"net/http"

	"github.com/dalemusser/classhub/internal/domain/models"
)

// ListStudents returns the full roster.
func (c *Client) ListStudents(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	err := c.decodeInto(ctx, call{
		op:       "list students",
		method:   http.MethodGet,
		path:     "/get-students",
		fallback: "Could not load the student list.",
	}, &out, "students", "data.students", "data")
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// StudentsBySession returns every student enrolled in the session.
func (c *Client) StudentsBySession(ctx context.Context, sessionID models.ID) ([]models.Student, error) {
	var out []models.Student
	err := c.decodeInto(ctx, call{
		op:       "students by session",
		method:   http.MethodGet,
		path:     "/get-students-by-session",
		query:    q("session_id", sessionID.String()),
		fallback: "Could not load the students for this session.",
	}, &out, "data.students", "students", "data")
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// GetStudent returns one student by mssv.
func (c *Client) GetStudent(ctx context.Context, mssv string) (models.Student, error) {
	var out models.Student
	err := c.decodeInto(ctx, call{
		op:       "get student",
		method:   http.MethodGet,
		path:     "/get-student",
		query:    q("mssv", mssv),
		fallback: "Could not load the student.",
	}, &out, "student", "data")
	return out, err
}

// AddStudent creates a roster entry.
func (c *Client) AddStudent(ctx context.Context, s models.Student) error {
	_, err := c.do(ctx, call{
		op:       "add student",
		method:   http.MethodPost,
		path:     "/add-student",
		body:     s,
		fallback: "Could not add the student.",
	})
	return err
}

// EditStudent updates a roster entry identified by s.MSSV.
func (c *Client) EditStudent(ctx context.Context, s models.Student) error {
	_, err := c.do(ctx, call{
		op:       "edit student",
		method:   http.MethodPost,
		path:     "/edit-student",
		body:     s,
		fallback: "Could not update the student.",
	})
	return err
}

// DeleteStudent removes a roster entry.
func (c *Client) DeleteStudent(ctx context.Context, mssv string) error {
	_, err := c.do(ctx, call{
		op:       "delete student",
		method:   http.MethodPost,
		path:     "/delete-student",
		body:     map[string]string{"mssv": mssv},
		fallback: "Could not delete the student.",
	})
	return err
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
