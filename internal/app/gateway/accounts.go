// internal/app/gateway/accounts.go
package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/classhub/internal/domain/models"
)

// RegisterRequest creates a student login together with its roster profile.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	models.Student
}

// Login authenticates against the backend. It uses the auth timeout.
func (c *Client) Login(ctx context.Context, email, password, role string) (models.Identity, error) {
	cl := call{
		op:     "login",
		method: http.MethodPost,
		path:   "/login",
		body: map[string]string{
			"email":    email,
			"password": password,
			"role":     role,
		},
		timeout:  c.authTimeout,
		fallback: "Sign in failed.",
	}
	var id models.Identity
	if err := c.decodeInto(ctx, cl, &id, "user", "data.user", "data"); err != nil {
		return models.Identity{}, err
	}
	id.Role = strings.ToLower(strings.TrimSpace(id.Role))
	if id.Email == "" || !models.ValidRole(id.Role) {
		return models.Identity{}, c.malformed(cl, errors.New("login payload has no usable identity"))
	}
	if id.Role == models.RoleStudent && (id.Student == nil || id.Student.MSSV == "") {
		return models.Identity{}, c.malformed(cl, errors.New("student login without profile"))
	}
	return id, nil
}

// Register creates an account. It uses the auth timeout.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if req.Role == "" {
		req.Role = models.RoleStudent
	}
	_, err := c.do(ctx, call{
		op:       "register",
		method:   http.MethodPost,
		path:     "/register",
		body:     req,
		timeout:  c.authTimeout,
		fallback: "Registration failed.",
	})
	return err
}

// ListAccounts returns every login account.
func (c *Client) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var out []models.Account
	err := c.decodeInto(ctx, call{
		op:       "list accounts",
		method:   http.MethodGet,
		path:     "/register",
		fallback: "Could not load accounts.",
	}, &out, "data", "users")
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// DeleteAccount removes a login account.
func (c *Client) DeleteAccount(ctx context.Context, id models.ID) error {
	_, err := c.do(ctx, call{
		op:       "delete account",
		method:   http.MethodDelete,
		path:     "/register/" + url.PathEscape(id.String()),
		fallback: "Could not delete the account.",
	})
	return err
}
