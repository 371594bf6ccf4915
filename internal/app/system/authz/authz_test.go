package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/domain/models"
)

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	role, name, email, ok := authz.UserCtx(req)
	if ok || role != "visitor" || name != "" || email != "" {
		t.Errorf("UserCtx without user: got %q %q %q %v", role, name, email, ok)
	}
}

func TestUserCtx_LowercasesRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{Email: "admin@uni.edu", Name: "Admin", Role: "ADMIN"})

	role, name, email, ok := authz.UserCtx(req)
	if !ok || role != "admin" || name != "Admin" || email != "admin@uni.edu" {
		t.Errorf("UserCtx: got %q %q %q %v", role, name, email, ok)
	}
	if !authz.IsAdmin(req) || authz.IsStudent(req) {
		t.Error("expected admin and not student")
	}
}

func TestStudentMSSV(t *testing.T) {
	tests := []struct {
		name   string
		user   *auth.SessionUser
		want   string
		wantOK bool
	}{
		{"no user", nil, "", false},
		{"admin", &auth.SessionUser{Email: "a@uni.edu", Role: models.RoleAdmin}, "", false},
		{"student without profile", &auth.SessionUser{Email: "s@uni.edu", Role: models.RoleStudent}, "", false},
		{"student", &auth.SessionUser{Email: "s@uni.edu", Role: models.RoleStudent, Student: &models.Student{MSSV: "SV001"}}, "SV001", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			got, ok := authz.StudentMSSV(req)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("StudentMSSV: got %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
