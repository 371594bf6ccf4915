// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/domain/models"
)

// UserCtx returns the user's role (lowercased), display name, email, and a
// found flag. If no user is present in context it returns "visitor", "", "",
// false.
func UserCtx(r *http.Request) (role string, name string, email string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", "", false
	}
	return strings.ToLower(user.Role), user.Name, user.Email, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsStudent reports whether the current request's user is a student.
func IsStudent(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleStudent
}

// StudentMSSV returns the signed-in student's mssv. ok is false for
// visitors and admins.
func StudentMSSV(r *http.Request) (string, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || !strings.EqualFold(user.Role, models.RoleStudent) {
		return "", false
	}
	mssv := user.MSSV()
	return mssv, mssv != ""
}

// ActorEmail returns the email of the signed-in user, or "".
func ActorEmail(r *http.Request) string {
	if user, ok := auth.CurrentUser(r); ok {
		return user.Email
	}
	return ""
}
