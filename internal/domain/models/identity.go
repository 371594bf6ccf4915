// internal/domain/models/identity.go
package models

import "strings"

// Roles understood by the access guard.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	r = strings.ToLower(strings.TrimSpace(r))
	return r == RoleAdmin || r == RoleStudent
}

// Identity is the signed-in user as returned by the backend's login call.
// Student is set only for the student role.
type Identity struct {
	Email   string   `json:"email"`
	Role    string   `json:"role"`
	Student *Student `json:"student,omitempty"`
}

// DisplayName is the name shown in the page header.
func (i Identity) DisplayName() string {
	if i.Student != nil && i.Student.FullName != "" {
		return i.Student.FullName
	}
	return i.Email
}

// MSSV returns the student id of a student identity, or "".
func (i Identity) MSSV() string {
	if i.Student == nil {
		return ""
	}
	return i.Student.MSSV
}

// Account is a login record managed through the register endpoints.
type Account struct {
	ID           ID        `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Role         string    `bson:"role" json:"role"`
	MSSV         string    `bson:"mssv,omitempty" json:"mssv,omitempty"`
	PasswordHash []byte    `bson:"password_hash" json:"-"`
	CreatedAt    Timestamp `bson:"created_at" json:"created_at"`
}
