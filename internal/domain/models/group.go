// internal/domain/models/group.go
package models

import (
	"strings"
)

// GroupMode selects how a group's members are chosen.
type GroupMode string

const (
	// ModeRandom lets the backend partition every ungrouped student.
	ModeRandom GroupMode = "random"
	// ModeTeacher builds one group from students picked by the admin.
	ModeTeacher GroupMode = "teacher"
	// ModeStudent builds one group from students who chose each other.
	ModeStudent GroupMode = "student"
)

// GroupModes lists the modes in display order.
var GroupModes = []GroupMode{ModeRandom, ModeTeacher, ModeStudent}

// ParseGroupMode maps user input to a GroupMode. The second result is false
// for unknown values.
func ParseGroupMode(s string) (GroupMode, bool) {
	switch GroupMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeRandom:
		return ModeRandom, true
	case ModeTeacher:
		return ModeTeacher, true
	case ModeStudent:
		return ModeStudent, true
	}
	return "", false
}

// RequiresSelection reports whether creating a group in this mode needs an
// explicit, non-empty list of students.
func (m GroupMode) RequiresSelection() bool {
	return m == ModeTeacher || m == ModeStudent
}

// Label is the display name of the mode.
func (m GroupMode) Label() string {
	switch m {
	case ModeRandom:
		return "Random"
	case ModeTeacher:
		return "Teacher assigned"
	case ModeStudent:
		return "Student chosen"
	}
	return string(m)
}

// GroupMember is a student's entry inside a group.
type GroupMember struct {
	MSSV     string `bson:"mssv" json:"mssv"`
	FullName string `bson:"hoten" json:"hoten"`
}

// Group is a subset of a class session's students.
// MemberCount always equals len(Members); use SetMembers to keep them in step.
type Group struct {
	ID          ID            `bson:"_id" json:"id"`
	Name        string        `bson:"name" json:"name"`
	SessionID   ID            `bson:"session_id" json:"session_id"`
	Mode        GroupMode     `bson:"mode" json:"mode"`
	MinMembers  int           `bson:"min_members" json:"min_members"`
	MaxMembers  int           `bson:"max_members" json:"max_members"`
	Members     []GroupMember `bson:"members" json:"members"`
	MemberCount int           `bson:"member_count" json:"member_count"`
	CreatedAt   Timestamp     `bson:"created_at" json:"created_at"`

	// Populated only by the student-group endpoint.
	Session *SessionInfo `bson:"-" json:"session,omitempty"`
}

// SetMembers replaces the member list and recomputes MemberCount.
func (g *Group) SetMembers(members []GroupMember) {
	g.Members = members
	g.MemberCount = len(members)
}

// HasMember reports whether mssv belongs to the group.
func (g Group) HasMember(mssv string) bool {
	for _, m := range g.Members {
		if m.MSSV == mssv {
			return true
		}
	}
	return false
}

// MemberMSSVs returns the member ids in list order.
func (g Group) MemberMSSVs() []string {
	out := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		out = append(out, m.MSSV)
	}
	return out
}

// FindGroup returns a pointer into groups for the given id, or nil.
func FindGroup(groups []Group, id ID) *Group {
	for i := range groups {
		if groups[i].ID == id {
			return &groups[i]
		}
	}
	return nil
}
