// internal/domain/models/student.go
package models

import "strings"

// Student is a roster entry. MSSV is the immutable matriculation number
// that every other record references.
type Student struct {
	MSSV      string `bson:"mssv" json:"mssv" validate:"required,max=32" label:"Student ID"`
	FullName  string `bson:"hoten" json:"hoten" validate:"required,max=200" label:"Full name"`
	Faculty   string `bson:"khoa" json:"khoa" validate:"required,max=200" label:"Faculty"`
	Class     string `bson:"lop" json:"lop" validate:"required,max=64" label:"Class"`
	BirthDate string `bson:"ngaysinh" json:"ngaysinh" validate:"required,datetime=2006-01-02" label:"Date of birth"`
}

// Normalize trims every field in place.
func (s *Student) Normalize() {
	s.MSSV = strings.TrimSpace(s.MSSV)
	s.FullName = strings.TrimSpace(s.FullName)
	s.Faculty = strings.TrimSpace(s.Faculty)
	s.Class = strings.TrimSpace(s.Class)
	s.BirthDate = strings.TrimSpace(s.BirthDate)
}

// Matches reports whether q appears (case-insensitively) in the student's
// mssv, name or class code. An empty query matches everything.
func (s Student) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.MSSV), q) ||
		strings.Contains(strings.ToLower(s.FullName), q) ||
		strings.Contains(strings.ToLower(s.Class), q)
}

// FilterStudents returns the students matching q, preserving order.
func FilterStudents(all []Student, q string) []Student {
	out := make([]Student, 0, len(all))
	for _, s := range all {
		if s.Matches(q) {
			out = append(out, s)
		}
	}
	return out
}
