// internal/domain/models/attendance.go
package models

// AttendanceStatus is the mark recorded for one student on one date.
type AttendanceStatus string

const (
	StatusPresent  AttendanceStatus = "present"
	StatusAbsent   AttendanceStatus = "absent"
	StatusUnmarked AttendanceStatus = ""
)

// ParseAttendanceStatus accepts "present" or "absent".
func ParseAttendanceStatus(s string) (AttendanceStatus, bool) {
	switch AttendanceStatus(s) {
	case StatusPresent, StatusAbsent:
		return AttendanceStatus(s), true
	}
	return "", false
}

// Label is the display text for the status.
func (s AttendanceStatus) Label() string {
	switch s {
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	}
	return "Not marked"
}

// AttendanceRecord is one student's attendance for a session date.
// TimeSlot and Room are filled only in the per-student listing.
type AttendanceRecord struct {
	SessionID ID               `bson:"session_id" json:"session_id"`
	MSSV      string           `bson:"mssv" json:"mssv"`
	FullName  string           `bson:"hoten" json:"hoten"`
	Date      string           `bson:"date" json:"date"`
	Status    AttendanceStatus `bson:"status" json:"status"`
	Time      string           `bson:"time" json:"time"`
	TimeSlot  string           `bson:"-" json:"time_slot,omitempty"`
	Room      string           `bson:"-" json:"room,omitempty"`
}
