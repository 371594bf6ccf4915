// internal/domain/models/session.go
package models

import "sort"

// ClassSession is a scheduled class occurrence (date, time slot, room).
// Enrolled holds the mssv roster; it is storage-only and never sent over
// the wire.
type ClassSession struct {
	ID        ID        `bson:"_id" json:"id"`
	Date      string    `bson:"date" json:"date" validate:"required,datetime=2006-01-02" label:"Date"`
	TimeSlot  string    `bson:"time_slot" json:"time_slot" validate:"required,max=64" label:"Time slot"`
	Room      string    `bson:"room" json:"room" validate:"required,max=64" label:"Room"`
	Enrolled  []string  `bson:"students" json:"-"`
	CreatedAt Timestamp `bson:"created_at" json:"created_at"`
}

// Label is the human-readable session descriptor used in pickers.
func (s ClassSession) Label() string {
	return s.Date + " · " + s.TimeSlot + " · " + s.Room
}

// SortSessions orders sessions by date, then time slot, then id.
func SortSessions(ss []ClassSession) {
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].Date != ss[j].Date {
			return ss[i].Date < ss[j].Date
		}
		if ss[i].TimeSlot != ss[j].TimeSlot {
			return ss[i].TimeSlot < ss[j].TimeSlot
		}
		return ss[i].ID < ss[j].ID
	})
}

// SessionInfo is the abbreviated session embedded in a student's group view.
type SessionInfo struct {
	Date     string `bson:"date" json:"date"`
	TimeSlot string `bson:"time_slot" json:"time_slot"`
	Room     string `bson:"room" json:"room"`
}
