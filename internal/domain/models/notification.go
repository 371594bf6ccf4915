// internal/domain/models/notification.go
package models

// Notification is a message broadcast by an admin to a class session.
// IsRead is per recipient and is filled in when listing for one student.
type Notification struct {
	ID         ID        `bson:"_id" json:"id"`
	SessionID  ID        `bson:"session_id" json:"session_id"`
	Message    string    `bson:"message" json:"message"`
	CreatedBy  string    `bson:"created_by" json:"created_by"`
	Recipients []string  `bson:"recipients" json:"-"`
	CreatedAt  Timestamp `bson:"created_at" json:"created_at"`
	IsRead     bool      `bson:"-" json:"is_read"`
}

// NotificationRead records that one student has read one notification.
// The pair (notification_id, mssv) is unique.
type NotificationRead struct {
	NotificationID ID        `bson:"notification_id" json:"notification_id"`
	MSSV           string    `bson:"mssv" json:"student_mssv"`
	ReadAt         Timestamp `bson:"read_at" json:"read_at"`
}

// Unread returns the notifications not yet read, in order.
func Unread(ns []Notification) []Notification {
	var out []Notification
	for _, n := range ns {
		if !n.IsRead {
			out = append(out, n)
		}
	}
	return out
}
