package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts every API endpoint. Paths match the ones the front-end
// gateway calls.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		h.fail(w, http.StatusNotFound, "Unknown API endpoint.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		h.fail(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	// Accounts
	r.Post("/login", h.Login)
	r.Get("/register", h.ListAccounts)
	r.Post("/register", h.Register)
	r.Delete("/register/{id}", h.DeleteAccount)

	// Students
	r.Get("/get-students", h.ListStudents)
	r.Get("/get-student", h.GetStudent)
	r.Post("/add-student", h.AddStudent)
	r.Post("/edit-student", h.EditStudent)
	r.Post("/delete-student", h.DeleteStudent)

	// Class sessions
	r.Get("/class-sessions", h.ListSessions)
	r.Post("/class-sessions", h.CreateSession)
	r.Post("/enroll-students", h.EnrollStudents)
	r.Get("/get-students-by-session", h.StudentsBySession)
	r.Get("/get-student-sessions", h.StudentSessions)

	// Groups
	r.Get("/get-groups", h.GroupsBySession)
	r.Post("/create-group", h.CreateGroup)
	r.Put("/group-management", h.UpdateGroupMembers)
	r.Get("/delete-group", h.DeleteGroup)
	r.Delete("/delete-group", h.DeleteGroup)
	r.Get("/get-student-group", h.StudentGroup)

	// Notifications
	r.Post("/send-notification", h.SendNotification)
	r.Get("/get-notifications", h.GetNotifications)
	r.Post("/mark-notification-read", h.MarkNotificationRead)

	// Attendance
	r.Get("/get-attendance", h.SessionAttendance)
	r.Post("/attendance", h.MarkAttendance)
	r.Get("/get-attendance-by-student", h.StudentAttendance)

	return r
}
