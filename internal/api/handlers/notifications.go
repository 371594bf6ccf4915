package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/normalize"
	"github.com/dalemusser/classhub/internal/domain/models"
)

// SendNotification handles POST /send-notification. Recipients are the
// students grouped in the session at the time of sending.
func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SessionID models.ID `json:"session_id" validate:"required" label:"Class session"`
		Message   string    `json:"message" validate:"required,max=2000" label:"Message"`
		CreatedBy string    `json:"created_by" validate:"max=254" label:"Sender"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.badBody(w, err)
		return
	}
	in.Message = strings.TrimSpace(in.Message)
	if res := inputval.Validate(in); res.HasErrors() {
		h.fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx := r.Context()
	if _, err := h.Sessions.Get(ctx, in.SessionID); err != nil {
		h.serverError(w, r, "send notification", err, msgSessionNotFound, "Could not send the notification.")
		return
	}
	groups, err := h.Groups.BySession(ctx, in.SessionID)
	if err != nil {
		h.serverError(w, r, "send notification", err, "", "Could not send the notification.")
		return
	}
	var recipients []string
	for _, g := range groups {
		recipients = append(recipients, g.MemberMSSVs()...)
	}
	if len(recipients) == 0 {
		h.fail(w, http.StatusBadRequest, "No grouped students in this session.")
		return
	}

	n, err := h.Notifications.Create(ctx, models.Notification{
		SessionID:  in.SessionID,
		Message:    in.Message,
		CreatedBy:  normalize.Email(in.CreatedBy),
		Recipients: dedupe(recipients),
	})
	if err != nil {
		h.serverError(w, r, "send notification", err, "", "Could not send the notification.")
		return
	}
	h.ok(w, http.StatusCreated, "Notification sent.", payload{"data": n})
}

// GetNotifications handles GET /get-notifications?session_id=&student_mssv=.
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := models.ID(normalize.QueryParam(q.Get("session_id")))
	mssv := normalize.MSSV(q.Get("student_mssv"))
	if sessionID.IsZero() || mssv == "" {
		h.fail(w, http.StatusBadRequest, "Class session and student ID are required.")
		return
	}
	list, err := h.Notifications.ForStudent(r.Context(), sessionID, mssv)
	if err != nil {
		h.serverError(w, r, "list notifications", err, "", "Could not load notifications.")
		return
	}
	h.ok(w, http.StatusOK, "", payload{"data": list})
}

// MarkNotificationRead handles POST /mark-notification-read. Marking twice
// keeps a single receipt.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	var in struct {
		NotificationID models.ID `json:"notification_id" validate:"required" label:"Notification"`
		MSSV           string    `json:"student_mssv" validate:"required" label:"Student ID"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.badBody(w, err)
		return
	}
	in.MSSV = normalize.MSSV(in.MSSV)
	if res := inputval.Validate(in); res.HasErrors() {
		h.fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx := r.Context()
	n, err := h.Notifications.Get(ctx, in.NotificationID)
	if err != nil {
		h.serverError(w, r, "mark notification read", err, "Notification not found.", "Could not mark the notification as read.")
		return
	}
	if !slices.Contains(n.Recipients, in.MSSV) {
		h.fail(w, http.StatusForbidden, "This notification was not sent to you.")
		return
	}
	if err := h.Notifications.MarkRead(ctx, n.ID, in.MSSV); err != nil {
		h.serverError(w, r, "mark notification read", err, "", "Could not mark the notification as read.")
		return
	}
	h.ok(w, http.StatusOK, "Notification marked as read.", nil)
}
