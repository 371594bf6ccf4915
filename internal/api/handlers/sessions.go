package handlers

import (
	"errors"
	"net/http"
	"strings"

	sessionstore "github.com/dalemusser/classhub/internal/api/store/sessions"
	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/normalize"
	"github.com/dalemusser/classhub/internal/domain/models"
)

const msgSessionNotFound = "Class session not found."

// ListSessions handles GET /class-sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	all, err := h.Sessions.List(r.Context())
	if err != nil {
		h.serverError(w, r, "list sessions", err, "", "Could not load class sessions.")
		return
	}
	h.ok(w, http.StatusOK, "", payload{"data": all})
}

// CreateSession handles POST /class-sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var in models.ClassSession
	if err := decodeJSON(w, r, &in); err != nil {
		h.badBody(w, err)
		return
	}
	cs := models.ClassSession{
		Date:     strings.TrimSpace(in.Date),
		TimeSlot: strings.TrimSpace(in.TimeSlot),
		Room:     strings.TrimSpace(in.Room),
	}
	if res := inputval.Validate(cs); res.HasErrors() {
		h.fail(w, http.StatusBadRequest, res.First())
		return
	}
	created, err := h.Sessions.Create(r.Context(), cs)
	if err != nil {
		if errors.Is(err, sessionstore.ErrDuplicateSession) {
			h.fail(w, http.StatusConflict, sentence(err))
			return
		}
		h.serverError(w, r, "create session", err, "", "Could not create the class session.")
		return
	}
	h.ok(w, http.StatusCreated, "Class session created.", payload{"data": created})
}

// EnrollStudents handles POST /enroll-students. Every listed student must
// exist; students already on the roster are left as they are.
func (h *Handler) EnrollStudents(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SessionID models.ID `json:"session_id" validate:"required" label:"Class session"`
		Students  []string  `json:"students" validate:"required,min=1" label:"Students"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.badBody(w, err)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx := r.Context()
	ids := dedupe(in.Students)
	if len(ids) == 0 {
		h.fail(w, http.StatusBadRequest, "Students is required.")
		return
	}
	known, err := h.Students.ByMSSVs(ctx, ids)
	if err != nil {
		h.serverError(w, r, "enroll students", err, "", "Could not enroll the students.")
		return
	}
	if len(known) != len(ids) {
		h.fail(w, http.StatusBadRequest, "Unknown student: "+firstMissing(ids, known)+".")
		return
	}

	found, err := h.Sessions.Enroll(ctx, in.SessionID, ids)
	if err != nil {
		h.serverError(w, r, "enroll students", err, "", "Could not enroll the students.")
		return
	}
	if !found {
		h.fail(w, http.StatusNotFound, msgSessionNotFound)
		return
	}
	h.ok(w, http.StatusOK, "Students enrolled.", nil)
}

// StudentsBySession handles GET /get-students-by-session?session_id=.
func (h *Handler) StudentsBySession(w http.ResponseWriter, r *http.Request) {
	id := models.ID(normalize.QueryParam(r.URL.Query().Get("session_id")))
	if id.IsZero() {
		h.fail(w, http.StatusBadRequest, "Class session is required.")
		return
	}
	_, enrolled, err := h.roster(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "students by session", err, msgSessionNotFound, "Could not load the students for this session.")
		return
	}
	h.ok(w, http.StatusOK, "", payload{"data": payload{"students": enrolled}})
}

// StudentSessions handles GET /get-student-sessions?mssv=.
func (h *Handler) StudentSessions(w http.ResponseWriter, r *http.Request) {
	mssv := normalize.MSSV(r.URL.Query().Get("mssv"))
	if mssv == "" {
		h.fail(w, http.StatusBadRequest, "Student ID is required.")
		return
	}
	mine, err := h.Sessions.ForStudent(r.Context(), mssv)
	if err != nil {
		h.serverError(w, r, "student sessions", err, "", "Could not load your schedule.")
		return
	}
	h.ok(w, http.StatusOK, "", payload{"sessions": mine})
}

// dedupe trims ids and drops blanks and repeats, keeping order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func firstMissing(ids []string, known []models.Student) string {
	have := make(map[string]struct{}, len(known))
	for _, s := range known {
		have[s.MSSV] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			return id
		}
	}
	return ""
}
