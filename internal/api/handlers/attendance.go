package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/normalize"
	"github.com/dalemusser/classhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionAttendance handles GET /get-attendance?session_id=&date=. Every
// enrolled student is listed; students without a mark have an empty
// status.
func (h *Handler) SessionAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := models.ID(normalize.QueryParam(q.Get("session_id")))
	date := normalize.QueryParam(q.Get("date"))
	if sessionID.IsZero() {
		h.fail(w, http.StatusBadRequest, "Class session is required.")
		return
	}
	if res := inputval.Var(date, "required,datetime=2006-01-02", "Date"); res.HasErrors() {
		h.fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx := r.Context()
	_, enrolled, err := h.roster(ctx, sessionID)
	if err != nil {
		h.serverError(w, r, "session attendance", err, msgSessionNotFound, "Could not load attendance.")
		return
	}
	marks, err := h.Attendance.ForSessionDate(ctx, sessionID, date)
	if err != nil {
		h.serverError(w, r, "session attendance", err, "", "Could not load attendance.")
		return
	}
	h.ok(w, http.StatusOK, "", payload{"data": payload{"attendance": mergeAttendance(sessionID, date, enrolled, marks)}})
}

// mergeAttendance lists enrolled students in roster order with their mark
// for the date, if any.
func mergeAttendance(sessionID models.ID, date string, enrolled []models.Student, marks []models.AttendanceRecord) []models.AttendanceRecord {
	byMSSV := make(map[string]models.AttendanceRecord, len(marks))
	for _, m := range marks {
		byMSSV[m.MSSV] = m
	}
	out := make([]models.AttendanceRecord, 0, len(enrolled))
	for _, s := range enrolled {
		rec, ok := byMSSV[s.MSSV]
		if !ok {
			rec = models.AttendanceRecord{SessionID: sessionID, MSSV: s.MSSV, Date: date, Status: models.StatusUnmarked}
		}
		rec.FullName = s.FullName
		out = append(out, rec)
	}
	return out
}

// MarkAttendance handles POST /attendance. A second mark for the same
// student and date replaces the first.
func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SessionID models.ID `json:"session_id" validate:"required" label:"Class session"`
		MSSV      string    `json:"mssv" validate:"required" label:"Student ID"`
		Status    string    `json:"status" validate:"required,attendance" label:"Status"`
		Date      string    `json:"date" validate:"required,datetime=2006-01-02" label:"Date"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.badBody(w, err)
		return
	}
	in.MSSV = normalize.MSSV(in.MSSV)
	in.Date = strings.TrimSpace(in.Date)
	if res := inputval.Validate(in); res.HasErrors() {
		h.fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx := r.Context()
	cs, err := h.Sessions.Get(ctx, in.SessionID)
	if err != nil {
		h.serverError(w, r, "mark attendance", err, msgSessionNotFound, "Could not update attendance.")
		return
	}
	if !slices.Contains(cs.Enrolled, in.MSSV) {
		h.fail(w, http.StatusBadRequest, "Student is not enrolled in this session.")
		return
	}
	st, err := h.Students.Get(ctx, in.MSSV)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.serverError(w, r, "mark attendance", err, "", "Could not update attendance.")
		return
	}

	status, _ := models.ParseAttendanceStatus(in.Status)
	rec := models.AttendanceRecord{
		SessionID: cs.ID,
		MSSV:      in.MSSV,
		FullName:  st.FullName,
		Date:      in.Date,
		Status:    status,
	}
	if err := h.Attendance.Mark(ctx, rec, time.Now()); err != nil {
		h.serverError(w, r, "mark attendance", err, "", "Could not update attendance.")
		return
	}
	h.ok(w, http.StatusOK, "Attendance updated.", nil)
}

// StudentAttendance handles GET /get-attendance-by-student?mssv=. Records
// carry their session's time slot and room.
func (h *Handler) StudentAttendance(w http.ResponseWriter, r *http.Request) {
	mssv := normalize.MSSV(r.URL.Query().Get("mssv"))
	if mssv == "" {
		h.fail(w, http.StatusBadRequest, "Student ID is required.")
		return
	}
	ctx := r.Context()
	records, err := h.Attendance.ForStudent(ctx, mssv)
	if err != nil {
		h.serverError(w, r, "student attendance", err, "", "Could not load your attendance.")
		return
	}
	sessions, err := h.Sessions.List(ctx)
	if err != nil {
		h.serverError(w, r, "student attendance", err, "", "Could not load your attendance.")
		return
	}
	byID := make(map[models.ID]models.ClassSession, len(sessions))
	for _, cs := range sessions {
		byID[cs.ID] = cs
	}
	for i := range records {
		if cs, ok := byID[records[i].SessionID]; ok {
			records[i].TimeSlot = cs.TimeSlot
			records[i].Room = cs.Room
		}
	}
	h.ok(w, http.StatusOK, "", payload{"data": payload{"attendance": records}})
}
