package handlers

import (
	"errors"
	"net/http"

	studentstore "github.com/dalemusser/classhub/internal/api/store/students"
	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/normalize"
	"github.com/dalemusser/classhub/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

const msgStudentNotFound = "Student not found."

// ListStudents handles GET /get-students.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	all, err := h.Students.List(r.Context())
	if err != nil {
		h.serverError(w, r, "list students", err, "", "Could not load the student list.")
		return
	}
	h.ok(w, http.StatusOK, "", payload{"students": all})
}

// GetStudent handles GET /get-student?mssv=.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	mssv := normalize.MSSV(r.URL.Query().Get("mssv"))
	if mssv == "" {
		h.fail(w, http.StatusBadRequest, "Student ID is required.")
		return
	}
	st, err := h.Students.Get(r.Context(), mssv)
	if err != nil {
		h.serverError(w, r, "get student", err, msgStudentNotFound, "Could not load the student.")
		return
	}
	h.ok(w, http.StatusOK, "", payload{"student": st})
}

func (h *Handler) readStudent(w http.ResponseWriter, r *http.Request) (models.Student, bool) {
	var st models.Student
	if err := decodeJSON(w, r, &st); err != nil {
		h.badBody(w, err)
		return st, false
	}
	st.Normalize()
	if res := inputval.Validate(st); res.HasErrors() {
		h.fail(w, http.StatusBadRequest, res.First())
		return st, false
	}
	return st, true
}

// AddStudent handles POST /add-student.
func (h *Handler) AddStudent(w http.ResponseWriter, r *http.Request) {
	st, ok := h.readStudent(w, r)
	if !ok {
		return
	}
	if err := h.Students.Create(r.Context(), st); err != nil {
		if errors.Is(err, studentstore.ErrDuplicateMSSV) {
			h.fail(w, http.StatusConflict, sentence(err))
			return
		}
		h.serverError(w, r, "add student", err, "", "Could not add the student.")
		return
	}
	h.ok(w, http.StatusCreated, "Student added.", payload{"student": st})
}

// EditStudent handles POST /edit-student. The mssv names the student and
// is never changed.
func (h *Handler) EditStudent(w http.ResponseWriter, r *http.Request) {
	st, ok := h.readStudent(w, r)
	if !ok {
		return
	}
	found, err := h.Students.Update(r.Context(), st)
	if err != nil {
		h.serverError(w, r, "edit student", err, "", "Could not update the student.")
		return
	}
	if !found {
		h.fail(w, http.StatusNotFound, msgStudentNotFound)
		return
	}
	h.ok(w, http.StatusOK, "Student updated.", payload{"student": st})
}

// DeleteStudent handles POST /delete-student. The student is also removed
// from every roster, group and attendance sheet.
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	var in struct {
		MSSV string `json:"mssv" validate:"required" label:"Student ID"`
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
	found, err := h.Students.Delete(ctx, in.MSSV)
	if err != nil {
		h.serverError(w, r, "delete student", err, "", "Could not delete the student.")
		return
	}
	if !found {
		h.fail(w, http.StatusNotFound, msgStudentNotFound)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.Sessions.PullStudent(gctx, in.MSSV) })
	g.Go(func() error { return h.Groups.PullMember(gctx, in.MSSV) })
	g.Go(func() error { return h.Attendance.DeleteStudent(gctx, in.MSSV) })
	if err := g.Wait(); err != nil {
		h.serverError(w, r, "delete student cascade", err, "", "The student was deleted but some related records could not be cleaned up.")
		return
	}
	h.ok(w, http.StatusOK, "Student deleted.", nil)
}
