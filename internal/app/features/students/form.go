// internal/app/features/students/form.go
package students

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/navigation"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type formData struct {
	viewdata.BaseVM
	Error   string
	IsEdit  bool
	Action  string
	Student models.Student
	LockID  bool

	// Query is the roster search to return to; BackURL is where Cancel
	// and a successful save go.
	Query   string
	BackURL string
}

func (h *Handler) newForm(w http.ResponseWriter, r *http.Request, s models.Student, edit bool, msg string) formData {
	title, action := "Add student", "/students/new"
	if edit {
		title, action = "Edit student", "/students/"+url.PathEscape(s.MSSV)+"/edit"
	}
	return formData{
		BaseVM:  viewdata.NewBaseVM(w, r, h.SessionMgr, title, "/home"),
		Error:   msg,
		IsEdit:  edit,
		Action:  action,
		Student: s,
		LockID:  edit,
		Query:   strings.TrimSpace(r.FormValue("q")),
		BackURL: navigation.SafeBackURL(r, navigation.RosterBackURL),
	}
}

func studentFromForm(r *http.Request) models.Student {
	s := models.Student{
		MSSV:      r.FormValue("mssv"),
		FullName:  r.FormValue("hoten"),
		Faculty:   r.FormValue("khoa"),
		Class:     r.FormValue("lop"),
		BirthDate: r.FormValue("ngaysinh"),
	}
	s.Normalize()
	return s
}

/*─────────────────────────────────────────────────────────────────────────────*
| Add                                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "students_form", h.newForm(w, r, models.Student{}, false, ""))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/students/new")
		return
	}
	s := studentFromForm(r)
	if res := inputval.Validate(s); res.HasErrors() {
		templates.Render(w, r, "students_form", h.newForm(w, r, s, false, res.First()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	if err := h.GW.AddStudent(ctx, s); err != nil {
		h.Log.Info("add student rejected", zap.String("mssv", s.MSSV), zap.Error(err))
		templates.Render(w, r, "students_form", h.newForm(w, r, s, false, gateway.MessageFor(err, "Could not add the student.")))
		return
	}

	h.AuditLog.StudentCreated(ctx, r, authz.ActorEmail(r), s.MSSV)
	h.SessionMgr.AddToast(w, r, auth.ToastSuccess, "Student "+s.MSSV+" added.")
	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.RosterBackURL), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Edit                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	mssv := strings.TrimSpace(chi.URLParam(r, "mssv"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	s, err := h.GW.GetStudent(ctx, mssv)
	if err != nil {
		h.Log.Info("get student failed", zap.String("mssv", mssv), zap.Error(err))
		h.SessionMgr.AddToast(w, r, auth.ToastError, gateway.MessageFor(err, "Student not found."))
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "students_form", h.newForm(w, r, s, true, ""))
}

// HandleEdit saves a student. The mssv comes from the path; a changed value
// in the form body is ignored.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	mssv := strings.TrimSpace(chi.URLParam(r, "mssv"))
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/home")
		return
	}
	s := studentFromForm(r)
	s.MSSV = mssv
	if res := inputval.Validate(s); res.HasErrors() {
		templates.Render(w, r, "students_form", h.newForm(w, r, s, true, res.First()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	if err := h.GW.EditStudent(ctx, s); err != nil {
		h.Log.Info("edit student rejected", zap.String("mssv", s.MSSV), zap.Error(err))
		templates.Render(w, r, "students_form", h.newForm(w, r, s, true, gateway.MessageFor(err, "Could not save the student.")))
		return
	}

	h.AuditLog.StudentUpdated(ctx, r, authz.ActorEmail(r), s.MSSV)
	h.SessionMgr.AddToast(w, r, auth.ToastSuccess, "Student "+s.MSSV+" saved.")
	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.RosterBackURL), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Delete                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	mssv := strings.TrimSpace(chi.URLParam(r, "mssv"))
	back := navigation.SafeBackURL(r, navigation.RosterBackURL)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	if err := h.GW.DeleteStudent(ctx, mssv); err != nil {
		h.Log.Info("delete student rejected", zap.String("mssv", mssv), zap.Error(err))
		h.SessionMgr.AddToast(w, r, auth.ToastError, gateway.MessageFor(err, "Could not delete the student."))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	h.AuditLog.StudentDeleted(ctx, r, authz.ActorEmail(r), mssv)
	h.SessionMgr.AddToast(w, r, auth.ToastSuccess, "Student "+mssv+" deleted.")
	http.Redirect(w, r, back, http.StatusSeeOther)
}
