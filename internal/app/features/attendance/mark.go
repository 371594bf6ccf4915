// internal/app/features/attendance/mark.go
package attendance

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/domain/models"
	"go.uber.org/zap"
)

type markInput struct {
	SessionID string `validate:"required" label:"Class session"`
	Date      string `validate:"required,datetime=2006-01-02" label:"Date"`
	MSSV      string `validate:"required" label:"Student ID"`
	Status    string `validate:"required,attendance" label:"Status"`
}

// HandleMark records one student's status and returns to the same sheet.
func (h *Handler) HandleMark(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/attendance")
		return
	}
	in := markInput{
		SessionID: strings.TrimSpace(r.FormValue("session_id")),
		Date:      strings.TrimSpace(r.FormValue("date")),
		MSSV:      strings.TrimSpace(r.FormValue("mssv")),
		Status:    strings.TrimSpace(r.FormValue("status")),
	}
	sel := readSelection(in.SessionID, in.Date)

	if res := inputval.Validate(in); res.HasErrors() {
		h.SessionMgr.AddToast(w, r, auth.ToastError, res.First())
		http.Redirect(w, r, sel.pageURL(), http.StatusSeeOther)
		return
	}
	status, _ := models.ParseAttendanceStatus(in.Status)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	if err := h.GW.MarkAttendance(ctx, sel.SessionID, in.MSSV, status, in.Date); err != nil {
		h.Log.Info("mark attendance rejected", zap.String("mssv", in.MSSV), zap.Error(err))
		h.SessionMgr.AddToast(w, r, auth.ToastError, gateway.MessageFor(err, "Could not save attendance."))
		http.Redirect(w, r, sel.pageURL(), http.StatusSeeOther)
		return
	}

	h.AuditLog.AttendanceMarked(ctx, r, authz.ActorEmail(r), in.SessionID, in.Date, in.MSSV, string(status))
	h.SessionMgr.AddToast(w, r, auth.ToastSuccess, in.MSSV+" marked "+strings.ToLower(status.Label())+".")
	http.Redirect(w, r, sel.pageURL(), http.StatusSeeOther)
}
