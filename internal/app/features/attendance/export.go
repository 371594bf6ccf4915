// internal/app/features/attendance/export.go
package attendance

import (
	"net/http"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/xlsxexport"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServeExport streams the sheet for ?session=&date= as an .xlsx file.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	sel := readSelection(query.Get(r, "session"), query.Get(r, "date"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "attendance export")
	defer cancel()

	fail := func(msg string) {
		h.SessionMgr.AddToast(w, r, auth.ToastError, msg)
		http.Redirect(w, r, sel.pageURL(), http.StatusSeeOther)
	}

	sessions, err := h.GW.ListSessions(ctx)
	if err != nil {
		fail(gateway.MessageFor(err, "Could not load class sessions."))
		return
	}
	var session *models.ClassSession
	for i := range sessions {
		if sessions[i].ID == sel.SessionID {
			session = &sessions[i]
		}
	}
	if session == nil {
		fail("Choose a class session to export.")
		return
	}
	if !validDate(sel.Date) {
		sel.Date = session.Date
	}

	records, err := h.GW.SessionAttendance(ctx, session.ID, sel.Date)
	if err != nil {
		fail(gateway.MessageFor(err, "Could not load attendance."))
		return
	}

	book, err := xlsxexport.Attendance(*session, sel.Date, records)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "build attendance workbook failed", err, "Could not build the spreadsheet.", sel.pageURL())
		return
	}
	h.AuditLog.AttendanceExported(ctx, r, authz.ActorEmail(r), session.ID.String(), sel.Date)
	if err := xlsxexport.Write(w, book, xlsxexport.FileName("attendance", sel.Date, session.Room)); err != nil {
		h.Log.Warn("write attendance workbook failed", zap.Error(err))
	}
}
