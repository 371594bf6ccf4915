// internal/app/features/groups/export.go
package groups

import (
	"net/http"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/groupflow"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/xlsxexport"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServeExport streams the groups of ?session= as an .xlsx roster.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	id := models.ID(query.Get(r, groupflow.KeySession))
	back := (&groupflow.State{SelectedSession: id, Settings: groupflow.DefaultSettings()}).URL(basePath)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "group export")
	defer cancel()

	fail := func(msg string) {
		h.SessionMgr.AddToast(w, r, auth.ToastError, msg)
		http.Redirect(w, r, back, http.StatusSeeOther)
	}

	sessions, err := h.GW.ListSessions(ctx)
	if err != nil {
		fail(gateway.MessageFor(err, "Could not load class sessions."))
		return
	}
	st := &groupflow.State{Sessions: sessions, SelectedSession: id}
	session := st.Session()
	if session == nil {
		fail("Choose a class session to export.")
		return
	}

	groups, err := h.GW.GroupsBySession(ctx, session.ID)
	if err != nil {
		fail(gateway.MessageFor(err, "Could not load the groups for this session."))
		return
	}

	book, err := xlsxexport.GroupRoster(*session, groups)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "build group workbook failed", err, "Could not build the spreadsheet.", back)
		return
	}
	if err := xlsxexport.Write(w, book, xlsxexport.FileName("groups", session.Date, session.Room)); err != nil {
		h.Log.Warn("write group workbook failed", zap.Error(err))
	}
}
