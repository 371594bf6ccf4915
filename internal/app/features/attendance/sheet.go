// internal/app/features/attendance/sheet.go
package attendance

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type sessionOption struct {
	ID       string
	Label    string
	Selected bool
}

type recordRow struct {
	MSSV     string
	FullName string
	Status   string
	Label    string
	Time     string
	Present  bool
	Absent   bool
}

type sheetData struct {
	viewdata.BaseVM
	LoadError string
	Sessions  []sessionOption
	SessionID string
	Session   string
	Date      string
	Records   []recordRow
	Present   int
	Absent    int
	Unmarked  int
	ExportURL string
}

// selection is the session and date a sheet is for.
type selection struct {
	SessionID models.ID
	Date      string
}

func readSelection(session, date string) selection {
	return selection{SessionID: models.ID(strings.TrimSpace(session)), Date: strings.TrimSpace(date)}
}

func (s selection) query() string {
	v := url.Values{}
	if !s.SessionID.IsZero() {
		v.Set("session", s.SessionID.String())
	}
	if s.Date != "" {
		v.Set("date", s.Date)
	}
	return v.Encode()
}

func (s selection) pageURL() string {
	if q := s.query(); q != "" {
		return "/attendance?" + q
	}
	return "/attendance"
}

func validDate(d string) bool {
	return !inputval.Var(d, "required,datetime=2006-01-02", "Date").HasErrors()
}

// buildSheet lists the sessions and, for a selected session, the marks for
// the chosen date. The date defaults to the session's own date.
func (h *Handler) buildSheet(ctx context.Context, w http.ResponseWriter, r *http.Request, sel selection) sheetData {
	data := sheetData{BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "Attendance", "/attendance")}

	sessions, err := h.GW.ListSessions(ctx)
	if err != nil {
		h.Log.Warn("list sessions failed", zap.Error(err))
		data.LoadError = gateway.MessageFor(err, "Could not load class sessions.")
		return data
	}
	var current *models.ClassSession
	for i, s := range sessions {
		opt := sessionOption{ID: s.ID.String(), Label: s.Label(), Selected: s.ID == sel.SessionID}
		if opt.Selected {
			current = &sessions[i]
		}
		data.Sessions = append(data.Sessions, opt)
	}
	if current == nil {
		return data
	}
	if !validDate(sel.Date) {
		sel.Date = current.Date
	}
	data.SessionID = current.ID.String()
	data.Session = current.Label()
	data.Date = sel.Date
	data.ExportURL = "/attendance/export?" + sel.query()

	records, err := h.GW.SessionAttendance(ctx, current.ID, sel.Date)
	if err != nil {
		h.Log.Warn("load attendance failed", zap.String("session_id", current.ID.String()), zap.Error(err))
		data.LoadError = gateway.MessageFor(err, "Could not load attendance.")
		return data
	}
	for _, rec := range records {
		row := recordRow{
			MSSV:     rec.MSSV,
			FullName: rec.FullName,
			Status:   string(rec.Status),
			Label:    rec.Status.Label(),
			Time:     rec.Time,
			Present:  rec.Status == models.StatusPresent,
			Absent:   rec.Status == models.StatusAbsent,
		}
		switch {
		case row.Present:
			data.Present++
		case row.Absent:
			data.Absent++
		default:
			data.Unmarked++
		}
		data.Records = append(data.Records, row)
	}
	return data
}

// ServeSheet handles GET /attendance.
func (h *Handler) ServeSheet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	sel := readSelection(query.Get(r, "session"), query.Get(r, "date"))
	templates.Render(w, r, "attendance_sheet", h.buildSheet(ctx, w, r, sel))
}
