// internal/app/features/attendance/mine.go
package attendance

import (
	"context"
	"net/http"
	"sort"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type mineRow struct {
	Date     string
	TimeSlot string
	Room     string
	Status   string
	Class    string
	Time     string
}

type mineData struct {
	viewdata.BaseVM
	Rows      []mineRow
	Present   int
	Absent    int
	LoadError string
}

func (h *Handler) buildMine(ctx context.Context, w http.ResponseWriter, r *http.Request) mineData {
	data := mineData{BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "My attendance", "/student/home")}
	mssv, ok := authz.StudentMSSV(r)
	if !ok {
		data.LoadError = "Your student profile is missing. Please sign in again."
		return data
	}
	records, err := h.GW.StudentAttendance(ctx, mssv)
	if err != nil {
		data.LoadError = gateway.MessageFor(err, "Could not load your attendance.")
		return data
	}
	// Newest first.
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date > records[j].Date })
	for _, rec := range records {
		switch rec.Status {
		case models.StatusPresent:
			data.Present++
		case models.StatusAbsent:
			data.Absent++
		}
		data.Rows = append(data.Rows, mineRow{
			Date:     rec.Date,
			TimeSlot: rec.TimeSlot,
			Room:     rec.Room,
			Status:   rec.Status.Label(),
			Class:    string(rec.Status),
			Time:     rec.Time,
		})
	}
	return data
}

// ServeMine shows the signed-in student's attendance history.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	templates.Render(w, r, "student_attendance", h.buildMine(ctx, w, r))
}
