package attendance_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dalemusser/classhub/internal/app/features/attendance"
	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/store/audit"
	"github.com/dalemusser/classhub/internal/app/system/xlsxexport"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/testutil"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fixture struct {
	h      *attendance.Handler
	fb     *testutil.FakeBackend
	events *testutil.AuditRecorder
	sid    models.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fb := testutil.NewFakeBackend()
	fb.AddStudents(
		models.Student{MSSV: "SV001", FullName: "An Nguyen"},
		models.Student{MSSV: "SV002", FullName: "Binh Tran"},
	)
	sid := fb.AddSession("2026-10-20", "07:30-09:30", "A101", "SV001", "SV002")
	al, rec := testutil.NewAuditLogger()
	h := attendance.NewHandler(fb, testutil.NewSessionManager(t), uierrors.NewErrorLogger(zap.NewNop()), al, zap.NewNop())
	return &fixture{h: h, fb: fb, events: rec, sid: sid}
}

func serve(fn http.HandlerFunc, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	req = testutil.WithUser(req, testutil.AdminUser())
	fn(rec, req)
	return rec
}

func (f *fixture) mark(mssv, status, date string) *testutil.ResponseRecorder {
	form := url.Values{"session_id": {f.sid.String()}, "date": {date}, "mssv": {mssv}, "status": {status}}
	return serve(f.h.HandleMark, testutil.NewFormRequest("POST", "/attendance/mark", form))
}

func TestHandleMark(t *testing.T) {
	f := newFixture(t)

	rec := f.mark("SV001", "present", "2026-10-20")

	rec.AssertRedirect(t, "/attendance?date=2026-10-20&session="+f.sid.String())
	records, _ := f.fb.SessionAttendance(context.Background(), f.sid, "2026-10-20")
	if records[0].Status != models.StatusPresent || records[1].Status != models.StatusUnmarked {
		t.Errorf("records: %+v", records)
	}
	ev := f.events.Events()
	if len(ev) != 1 || ev[0].EventType != audit.EventAttendanceMarked {
		t.Fatalf("audit: %v", f.events.Types())
	}
}

func TestHandleMark_Overwrites(t *testing.T) {
	f := newFixture(t)

	f.mark("SV001", "present", "2026-10-20")
	f.mark("SV001", "absent", "2026-10-20")

	records, _ := f.fb.SessionAttendance(context.Background(), f.sid, "2026-10-20")
	if records[0].Status != models.StatusAbsent {
		t.Errorf("status: got %q, want absent", records[0].Status)
	}
}

func TestHandleMark_Invalid(t *testing.T) {
	tests := []struct {
		name, mssv, status, date string
	}{
		{"unknown status", "SV001", "late", "2026-10-20"},
		{"missing status", "SV001", "", "2026-10-20"},
		{"bad date", "SV001", "present", "yesterday"},
		{"missing student", "", "present", "2026-10-20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rec := f.mark(tt.mssv, tt.status, tt.date)

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status: got %d, want 303", rec.Code)
			}
			if f.fb.Calls("MarkAttendance") != 0 {
				t.Error("backend must not be called")
			}
		})
	}
}

func TestServeExport(t *testing.T) {
	f := newFixture(t)
	f.mark("SV002", "absent", "2026-10-20")

	req := httptest.NewRequest("GET", "/attendance/export?session="+f.sid.String()+"&date=2026-10-20", nil)
	rec := serve(f.h.ServeExport, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxexport.ContentType {
		t.Errorf("content type: got %q", ct)
	}
	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()
	cells := map[string]string{
		"A1": "2026-10-20 · 07:30-09:30 · A101",
		"B4": "SV001",
		"D4": "Not marked",
		"B5": "SV002",
		"D5": "Absent",
	}
	for cell, want := range cells {
		got, err := book.GetCellValue("Attendance", cell)
		if err != nil || got != want {
			t.Errorf("%s: got %q (%v), want %q", cell, got, err, want)
		}
	}
	if !f.events.Has(audit.EventAttendanceExported) {
		t.Errorf("audit: %v", f.events.Types())
	}
}

func TestServeExport_UnknownSession(t *testing.T) {
	f := newFixture(t)

	rec := serve(f.h.ServeExport, httptest.NewRequest("GET", "/attendance/export?session=nope", nil))

	rec.AssertRedirect(t, "/attendance?session=nope")
}
