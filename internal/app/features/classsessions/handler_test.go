package classsessions_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/dalemusser/classhub/internal/app/features/classsessions"
	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/store/audit"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*classsessions.Handler, *testutil.FakeBackend, *testutil.AuditRecorder) {
	t.Helper()
	fb := testutil.NewFakeBackend()
	fb.AddStudents(
		models.Student{MSSV: "SV001", FullName: "An Nguyen"},
		models.Student{MSSV: "SV002", FullName: "Binh Tran"},
	)
	al, rec := testutil.NewAuditLogger()
	h := classsessions.NewHandler(fb, testutil.NewSessionManager(t), uierrors.NewErrorLogger(zap.NewNop()), al, zap.NewNop())
	return h, fb, rec
}

func serve(fn http.HandlerFunc, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	req = testutil.WithUser(req, testutil.AdminUser())
	fn(rec, req)
	return rec
}

func TestHandleCreate(t *testing.T) {
	h, fb, events := newTestHandler(t)

	form := url.Values{"date": {"2026-10-20"}, "time_slot": {"07:30-09:30"}, "room": {"A101"}}
	rec := serve(h.HandleCreate, testutil.NewFormRequest("POST", "/class-management/sessions", form))

	sessions, _ := fb.ListSessions(context.Background())
	if len(sessions) != 1 {
		t.Fatalf("sessions: got %d", len(sessions))
	}
	rec.AssertRedirect(t, "/class-management?session="+sessions[0].ID.String())
	if !events.Has(audit.EventSessionCreated) {
		t.Errorf("audit events: %v", events.Types())
	}
}

func TestHandleCreate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing date", url.Values{"time_slot": {"07:30"}, "room": {"A1"}}},
		{"bad date", url.Values{"date": {"20/10/2026"}, "time_slot": {"07:30"}, "room": {"A1"}}},
		{"missing slot", url.Values{"date": {"2026-10-20"}, "room": {"A1"}}},
		{"missing room", url.Values{"date": {"2026-10-20"}, "time_slot": {"07:30"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fb, _ := newTestHandler(t)

			rec := serve(h.HandleCreate, testutil.NewFormRequest("POST", "/class-management/sessions", tt.form))

			if rec.Code == http.StatusSeeOther {
				t.Fatal("invalid session must not redirect")
			}
			if fb.Calls("CreateSession") != 0 {
				t.Error("backend must not be called")
			}
		})
	}
}

func TestHandleEnroll(t *testing.T) {
	h, fb, events := newTestHandler(t)
	sid := fb.AddSession("2026-10-20", "07:30", "A101")

	form := url.Values{"session_id": {sid.String()}, "students": {"SV001", " SV002 ", "SV001", ""}}
	rec := serve(h.HandleEnroll, testutil.NewFormRequest("POST", "/class-management/enroll", form))

	rec.AssertRedirect(t, "/class-management?session="+sid.String())
	enrolled, _ := fb.StudentsBySession(context.Background(), sid)
	if len(enrolled) != 2 {
		t.Fatalf("enrolled: got %d, want 2", len(enrolled))
	}
	ev := events.Events()
	if len(ev) != 1 || ev[0].EventType != audit.EventStudentsEnrolled {
		t.Errorf("audit: %v", events.Types())
	}
}

func TestHandleEnroll_NothingSelected(t *testing.T) {
	h, fb, _ := newTestHandler(t)
	sid := fb.AddSession("2026-10-20", "07:30", "A101")

	rec := serve(h.HandleEnroll, testutil.NewFormRequest("POST", "/class-management/enroll", url.Values{"session_id": {sid.String()}}))

	rec.AssertRedirect(t, "/class-management?session="+sid.String())
	if fb.Calls("EnrollStudents") != 0 {
		t.Error("backend must not be called")
	}
}

func TestHandleEnroll_UnknownStudent(t *testing.T) {
	h, fb, events := newTestHandler(t)
	sid := fb.AddSession("2026-10-20", "07:30", "A101")

	form := url.Values{"session_id": {sid.String()}, "students": {"NOPE"}}
	rec := serve(h.HandleEnroll, testutil.NewFormRequest("POST", "/class-management/enroll", form))

	rec.AssertRedirect(t, "/class-management?session="+sid.String())
	if events.Has(audit.EventStudentsEnrolled) {
		t.Error("rejected enroll must not be audited")
	}
}
