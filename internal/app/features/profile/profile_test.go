package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/testutil"
	"go.uber.org/zap"
)

func TestBuildProfile(t *testing.T) {
	tests := []struct {
		name      string
		fail      bool
		wantName  string
		wantStale bool
	}{
		{"live roster record", false, "An Nguyen Van", false},
		{"backend down falls back to sign-in copy", true, "An Nguyen", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := testutil.NewFakeBackend()
			// The roster was edited after the student signed in.
			fb.AddStudents(models.Student{MSSV: "SV001", FullName: "An Nguyen Van", Faculty: "IT", Class: "CNTT1", BirthDate: "2003-04-05"})
			if tt.fail {
				fb.FailOn("GetStudent", testutil.ConnectivityError("get student"))
			}
			h := NewHandler(fb, nil, zap.NewNop())
			u := testutil.StudentUser("SV001", "An Nguyen")
			req := testutil.WithUser(httptest.NewRequest("GET", "/student/profile", nil), u)

			data := h.buildProfile(context.Background(), httptest.NewRecorder(), req, u)

			if data.Student.FullName != tt.wantName {
				t.Errorf("name: got %q, want %q", data.Student.FullName, tt.wantName)
			}
			if (data.Stale != "") != tt.wantStale {
				t.Errorf("stale: got %q", data.Stale)
			}
		})
	}
}

func TestProfileTemplate(t *testing.T) {
	fb := testutil.NewFakeBackend()
	fb.FailOn("GetStudent", testutil.ConnectivityError("get student"))
	h := NewHandler(fb, nil, zap.NewNop())
	u := testutil.StudentUser("SV001", "An Nguyen")
	req := testutil.WithUser(httptest.NewRequest("GET", "/student/profile", nil), u)

	doc := testutil.RenderPage(t, "student_profile", h.buildProfile(context.Background(), httptest.NewRecorder(), req, u), FS)

	if got := doc.Find("dd.mssv").Text(); got != "SV001" {
		t.Errorf("mssv: got %q", got)
	}
	if got := doc.Find("dd.ngaysinh").Text(); got != "2003-04-05" {
		t.Errorf("birth date: got %q", got)
	}
	if doc.Find(".load-error").Length() != 1 {
		t.Error("stale warning missing")
	}
}

func TestServeProfile_AdminRejected(t *testing.T) {
	h := NewHandler(testutil.NewFakeBackend(), nil, zap.NewNop())
	req := testutil.WithUser(httptest.NewRequest("GET", "/student/profile", nil), testutil.AdminUser())
	rec := httptest.NewRecorder()

	h.ServeProfile(rec, req)

	if rec.Code == http.StatusOK {
		t.Errorf("admin has no student profile, got %d", rec.Code)
	}
}
