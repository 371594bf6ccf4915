package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/classhub/internal/domain/grouping"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/domain/partition"
	"go.uber.org/zap"
)

func TestSentence(t *testing.T) {
	tests := []struct {
		in   error
		want string
	}{
		{grouping.ErrNoMembers, "A group needs at least one member."},
		{fmt.Errorf("%w: SV001", grouping.ErrNotEnrolled), "Student is not enrolled in this session: SV001."},
		{errors.New("already a sentence."), "Already a sentence."},
	}
	for _, tt := range tests {
		if got := sentence(tt.in); got != tt.want {
			t.Errorf("sentence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRuleError(t *testing.T) {
	if !ruleError(fmt.Errorf("wrapped: %w", partition.ErrInfeasible)) {
		t.Error("partition errors are rule errors")
	}
	if ruleError(errors.New("connection reset")) {
		t.Error("other errors are not rule errors")
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{" SV002", "SV001", "", "SV002 ", "SV003"})
	want := []string{"SV002", "SV001", "SV003"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("dedupe = %v, want %v", got, want)
	}
}

func TestMergeAttendance(t *testing.T) {
	enrolled := []models.Student{{MSSV: "SV001", FullName: "An"}, {MSSV: "SV002", FullName: "Binh"}}
	marks := []models.AttendanceRecord{{SessionID: "S1", MSSV: "SV002", Date: "2026-10-01", Status: models.StatusPresent, Time: "07:40:00"}}

	got := mergeAttendance("S1", "2026-10-01", enrolled, marks)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].MSSV != "SV001" || got[0].Status != models.StatusUnmarked || got[0].FullName != "An" {
		t.Errorf("unmarked row: %+v", got[0])
	}
	if got[1].Status != models.StatusPresent || got[1].FullName != "Binh" || got[1].Time != "07:40:00" {
		t.Errorf("marked row: %+v", got[1])
	}
}

// bare is a Handler with no stores; only requests rejected before any
// store call may be sent to it.
func bare() *Handler {
	return &Handler{Log: zap.NewNop()}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestRoutes_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		status  int
		message string
	}{
		{"unknown endpoint", "GET", "/nope", "", http.StatusNotFound, "Unknown API endpoint."},
		{"wrong method", "DELETE", "/get-students", "", http.StatusMethodNotAllowed, "Method not allowed."},
		{"get student without mssv", "GET", "/get-student", "", http.StatusBadRequest, "Student ID is required."},
		{"add student bad json", "POST", "/add-student", "{", http.StatusBadRequest, "The request body is not valid JSON."},
		{"add student trailing data", "POST", "/add-student", `{"mssv":"SV001"} {}`, http.StatusBadRequest, "The request body is not valid JSON."},
		{"add student missing name", "POST", "/add-student", `{"mssv":"SV001","khoa":"IT","lop":"C1","ngaysinh":"2003-01-02"}`, http.StatusBadRequest, "Full name is required."},
		{"session bad date", "POST", "/class-sessions", `{"date":"01/10/2026","time_slot":"07:30","room":"A1"}`, http.StatusBadRequest, "Date must be a date in YYYY-MM-DD form."},
		{"create group bad mode", "POST", "/create-group", `{"session_id":"S1","mode":"alphabetical","min_members":1,"max_members":2}`, http.StatusBadRequest, "Grouping mode is not a known grouping mode."},
		{"create group zero min", "POST", "/create-group", `{"session_id":"S1","mode":"random","min_members":0,"max_members":2}`, http.StatusBadRequest, "Minimum members must be at least 1."},
		{"enroll blank ids", "POST", "/enroll-students", `{"session_id":"S1","students":[" "]}`, http.StatusBadRequest, "Students is required."},
		{"attendance bad status", "POST", "/attendance", `{"session_id":"S1","mssv":"SV001","status":"late","date":"2026-10-01"}`, http.StatusBadRequest, "Status must be present or absent."},
		{"attendance list bad date", "GET", "/get-attendance?session_id=S1&date=yesterday", "", http.StatusBadRequest, "Date must be a date in YYYY-MM-DD form."},
		{"notifications missing student", "GET", "/get-notifications?session_id=S1", "", http.StatusBadRequest, "Class session and student ID are required."},
		{"login bad role", "POST", "/login", `{"email":"a@test.edu","password":"x","role":"teacher"}`, http.StatusBadRequest, "Role must be admin or student."},
		{"register short password", "POST", "/register", `{"email":"a@test.edu","password":"123","role":"admin"}`, http.StatusBadRequest, "Password must be at least 6 characters."},
		{"register student without profile", "POST", "/register", `{"email":"a@test.edu","password":"secret1","role":"student"}`, http.StatusBadRequest, "Student ID is required."},
		{"delete group without id", "DELETE", "/delete-group", "", http.StatusBadRequest, "Group is required."},
	}

	router := Routes(bare())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			body := decodeEnvelope(t, rec)
			if body["success"] != false {
				t.Errorf("success: got %v, want false", body["success"])
			}
			if body["message"] != tt.message {
				t.Errorf("message: got %q, want %q", body["message"], tt.message)
			}
		})
	}
}
