package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/features/login"
	"github.com/dalemusser/classhub/internal/app/store/audit"
	"github.com/dalemusser/classhub/internal/app/system/ratelimit"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/testutil"
	"go.uber.org/zap"
)

type fixture struct {
	h     *login.Handler
	fb    *testutil.FakeBackend
	audit *testutil.AuditRecorder
}

func newFixture(t *testing.T, limits ratelimit.Config) *fixture {
	t.Helper()
	fb := testutil.NewFakeBackend()
	fb.AddStudents(models.Student{MSSV: "SV001", FullName: "An Nguyen"})
	fb.AddAccount("admin@test.edu", "secret", models.RoleAdmin, "")
	fb.AddAccount("an@test.edu", "pw123", models.RoleStudent, "SV001")

	al, rec := testutil.NewAuditLogger()
	limiter := ratelimit.NewLoginLimiter(limits)
	t.Cleanup(limiter.Stop)

	h := login.NewHandler(fb, testutil.NewSessionManager(t), uierrors.NewErrorLogger(zap.NewNop()), al, limiter, zap.NewNop())
	return &fixture{h: h, fb: fb, audit: rec}
}

// post runs the login POST.
func (f *fixture) post(form url.Values) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	req := testutil.NewFormRequest("POST", "/login", form)
	f.h.HandleLoginPost(rec, req)
	return rec
}

func creds(email, password, role string) url.Values {
	return url.Values{"email": {email}, "password": {password}, "role": {role}}
}

func TestLoginPost_AdminSuccess(t *testing.T) {
	f := newFixture(t, ratelimit.Config{})

	rec := f.post(creds("admin@test.edu", "secret", "admin"))

	rec.AssertRedirect(t, "/home")
	if !testutil.HasCookie(rec, testutil.SessionCookieName) {
		t.Error("expected a session cookie")
	}
	if !f.audit.Has(audit.EventLoginSuccess) {
		t.Errorf("audit events: %v", f.audit.Types())
	}
}

func TestLoginPost_StudentGoesToStudentHome(t *testing.T) {
	f := newFixture(t, ratelimit.Config{})

	rec := f.post(creds("an@test.edu", "pw123", "student"))

	rec.AssertRedirect(t, "/student/home")
}

func TestLoginPost_HonoursReturnURL(t *testing.T) {
	f := newFixture(t, ratelimit.Config{})

	form := creds("admin@test.edu", "secret", "admin")
	form.Set("return", "/group-management")
	rec := f.post(form)

	rec.AssertRedirect(t, "/group-management")
}

func TestLoginPost_RejectsOffsiteReturn(t *testing.T) {
	f := newFixture(t, ratelimit.Config{})

	form := creds("admin@test.edu", "secret", "admin")
	form.Set("return", "https://evil.example.com/")
	rec := f.post(form)

	rec.AssertRedirect(t, "/home")
}

func TestLoginPost_WrongCredentials(t *testing.T) {
	tests := []struct {
		name  string
		form  url.Values
		calls int
	}{
		{"bad password", creds("admin@test.edu", "nope", "admin"), 1},
		{"wrong role", creds("admin@test.edu", "secret", "student"), 1},
		{"missing email", creds("", "secret", "admin"), 0},
		{"malformed email", creds("admin", "secret", "admin"), 0},
		{"missing password", creds("admin@test.edu", "", "admin"), 0},
		{"unknown role", creds("admin@test.edu", "secret", "teacher"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, ratelimit.Config{})

			rec := f.post(tt.form)

			if rec.Code == http.StatusSeeOther {
				t.Fatalf("unexpected redirect to %q", rec.Header().Get("Location"))
			}
			if testutil.HasCookie(rec, testutil.SessionCookieName) {
				t.Error("no session should be created")
			}
			if got := f.fb.Calls("Login"); got != tt.calls {
				t.Errorf("Login calls: got %d, want %d", got, tt.calls)
			}
		})
	}
}

func TestLoginPost_FailureIsAudited(t *testing.T) {
	f := newFixture(t, ratelimit.Config{})

	f.post(creds("admin@test.edu", "nope", "admin"))

	events := f.audit.Events()
	if len(events) != 1 || events[0].EventType != audit.EventLoginFailed {
		t.Fatalf("audit events: %v", f.audit.Types())
	}
	if events[0].Success {
		t.Error("failed login must not be recorded as a success")
	}
}

func TestLoginPost_BackendDown(t *testing.T) {
	f := newFixture(t, ratelimit.Config{})
	f.fb.FailOn("Login", testutil.ConnectivityError("login"))

	rec := f.post(creds("admin@test.edu", "secret", "admin"))

	if rec.Code == http.StatusSeeOther {
		t.Fatal("backend failure must not sign in")
	}
	if !f.audit.Has(audit.EventLoginFailed) {
		t.Errorf("audit events: %v", f.audit.Types())
	}
}

func TestLoginPost_RateLimitedByEmail(t *testing.T) {
	f := newFixture(t, ratelimit.Config{EmailLimit: 2, IPLimit: 100})

	for i := 0; i < 2; i++ {
		f.post(creds("admin@test.edu", "nope", "admin"))
	}
	rec := f.post(creds("admin@test.edu", "secret", "admin"))

	if rec.Code == http.StatusSeeOther {
		t.Fatal("rate-limited attempt must not sign in")
	}
	if got := f.fb.Calls("Login"); got != 2 {
		t.Errorf("Login calls: got %d, want 2", got)
	}
	if !f.audit.Has(audit.EventLoginFailedRateLimit) {
		t.Errorf("audit events: %v", f.audit.Types())
	}
}

func TestLoginPost_SuccessResetsEmailLimit(t *testing.T) {
	f := newFixture(t, ratelimit.Config{EmailLimit: 2, IPLimit: 100})

	f.post(creds("admin@test.edu", "nope", "admin"))
	f.post(creds("admin@test.edu", "secret", "admin"))
	f.post(creds("admin@test.edu", "nope", "admin"))
	rec := f.post(creds("admin@test.edu", "secret", "admin"))

	rec.AssertRedirect(t, "/home")
}

func TestServeLogin_SignedInRedirectsHome(t *testing.T) {
	f := newFixture(t, ratelimit.Config{})

	tests := []struct {
		name string
		req  *http.Request
		want string
	}{
		{"admin", testutil.WithUser(httptest.NewRequest("GET", "/login", nil), testutil.AdminUser()), "/home"},
		{"student", testutil.WithUser(httptest.NewRequest("GET", "/login", nil), testutil.StudentUser("SV001", "An Nguyen")), "/student/home"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			f.h.ServeLogin(rec, tt.req)
			rec.AssertRedirect(t, tt.want)
		})
	}
}
