package accounts_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/dalemusser/classhub/internal/app/features/accounts"
	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/store/audit"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/classhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*accounts.Handler, *testutil.FakeBackend, *testutil.AuditRecorder) {
	t.Helper()
	fb := testutil.NewFakeBackend()
	al, rec := testutil.NewAuditLogger()
	h := accounts.NewHandler(fb, testutil.NewSessionManager(t), uierrors.NewErrorLogger(zap.NewNop()), al, zap.NewNop())
	return h, fb, rec
}

func studentForm(email, mssv string) url.Values {
	return url.Values{
		"email":    {email},
		"password": {"secret1"},
		"confirm":  {"secret1"},
		"mssv":     {mssv},
		"hoten":    {"An Nguyen"},
		"khoa":     {"Information Technology"},
		"lop":      {"CNTT1"},
		"ngaysinh": {"2003-04-05"},
	}
}

// serve runs fn on a fresh recorder.
func serve(fn http.HandlerFunc, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	fn(rec, req)
	return rec
}

func TestHandleSignup_CreatesStudentAccount(t *testing.T) {
	h, fb, events := newTestHandler(t)

	rec := serve(h.HandleSignup, testutil.NewFormRequest("POST", "/signup", studentForm("an@test.edu", "SV001")))

	rec.AssertRedirect(t, "/login?role=student")
	id, err := fb.Login(context.Background(), "an@test.edu", "secret1", models.RoleStudent)
	if err != nil {
		t.Fatalf("new account cannot sign in: %v", err)
	}
	if id.MSSV() != "SV001" {
		t.Errorf("identity mssv: got %q", id.MSSV())
	}
	if !events.Has(audit.EventAccountRegistered) {
		t.Errorf("audit events: %v", events.Types())
	}
}

func TestHandleSignup_IgnoresRoleField(t *testing.T) {
	h, fb, _ := newTestHandler(t)

	form := studentForm("sneaky@test.edu", "SV002")
	form.Set("role", "admin")
	serve(h.HandleSignup, testutil.NewFormRequest("POST", "/signup", form))

	accs, _ := fb.ListAccounts(context.Background())
	if len(accs) != 1 || accs[0].Role != models.RoleStudent {
		t.Fatalf("accounts: %+v", accs)
	}
}

func TestHandleSignup_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(url.Values)
	}{
		{"missing email", func(v url.Values) { v.Set("email", "") }},
		{"bad email", func(v url.Values) { v.Set("email", "not-an-email") }},
		{"short password", func(v url.Values) { v.Set("password", "abc"); v.Set("confirm", "abc") }},
		{"confirm mismatch", func(v url.Values) { v.Set("confirm", "other11") }},
		{"missing mssv", func(v url.Values) { v.Set("mssv", "  ") }},
		{"missing name", func(v url.Values) { v.Set("hoten", "") }},
		{"bad birth date", func(v url.Values) { v.Set("ngaysinh", "05/04/2003") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fb, _ := newTestHandler(t)
			form := studentForm("an@test.edu", "SV001")
			tt.mutate(form)

			rec := serve(h.HandleSignup, testutil.NewFormRequest("POST", "/signup", form))

			if rec.Code == http.StatusSeeOther {
				t.Fatal("invalid sign-up must not redirect")
			}
			if fb.Calls("Register") != 0 {
				t.Error("backend must not be called with invalid input")
			}
		})
	}
}

func TestHandleSignup_DuplicateEmail(t *testing.T) {
	h, fb, events := newTestHandler(t)
	fb.AddAccount("an@test.edu", "x", models.RoleStudent, "SV001")

	rec := serve(h.HandleSignup, testutil.NewFormRequest("POST", "/signup", studentForm("an@test.edu", "SV001")))

	if rec.Code == http.StatusSeeOther {
		t.Fatal("duplicate sign-up must not redirect")
	}
	if fb.Calls("Register") != 1 {
		t.Errorf("Register calls: got %d", fb.Calls("Register"))
	}
	if events.Has(audit.EventAccountRegistered) {
		t.Error("rejected registration must not be audited as created")
	}
}

func TestHandleCreate_AdminAccountNeedsNoProfile(t *testing.T) {
	h, fb, events := newTestHandler(t)

	form := url.Values{
		"email":    {"second@test.edu"},
		"password": {"secret1"},
		"confirm":  {"secret1"},
		"role":     {"admin"},
	}
	req := testutil.WithUser(testutil.NewFormRequest("POST", "/register", form), testutil.AdminUser())
	rec := serve(h.HandleCreate, req)

	rec.AssertRedirect(t, "/register")
	accs, _ := fb.ListAccounts(context.Background())
	if len(accs) != 1 || accs[0].Role != models.RoleAdmin {
		t.Fatalf("accounts: %+v", accs)
	}
	ev := events.Events()
	if len(ev) != 1 || ev[0].Actor != "admin@test.edu" {
		t.Errorf("audit: %+v", ev)
	}
}

func TestHandleCreate_StudentNeedsProfile(t *testing.T) {
	h, fb, _ := newTestHandler(t)

	form := url.Values{
		"email":    {"an@test.edu"},
		"password": {"secret1"},
		"confirm":  {"secret1"},
		"role":     {"student"},
	}
	req := testutil.WithUser(testutil.NewFormRequest("POST", "/register", form), testutil.AdminUser())
	rec := serve(h.HandleCreate, req)

	if rec.Code == http.StatusSeeOther {
		t.Fatal("student account without profile must be rejected")
	}
	if fb.Calls("Register") != 0 {
		t.Error("backend must not be called")
	}
}

func TestHandleDelete(t *testing.T) {
	h, fb, events := newTestHandler(t)
	id := fb.AddAccount("an@test.edu", "x", models.RoleStudent, "SV001")

	req := testutil.WithUser(testutil.NewFormRequest("POST", "/register/"+id.String()+"/delete", nil), testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", id.String())
	rec := serve(h.HandleDelete, req)

	rec.AssertRedirect(t, "/register")
	accs, _ := fb.ListAccounts(context.Background())
	if len(accs) != 0 {
		t.Fatalf("account still present: %+v", accs)
	}
	if !events.Has(audit.EventAccountDeleted) {
		t.Errorf("audit events: %v", events.Types())
	}
}

func TestHandleDelete_BackendError(t *testing.T) {
	h, fb, events := newTestHandler(t)
	fb.FailOn("DeleteAccount", testutil.ServerError("delete account", "Account not found."))

	req := testutil.WithUser(testutil.NewFormRequest("POST", "/register/x/delete", nil), testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", "x")
	rec := serve(h.HandleDelete, req)

	rec.AssertRedirect(t, "/register")
	if events.Has(audit.EventAccountDeleted) {
		t.Error("failed delete must not be audited")
	}
}
