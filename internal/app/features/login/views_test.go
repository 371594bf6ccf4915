package login

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/classhub/internal/testutil"
)

func TestLoginTemplate(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest("GET", "/login?return=/attendance", nil)
	data := h.formData(httptest.NewRecorder(), req, "Invalid email, password or role.", "an@test.edu", "student", "/attendance")

	doc := testutil.RenderPage(t, "login", data, FS)

	if got := doc.Find(".form-error").Text(); got != "Invalid email, password or role." {
		t.Errorf("error: got %q", got)
	}
	if v, _ := doc.Find(`input[name="email"]`).Attr("value"); v != "an@test.edu" {
		t.Errorf("email: got %q", v)
	}
	if v, _ := doc.Find(`input[name="return"]`).Attr("value"); v != "/attendance" {
		t.Errorf("return: got %q", v)
	}
	if v, _ := doc.Find(`select[name="role"] option[selected]`).Attr("value"); v != "student" {
		t.Errorf("selected role: got %q", v)
	}
	if doc.Find(`a[href="/signup"]`).Length() != 1 {
		t.Error("missing sign-up link")
	}
}

func TestRoleOptions_DefaultsToAdmin(t *testing.T) {
	opts := roleOptions("")
	if len(opts) != 2 || !opts[0].Selected || opts[1].Selected {
		t.Errorf("unexpected options: %+v", opts)
	}
}
