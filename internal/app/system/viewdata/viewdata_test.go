package viewdata_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
)

type stubToasts []auth.Toast

func (s stubToasts) PopToasts(http.ResponseWriter, *http.Request) []auth.Toast { return s }

func TestNewBaseVM_Visitor(t *testing.T) {
	req := httptest.NewRequest("GET", "/login", nil)
	vm := viewdata.NewBaseVM(httptest.NewRecorder(), req, nil, "Sign in", "/")

	if vm.IsLoggedIn {
		t.Error("visitor should not be logged in")
	}
	if vm.Role != "visitor" {
		t.Errorf("role: got %q, want visitor", vm.Role)
	}
	if vm.Nav != nil {
		t.Errorf("visitor nav: got %v, want nil", vm.Nav)
	}
	if vm.SiteName != viewdata.SiteName || vm.Title != "Sign in" {
		t.Errorf("unexpected page context: %+v", vm)
	}
}

func TestNewBaseVM_AdminNavAndToasts(t *testing.T) {
	req := httptest.NewRequest("GET", "/students/SV001/edit", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{Email: "admin@uni.edu", Name: "admin@uni.edu", Role: "admin"})

	toasts := stubToasts{{Kind: auth.ToastSuccess, Message: "Saved."}}
	vm := viewdata.NewBaseVM(httptest.NewRecorder(), req, toasts, "Edit student", "/home")

	if !vm.IsLoggedIn || vm.Role != "admin" {
		t.Fatalf("unexpected user context: %+v", vm)
	}
	if len(vm.Toasts) != 1 || vm.Toasts[0].Message != "Saved." {
		t.Errorf("toasts: got %+v", vm.Toasts)
	}

	active := ""
	for _, n := range vm.Nav {
		if n.Active {
			active = n.Href
		}
	}
	if active != "/home" {
		t.Errorf("active nav: got %q, want /home", active)
	}
}

func TestNewBaseVM_StudentNav(t *testing.T) {
	req := httptest.NewRequest("GET", "/student/group", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{Email: "an@uni.edu", Name: "An", Role: "student"})

	vm := viewdata.NewBaseVM(httptest.NewRecorder(), req, nil, "My group", "/student/home")

	if len(vm.Nav) != 5 {
		t.Fatalf("student nav items: got %d, want 5", len(vm.Nav))
	}
	for _, n := range vm.Nav {
		if n.Active != (n.Href == "/student/group") {
			t.Errorf("nav %q active=%v", n.Href, n.Active)
		}
	}
}
