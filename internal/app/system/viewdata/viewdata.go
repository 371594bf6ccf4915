// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"

	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the page header and title.
const SiteName = "ClassHub"

// NavItem is one entry in the role-specific navigation bar.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, h.Sessions, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string
	Nav         []NavItem

	// CSRF protection
	CSRFToken string

	// Toasts queued by the previous request (PRG flash messages).
	Toasts []auth.Toast
}

// ToastSource pops the flash messages queued for this request.
type ToastSource interface {
	PopToasts(w http.ResponseWriter, r *http.Request) []auth.Toast
}

// NewBaseVM creates a fully populated BaseVM for a page.
// It consumes pending toasts, so call it before writing the response body.
// toasts may be nil on pages that never show flash messages.
func NewBaseVM(w http.ResponseWriter, r *http.Request, toasts ToastSource, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)
	current := httpnav.CurrentPath(r)

	vm := BaseVM{
		SiteName:    SiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: current,
		Nav:         navFor(role, r.URL.Path),
		CSRFToken:   csrf.Token(r),
	}
	if toasts != nil {
		vm.Toasts = toasts.PopToasts(w, r)
	}
	return vm
}

var (
	adminNav = []NavItem{
		{Label: "Students", Href: "/home"},
		{Label: "Classes", Href: "/class-management"},
		{Label: "Attendance", Href: "/attendance"},
		{Label: "Groups", Href: "/group-management"},
		{Label: "Accounts", Href: "/register"},
		{Label: "Audit", Href: "/audit"},
	}
	studentNav = []NavItem{
		{Label: "Home", Href: "/student/home"},
		{Label: "Profile", Href: "/student/profile"},
		{Label: "Schedule", Href: "/student/schedule"},
		{Label: "Attendance", Href: "/student/attendance"},
		{Label: "My group", Href: "/student/group"},
	}
)

func navFor(role, path string) []NavItem {
	var src []NavItem
	switch role {
	case "admin":
		src = adminNav
	case "student":
		src = studentNav
	default:
		return nil
	}
	out := make([]NavItem, len(src))
	copy(out, src)
	for i := range out {
		out[i].Active = out[i].Href == path ||
			(out[i].Href == "/home" && strings.HasPrefix(path, "/students"))
	}
	return out
}
