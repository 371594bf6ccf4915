// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/classhub/internal/app/system/viewdata"
)

const (
	msgForbidden    = "You don't have permission to view this page."
	msgUnauthorized = "Please sign in to continue."
	msgBadRequest   = "The request could not be understood."
	msgServerError  = "Something went wrong on our side."
)

func newPage(w http.ResponseWriter, r *http.Request, title, heading, msg, backURL string) pageData {
	base := viewdata.NewBaseVM(w, r, nil, title, backURL)
	if backURL != "" {
		base.BackURL = backURL
	}
	return pageData{BaseVM: base, Heading: heading, Message: msg}
}

// RenderUnauthorized shows a "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	render(w, r, http.StatusUnauthorized, newPage(w, r, "Sign in required", "Sign in required", msgUnauthorized, backURL))
}

// RenderForbidden shows an access error page. An empty msg uses the
// default wording; an empty backURL resolves a safe back URL.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = msgForbidden
	}
	render(w, r, http.StatusForbidden, newPage(w, r, "Access denied", "Access denied", msg, backURL))
}

// RenderBadRequest shows a 400 page with msg.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = msgBadRequest
	}
	render(w, r, http.StatusBadRequest, newPage(w, r, "Bad request", "Bad request", msg, backURL))
}
