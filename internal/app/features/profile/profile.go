// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// profileData is the view model for the profile page.
type profileData struct {
	viewdata.BaseVM

	Email   string
	Student models.Student

	// Stale is set when the roster could not be reached and the copy saved
	// at sign-in is shown instead.
	Stale string
}

// buildProfile prefers the live roster record over the sign-in snapshot.
func (h *Handler) buildProfile(ctx context.Context, w http.ResponseWriter, r *http.Request, u *auth.SessionUser) profileData {
	data := profileData{
		BaseVM:  viewdata.NewBaseVM(w, r, h.SessionMgr, "Profile", "/student/home"),
		Email:   u.Email,
		Student: *u.Student,
	}
	s, err := h.GW.GetStudent(ctx, u.Student.MSSV)
	if err != nil {
		h.Log.Info("student profile fetch failed", zap.String("mssv", u.Student.MSSV), zap.Error(err))
		data.Stale = gateway.MessageFor(err, "Could not refresh your profile.")
		return data
	}
	data.Student = s
	return data
}

// ServeProfile renders the signed-in student's roster record.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.Student == nil {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	templates.Render(w, r, "student_profile", h.buildProfile(ctx, w, r, u))
}
