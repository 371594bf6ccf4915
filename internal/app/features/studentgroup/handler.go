// internal/app/features/studentgroup/handler.go
package studentgroup

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/notifyflow"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/authz"
	"github.com/dalemusser/classhub/internal/app/system/timeouts"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves /student/group: the student's group, its members and the
// notifications sent to its session.
type Handler struct {
	Flow       *notifyflow.Flow
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(gw notifyflow.Gateway, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Flow:       notifyflow.New(gw, logger),
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

type noteRow struct {
	ID      string
	Message string
	From    string
	Sent    string
	Unread  bool
}

type pageData struct {
	viewdata.BaseVM
	LoadError string

	HasGroup bool
	Name     string
	Mode     string
	Session  string
	Members  []models.GroupMember
	Self     string

	Alerts        []string
	Notifications []noteRow
	NotesError    string
}

func (h *Handler) buildPage(ctx context.Context, w http.ResponseWriter, r *http.Request) pageData {
	data := pageData{BaseVM: viewdata.NewBaseVM(w, r, h.SessionMgr, "My group", "/student/home")}
	mssv, _ := authz.StudentMSSV(r)
	data.Self = mssv

	view, err := h.Flow.Load(ctx, mssv)
	if err != nil && !view.HasGroup() {
		data.LoadError = notifyflow.Message(err)
		return data
	}
	if !view.HasGroup() {
		return data
	}
	// The group loaded but its notifications did not.
	if err != nil {
		data.NotesError = gateway.MessageFor(err, "Could not load notifications.")
	}

	g := view.Group
	data.HasGroup = true
	data.Name = g.Name
	data.Mode = g.Mode.Label()
	data.Members = g.Members
	if g.Session != nil {
		data.Session = g.Session.Date + " · " + g.Session.TimeSlot + " · " + g.Session.Room
	}
	data.Alerts = view.Alerts
	for _, n := range view.Notifications {
		data.Notifications = append(data.Notifications, noteRow{
			ID:      n.ID.String(),
			Message: n.Message,
			From:    n.CreatedBy,
			Sent:    n.CreatedAt.Format("2006-01-02 15:04"),
			Unread:  !n.IsRead,
		})
	}
	return data
}

// ServeGroup handles GET /student/group.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	templates.Render(w, r, "student_group", h.buildPage(ctx, w, r))
}

// HandleMarkRead handles POST /student/group/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uierrors.RenderBadRequest(w, r, "Invalid form data.", "/student/group")
		return
	}
	mssv, _ := authz.StudentMSSV(r)
	id := models.ID(strings.TrimSpace(r.PostForm.Get("notification_id")))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Gateway())
	defer cancel()

	if err := h.Flow.MarkRead(ctx, mssv, id); err != nil {
		h.SessionMgr.AddToast(w, r, auth.ToastError, notifyflow.Message(err))
	}
	http.Redirect(w, r, "/student/group", http.StatusSeeOther)
}
