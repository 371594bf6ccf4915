// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"time"

	"github.com/dalemusser/classhub/internal/app/notifyflow"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/domain/models"
	"go.uber.org/zap"
)

// Gateway is what the student home page reads.
type Gateway interface {
	notifyflow.Gateway
	StudentSessions(ctx context.Context, mssv string) ([]models.ClassSession, error)
	StudentAttendance(ctx context.Context, mssv string) ([]models.AttendanceRecord, error)
}

type Handler struct {
	GW         Gateway
	Notify     *notifyflow.Flow
	SessionMgr *auth.SessionManager
	Log        *zap.Logger

	// Now is the clock used to pick upcoming sessions.
	Now func() time.Time
}

func NewHandler(gw Gateway, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		GW:         gw,
		Notify:     notifyflow.New(gw, logger),
		SessionMgr: sessionMgr,
		Log:        logger,
		Now:        time.Now,
	}
}
