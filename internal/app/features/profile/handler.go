// internal/app/features/profile/handler.go
package profile

import (
	"context"

	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/domain/models"
	"go.uber.org/zap"
)

// Gateway reads the roster record behind the signed-in student.
type Gateway interface {
	GetStudent(ctx context.Context, mssv string) (models.Student, error)
}

// Handler owns the student profile page.
type Handler struct {
	GW         Gateway
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(gw Gateway, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		GW:         gw,
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}
