// internal/app/features/classsessions/handler.go
package classsessions

import (
	"context"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/system/auditlog"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/domain/models"
	"go.uber.org/zap"
)

// Gateway is the slice of the backend class management uses.
type Gateway interface {
	ListSessions(ctx context.Context) ([]models.ClassSession, error)
	CreateSession(ctx context.Context, s models.ClassSession) (models.ClassSession, error)
	StudentsBySession(ctx context.Context, sessionID models.ID) ([]models.Student, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
	EnrollStudents(ctx context.Context, sessionID models.ID, mssvs []string) error
	StudentSessions(ctx context.Context, mssv string) ([]models.ClassSession, error)
}

type Handler struct {
	GW         Gateway
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(gw Gateway, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		GW:         gw,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
	}
}
