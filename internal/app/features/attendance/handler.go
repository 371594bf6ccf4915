// internal/app/features/attendance/handler.go
package attendance

import (
	"context"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/system/auditlog"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/domain/models"
	"go.uber.org/zap"
)

// Gateway is the slice of the backend the attendance sheet uses.
type Gateway interface {
	ListSessions(ctx context.Context) ([]models.ClassSession, error)
	SessionAttendance(ctx context.Context, sessionID models.ID, date string) ([]models.AttendanceRecord, error)
	MarkAttendance(ctx context.Context, sessionID models.ID, mssv string, status models.AttendanceStatus, date string) error
	StudentAttendance(ctx context.Context, mssv string) ([]models.AttendanceRecord, error)
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
