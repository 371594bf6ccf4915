// internal/app/features/students/handler.go
package students

import (
	"context"

	uierrors "github.com/dalemusser/classhub/internal/app/features/errors"
	"github.com/dalemusser/classhub/internal/app/system/auditlog"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/domain/models"
	"go.uber.org/zap"
)

// Gateway is the roster slice of the backend.
type Gateway interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	GetStudent(ctx context.Context, mssv string) (models.Student, error)
	AddStudent(ctx context.Context, s models.Student) error
	EditStudent(ctx context.Context, s models.Student) error
	DeleteStudent(ctx context.Context, mssv string) error
}

// Handler serves the admin student roster.
type Handler struct {
	GW         Gateway
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Log        *zap.Logger

	// ImportWorkers bounds the concurrent add calls during a CSV import.
	ImportWorkers int
}

func NewHandler(gw Gateway, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		GW:            gw,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		AuditLog:      audit,
		Log:           logger,
		ImportWorkers: 4,
	}
}
