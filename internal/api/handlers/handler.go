// Package handlers serves the classroom backend's JSON API. Every reply is
// an envelope {success, message, ...}; messages are full sentences meant to
// be shown to the user verbatim.
package handlers

import (
	"context"

	accountstore "github.com/dalemusser/classhub/internal/api/store/accounts"
	attendancestore "github.com/dalemusser/classhub/internal/api/store/attendance"
	groupstore "github.com/dalemusser/classhub/internal/api/store/groups"
	notificationstore "github.com/dalemusser/classhub/internal/api/store/notifications"
	sessionstore "github.com/dalemusser/classhub/internal/api/store/sessions"
	studentstore "github.com/dalemusser/classhub/internal/api/store/students"
	"github.com/dalemusser/classhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler holds the stores behind every endpoint.
type Handler struct {
	Students      *studentstore.Store
	Sessions      *sessionstore.Store
	Groups        *groupstore.Store
	Notifications *notificationstore.Store
	Attendance    *attendancestore.Store
	Accounts      *accountstore.Store

	// Client runs multi-collection writes in a transaction.
	Client *mongo.Client

	// BcryptCost is used when hashing new passwords.
	BcryptCost int
	Log        *zap.Logger
}

// New builds a Handler over db. A cost of zero means bcrypt.DefaultCost.
func New(db *mongo.Database, bcryptCost int, logger *zap.Logger) *Handler {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Students:      studentstore.New(db),
		Sessions:      sessionstore.New(db),
		Groups:        groupstore.New(db),
		Notifications: notificationstore.New(db),
		Attendance:    attendancestore.New(db),
		Accounts:      accountstore.New(db),
		Client:        db.Client(),
		BcryptCost:    bcryptCost,
		Log:           logger,
	}
}

// EnsureIndexes creates every collection index the API relies on.
func (h *Handler) EnsureIndexes(ctx context.Context) error {
	for _, ensure := range []func(context.Context) error{
		h.Students.EnsureIndexes,
		h.Sessions.EnsureIndexes,
		h.Groups.EnsureIndexes,
		h.Notifications.EnsureIndexes,
		h.Attendance.EnsureIndexes,
		h.Accounts.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}

// roster returns a session and its enrolled students in roster order.
func (h *Handler) roster(ctx context.Context, id models.ID) (models.ClassSession, []models.Student, error) {
	cs, err := h.Sessions.Get(ctx, id)
	if err != nil {
		return models.ClassSession{}, nil, err
	}
	enrolled, err := h.Students.ByMSSVs(ctx, cs.Enrolled)
	if err != nil {
		return models.ClassSession{}, nil, err
	}
	return cs, enrolled, nil
}
