// internal/api/bootstrap/db.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	accountstore "github.com/dalemusser/classhub/internal/api/store/accounts"
	"github.com/dalemusser/classhub/internal/api/handlers"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// EnsureSchema creates every collection index and, when configured, the
// seed admin account.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	h := handlers.New(deps.MongoDatabase, appCfg.BcryptCost, logger)
	if err := h.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("api indexes: %w", err)
	}
	if appCfg.SeedAdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.SeedAdminEmail, appCfg.SeedAdminPassword, appCfg.BcryptCost, logger); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}
	logger.Info("schema ready", zap.String("database", appCfg.MongoDatabase))
	return nil
}

// ensureAdmin makes sure an admin account exists for email.
//   - No account: one is created with password.
//   - A student account: it is promoted to admin; its password is kept.
//   - Already admin: nothing changes.
func ensureAdmin(ctx context.Context, deps DBDeps, email, password string, cost int, logger *zap.Logger) error {
	store := accountstore.New(deps.MongoDatabase)

	acc, err := store.GetByEmail(ctx, email)
	switch {
	case err == nil && acc.Role == models.RoleAdmin:
		logger.Debug("seed admin already present", zap.String("email", acc.Email))
		return nil
	case err == nil:
		if _, err := store.SetRole(ctx, acc.Email, models.RoleAdmin); err != nil {
			return err
		}
		logger.Info("promoted account to admin", zap.String("email", acc.Email))
		return nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	created, err := store.Create(ctx, models.Account{Email: email, Role: models.RoleAdmin, PasswordHash: hash})
	if errors.Is(err, accountstore.ErrDuplicateEmail) {
		// Another instance seeded it first.
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("created seed admin", zap.String("email", created.Email))
	return nil
}
