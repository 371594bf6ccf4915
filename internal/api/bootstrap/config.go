// internal/api/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// appConfigKeys defines the configuration keys for the classroom API.
// Environment variables use the CLASSAPI_ prefix (CLASSAPI_MONGO_URI, ...).
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "classhub_api", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size (default: 50)"},
	{Name: "mongo_min_pool_size", Default: 2, Desc: "MongoDB min connection pool size (default: 2)"},

	{Name: "bcrypt_cost", Default: bcrypt.DefaultCost, Desc: "bcrypt work factor for new passwords"},

	{Name: "seed_admin_email", Default: "", Desc: "Admin account to create at startup if missing"},
	{Name: "seed_admin_password", Default: "", Desc: "Initial password for seed_admin_email"},
}

// LoadConfig loads WAFFLE core config and the API's own keys.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CLASSAPI", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		BcryptCost: appValues.Int("bcrypt_cost"),

		SeedAdminEmail:    appValues.String("seed_admin_email"),
		SeedAdminPassword: appValues.String("seed_admin_password"),
	}
	return coreCfg, appCfg, nil
}

// ValidateConfig rejects a bad Mongo URI, an out-of-range bcrypt cost and
// an incomplete admin seed.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(appCfg)
}

func validateApp(appCfg AppConfig) error {
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if appCfg.BcryptCost < bcrypt.MinCost || appCfg.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost %d out of range (%d to %d)", appCfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if appCfg.SeedAdminEmail == "" {
		return nil
	}
	if !inputval.IsValidEmail(appCfg.SeedAdminEmail) {
		return fmt.Errorf("seed_admin_email %q is not a valid email address", appCfg.SeedAdminEmail)
	}
	if n := len(appCfg.SeedAdminPassword); n < 6 || n > 72 {
		return fmt.Errorf("seed_admin_password must be 6 to 72 characters")
	}
	return nil
}
