// internal/api/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/classhub/internal/api/handlers"
	healthfeature "github.com/dalemusser/classhub/internal/app/features/health"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler serves the JSON API under /api and the health check under
// /health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	api := handlers.New(deps.MongoDatabase, appCfg.BcryptCost, logger.Named("api"))
	return buildRouter(api, healthfeature.NewHandler(deps.MongoClient, logger)), nil
}

func buildRouter(api *handlers.Handler, health *healthfeature.Handler) http.Handler {
	r := chi.NewRouter()
	r.Mount("/health", healthfeature.Routes(health))
	r.Mount("/api", handlers.Routes(api))
	return r
}
