// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	accountsfeature "github.com/dalemusser/classhub/internal/app/features/accounts"
	attendancefeature "github.com/dalemusser/classhub/internal/app/features/attendance"
	auditlogfeature "github.com/dalemusser/classhub/internal/app/features/auditlog"
	classsessionsfeature "github.com/dalemusser/classhub/internal/app/features/classsessions"
	dashboardfeature "github.com/dalemusser/classhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/classhub/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/classhub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/classhub/internal/app/features/health"
	heartbeatfeature "github.com/dalemusser/classhub/internal/app/features/heartbeat"
	homefeature "github.com/dalemusser/classhub/internal/app/features/home"
	loginfeature "github.com/dalemusser/classhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/classhub/internal/app/features/logout"
	profilefeature "github.com/dalemusser/classhub/internal/app/features/profile"
	studentgroupfeature "github.com/dalemusser/classhub/internal/app/features/studentgroup"
	studentsfeature "github.com/dalemusser/classhub/internal/app/features/students"
	"github.com/dalemusser/classhub/internal/app/notifyflow"
	"github.com/dalemusser/classhub/internal/app/store/audit"
	"github.com/dalemusser/classhub/internal/app/system/auditlog"
	"github.com/dalemusser/classhub/internal/app/system/auth"
	"github.com/dalemusser/classhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// Backend is every backend call the pages make. *gateway.Client
// satisfies it.
type Backend interface {
	accountsfeature.Gateway
	attendancefeature.Gateway
	classsessionsfeature.Gateway
	dashboardfeature.Gateway
	groupsfeature.Gateway
	loginfeature.Gateway
	profilefeature.Gateway
	studentsfeature.Gateway
	notifyflow.Gateway
}

// routerDeps is what the router needs once config and connections are done.
type routerDeps struct {
	Backend    Backend
	SessionMgr *auth.SessionManager
	AuditStore auditlogfeature.Store
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter
	DB         healthfeature.Pinger
	CSRFKey    []byte
	Secure     bool
}

// BuildHandler constructs the root HTTP handler (router) for ClassHub.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It creates the session manager, boots the
// template engine, builds the audit logger and login limiter, and mounts
// every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	auditStore := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	key := sha256.Sum256([]byte(appCfg.SessionKey + ":csrf"))
	return buildRouter(routerDeps{
		Backend:    deps.Backend,
		SessionMgr: sessionMgr,
		AuditStore: auditStore,
		AuditLog:   auditLogger,
		Limiter: ratelimit.NewLoginLimiter(ratelimit.Config{
			IPLimit:    appCfg.LoginRateIP,
			EmailLimit: appCfg.LoginRateEmail,
		}),
		DB:      deps.MongoClient,
		CSRFKey: key[:],
		Secure:  secure,
	}, logger), nil
}

// buildRouter mounts the feature routers.
func buildRouter(d routerDeps, logger *zap.Logger) http.Handler {
	errLog := errorsfeature.NewErrorLogger(logger)
	sm := d.SessionMgr

	homeHandler := homefeature.NewHandler(logger)

	r := chi.NewRouter()

	// gorilla/csrf assumes TLS; plain HTTP outside prod has no Referer to
	// check.
	if !d.Secure {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if req.TLS == nil {
					req = csrf.PlaintextHTTPRequest(req)
				}
				next.ServeHTTP(w, req)
			})
		})
	}
	r.Use(csrf.Protect(d.CSRFKey,
		csrf.Secure(d.Secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	))

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sm.LoadSessionUser)

	// Unknown paths go to the role home.
	r.NotFound(homeHandler.NotFound)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(d.DB, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(d.Backend, sm, errLog, d.AuditLog, d.Limiter, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sm, d.AuditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sm))

	accountsHandler := accountsfeature.NewHandler(d.Backend, sm, errLog, d.AuditLog, logger)
	r.Mount("/signup", accountsfeature.SignupRoutes(accountsHandler))
	r.Mount("/register", accountsfeature.Routes(accountsHandler, sm))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Admin pages
	studentsHandler := studentsfeature.NewHandler(d.Backend, sm, errLog, d.AuditLog, logger)
	r.Mount("/home", studentsfeature.RosterRoutes(studentsHandler, sm))
	r.Mount("/students", studentsfeature.Routes(studentsHandler, sm))

	sessionsHandler := classsessionsfeature.NewHandler(d.Backend, sm, errLog, d.AuditLog, logger)
	r.Mount("/class-management", classsessionsfeature.Routes(sessionsHandler, sm))

	attendanceHandler := attendancefeature.NewHandler(d.Backend, sm, errLog, d.AuditLog, logger)
	r.Mount("/attendance", attendancefeature.Routes(attendanceHandler, sm))

	groupsHandler := groupsfeature.NewHandler(d.Backend, sm, errLog, d.AuditLog, logger)
	r.Mount("/group-management", groupsfeature.Routes(groupsHandler, sm))

	auditHandler := auditlogfeature.NewHandler(d.AuditStore, sm, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sm))

	// Student pages
	dashboardHandler := dashboardfeature.NewHandler(d.Backend, sm, logger)
	r.Mount("/student/home", dashboardfeature.Routes(dashboardHandler, sm))

	profileHandler := profilefeature.NewHandler(d.Backend, sm, logger)
	r.Mount("/student/profile", profilefeature.Routes(profileHandler, sm))

	r.Mount("/student/schedule", classsessionsfeature.StudentRoutes(sessionsHandler, sm))
	r.Mount("/student/attendance", attendancefeature.StudentRoutes(attendanceHandler, sm))

	studentGroupHandler := studentgroupfeature.NewHandler(d.Backend, sm, logger)
	r.Mount("/student/group", studentgroupfeature.Routes(studentGroupHandler, sm))

	heartbeatHandler := heartbeatfeature.NewHandler(d.Backend, logger)
	r.Mount("/api/heartbeat", heartbeatfeature.Routes(heartbeatHandler, sm))

	return r
}
