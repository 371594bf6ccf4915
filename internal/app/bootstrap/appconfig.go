// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for the ClassHub front-end.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - Request body size limits
//
// AppConfig carries what is specific to ClassHub: where the classroom
// backend lives, how long to wait for it, the audit trail database and the
// session cookie.
type AppConfig struct {
	// Classroom backend
	APIBaseURL     string        // Backend root URL (e.g., http://localhost:8081/api)
	APITimeout     time.Duration // Per-call limit for data calls
	APIAuthTimeout time.Duration // Per-call limit for login and registration

	// MongoDB connection configuration (audit trail)
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: classhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Audit logging: "all", "db", "log" or "off" per category
	AuditLogAuth  string
	AuditLogAdmin string

	// Login rate limits
	LoginRateIP    int // attempts per IP per minute
	LoginRateEmail int // attempts per email per five minutes
}
