// internal/api/bootstrap/appconfig.go
package bootstrap

// AppConfig holds the classroom backend's settings.
type AppConfig struct {
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// BcryptCost is the work factor for new password hashes.
	BcryptCost int

	// SeedAdminEmail, when set, names an admin account created at startup
	// if it does not exist. SeedAdminPassword is its initial password.
	SeedAdminEmail    string
	SeedAdminPassword string
}
