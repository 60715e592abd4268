// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig carries everything specific to the inventory front end: where
// the backend lives and how to authenticate to it, the optional MongoDB
// call log, cookie secrets, and display settings.
type AppConfig struct {
	// Inventory/forecast backend
	BackendURL       string        // Base URL of the backend API (required)
	BackendTimeout   time.Duration // Per-call timeout (default: 15s)
	BackendMaxBodyMB int           // Largest backend response accepted, in MiB (default: 64)

	// Optional OAuth2 client-credentials grant for the backend.
	// Leave BackendTokenURL empty to call the backend without a token.
	BackendTokenURL     string
	BackendClientID     string
	BackendClientSecret string
	BackendScopes       []string

	// MongoDB call log. Leave MongoURI empty to disable the call log.
	MongoURI           string        // MongoDB connection string
	MongoDatabase      string        // Database name within MongoDB
	CallLogRetention   time.Duration // How long recorded calls are kept (default: 168h)
	CallLogBodyPreview int           // Characters of request body to keep (0 disables)

	// Cookie secrets
	SessionKey  string // Secret for signing the toast cookie
	SessionName string // Toast cookie name (default: stratastock-flash)
	CSRFKey     string // Secret for CSRF token signing

	// Display
	ClassificationFile string // YAML file of severity rule sets (blank uses built-ins)
	PageSize           int    // Rows per page for paginated lists (default: 10)
	SiteName           string // Name shown in the page header
}

// CallLogEnabled reports whether a MongoDB call log is configured.
func (c AppConfig) CallLogEnabled() bool {
	return c.MongoURI != ""
}
