// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stratastock/internal/app/system/inputval"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATASTOCK"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: backend_url, mongo_uri, etc.
//   - Environment variables: STRATASTOCK_BACKEND_URL, STRATASTOCK_MONGO_URI, etc.
//   - Command-line flags: --backend_url, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	// Backend
	{Name: "backend_url", Default: "http://localhost:8000", Desc: "Base URL of the inventory/forecast backend"},
	{Name: "backend_timeout", Default: "15s", Desc: "Timeout for a single backend call (e.g., 15s, 1m)"},
	{Name: "backend_max_body_mb", Default: 64, Desc: "Largest backend response accepted, in MiB"},
	{Name: "backend_token_url", Default: "", Desc: "OAuth2 token URL for the backend (leave empty to disable)"},
	{Name: "backend_client_id", Default: "", Desc: "OAuth2 client ID for the backend"},
	{Name: "backend_client_secret", Default: "", Desc: "OAuth2 client secret for the backend"},
	{Name: "backend_scopes", Default: "", Desc: "Comma-separated OAuth2 scopes for the backend"},

	// Call log
	{Name: "mongo_uri", Default: "", Desc: "MongoDB connection URI for the call log (leave empty to disable)"},
	{Name: "mongo_database", Default: "stratastock", Desc: "MongoDB database name"},
	{Name: "calllog_retention", Default: "168h", Desc: "How long recorded backend calls are kept"},
	{Name: "calllog_body_preview", Default: 500, Desc: "Characters of request body kept per call (0 disables)"},

	// Cookies
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Flash cookie signing key (must be strong in production)"},
	{Name: "session_name", Default: "stratastock-flash", Desc: "Flash cookie name"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	// Display
	{Name: "classification_file", Default: "", Desc: "YAML file with severity rule sets (blank uses built-in rules)"},
	{Name: "page_size", Default: 10, Desc: "Rows per page for paginated lists"},
	{Name: "site_name", Default: "StrataStock", Desc: "Name shown in the page header"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STRATASTOCK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		BackendURL:          strings.TrimSpace(appValues.String("backend_url")),
		BackendTimeout:      appValues.Duration("backend_timeout", 15*time.Second),
		BackendMaxBodyMB:    appValues.Int("backend_max_body_mb"),
		BackendTokenURL:     strings.TrimSpace(appValues.String("backend_token_url")),
		BackendClientID:     appValues.String("backend_client_id"),
		BackendClientSecret: appValues.String("backend_client_secret"),
		BackendScopes:       splitList(appValues.String("backend_scopes")),

		MongoURI:           strings.TrimSpace(appValues.String("mongo_uri")),
		MongoDatabase:      appValues.String("mongo_database"),
		CallLogRetention:   appValues.Duration("calllog_retention", 7*24*time.Hour),
		CallLogBodyPreview: appValues.Int("calllog_body_preview"),

		SessionKey:  appValues.String("session_key"),
		SessionName: appValues.String("session_name"),
		CSRFKey:     appValues.String("csrf_key"),

		ClassificationFile: strings.TrimSpace(appValues.String("classification_file")),
		PageSize:           appValues.Int("page_size"),
		SiteName:           appValues.String("site_name"),
	}
	if appCfg.PageSize <= 0 {
		appCfg.PageSize = 10
	}
	if appCfg.BackendMaxBodyMB <= 0 {
		appCfg.BackendMaxBodyMB = 64
	}

	return coreCfg, appCfg, nil
}

// backendSettings is the validated view of the backend keys.
type backendSettings struct {
	URL      string `validate:"required,httpurl" label:"backend_url"`
	TokenURL string `validate:"httpurl" label:"backend_token_url"`
}

// secretSettings is checked only in production.
type secretSettings struct {
	SessionKey string `validate:"required,secret" label:"session_key"`
	CSRFKey    string `validate:"required,secret" label:"csrf_key"`
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if res := inputval.Validate(backendSettings{URL: appCfg.BackendURL, TokenURL: appCfg.BackendTokenURL}); res.HasErrors() {
		logger.Error("invalid backend configuration", zap.String("errors", res.All()))
		return fmt.Errorf("invalid backend configuration: %s", res.All())
	}
	if appCfg.BackendTokenURL != "" && appCfg.BackendClientID == "" {
		return errors.New("backend_client_id is required when backend_token_url is set")
	}

	if coreCfg.Env == "prod" {
		if res := inputval.Validate(secretSettings{SessionKey: appCfg.SessionKey, CSRFKey: appCfg.CSRFKey}); res.HasErrors() {
			logger.Error("weak secrets in production", zap.String("errors", res.All()))
			return fmt.Errorf("invalid secrets: %s", res.All())
		}
	}

	if appCfg.CallLogEnabled() {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	}

	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
