// internal/app/features/status/config.go
package status

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
)

// AppConfig mirrors bootstrap.AppConfig for status display.
type AppConfig struct {
	BackendURL          string
	BackendTimeout      time.Duration
	BackendMaxBodyMB    int
	BackendTokenURL     string
	BackendClientID     string
	BackendClientSecret string
	BackendScopes       []string

	MongoURI           string
	MongoDatabase      string
	CallLogRetention   time.Duration
	CallLogBodyPreview int

	SessionKey  string
	SessionName string
	CSRFKey     string

	ClassificationFile string
	PageSize           int
	SiteName           string
}

// ConfigItem represents a single configuration variable for display.
type ConfigItem struct {
	Name  string
	Value string
}

// ConfigGroup represents a logical group of configuration items.
type ConfigGroup struct {
	Name  string
	Items []ConfigItem
}

// mask hides all but the ends of a secret.
func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

// maskURI hides the password in a connection string.
func maskURI(s string) string {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return mask(s)
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return s
	}
	user, _, _ := strings.Cut(creds, ":")
	return scheme + "://" + user + ":****@" + host
}

func boolStr(b bool) string {
	return strconv.FormatBool(b)
}

// buildConfigGroups creates organized groups of config items for display.
func buildConfigGroups(core *config.CoreConfig, app AppConfig) []ConfigGroup {
	groups := []ConfigGroup{}

	if core != nil {
		groups = append(groups,
			ConfigGroup{
				Name: "Environment",
				Items: []ConfigItem{
					{Name: "env", Value: core.Env},
					{Name: "log_level", Value: core.LogLevel},
				},
			},
			ConfigGroup{
				Name: "HTTP Server",
				Items: []ConfigItem{
					{Name: "http_port", Value: fmt.Sprintf("%d", core.HTTP.HTTPPort)},
					{Name: "https_port", Value: fmt.Sprintf("%d", core.HTTP.HTTPSPort)},
					{Name: "use_https", Value: boolStr(core.HTTP.UseHTTPS)},
					{Name: "read_timeout", Value: core.HTTP.ReadTimeout.String()},
					{Name: "write_timeout", Value: core.HTTP.WriteTimeout.String()},
					{Name: "shutdown_timeout", Value: core.HTTP.ShutdownTimeout.String()},
					{Name: "max_request_body_bytes", Value: fmt.Sprintf("%d", core.MaxRequestBodyBytes)},
				},
			},
			ConfigGroup{
				Name: "CORS",
				Items: []ConfigItem{
					{Name: "enable_cors", Value: boolStr(core.CORS.EnableCORS)},
					{Name: "cors_allowed_origins", Value: strings.Join(core.CORS.CORSAllowedOrigins, ", ")},
				},
			},
		)
	}

	groups = append(groups, ConfigGroup{
		Name: "Backend",
		Items: []ConfigItem{
			{Name: "backend_url", Value: app.BackendURL},
			{Name: "backend_timeout", Value: app.BackendTimeout.String()},
			{Name: "backend_max_body_mb", Value: strconv.Itoa(app.BackendMaxBodyMB)},
			{Name: "backend_token_url", Value: app.BackendTokenURL},
			{Name: "backend_client_id", Value: app.BackendClientID},
			{Name: "backend_client_secret", Value: mask(app.BackendClientSecret)},
			{Name: "backend_scopes", Value: strings.Join(app.BackendScopes, ", ")},
		},
	})

	groups = append(groups, ConfigGroup{
		Name: "Call Log",
		Items: []ConfigItem{
			{Name: "mongo_uri", Value: maskURI(app.MongoURI)},
			{Name: "mongo_database", Value: app.MongoDatabase},
			{Name: "calllog_retention", Value: app.CallLogRetention.String()},
			{Name: "calllog_body_preview", Value: strconv.Itoa(app.CallLogBodyPreview)},
		},
	})

	groups = append(groups, ConfigGroup{
		Name: "Cookies",
		Items: []ConfigItem{
			{Name: "session_key", Value: mask(app.SessionKey)},
			{Name: "session_name", Value: app.SessionName},
			{Name: "csrf_key", Value: mask(app.CSRFKey)},
		},
	})

	groups = append(groups, ConfigGroup{
		Name: "Display",
		Items: []ConfigItem{
			{Name: "classification_file", Value: app.ClassificationFile},
			{Name: "page_size", Value: strconv.Itoa(app.PageSize)},
			{Name: "site_name", Value: app.SiteName},
		},
	})

	return groups
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return formatPlural(days, "day") + " " + formatPlural(hours, "hour")
	}
	if hours > 0 {
		return formatPlural(hours, "hour") + " " + formatPlural(minutes, "min")
	}
	return formatPlural(minutes, "min")
}

// formatExpiresIn formats time until expiration with days, hours, and minutes.
func formatExpiresIn(d time.Duration) string {
	if d < 0 {
		return "expired"
	}
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	return formatPlural(days, "day") + ", " + formatPlural(hours, "hour") + ", " + formatPlural(minutes, "minute")
}

func formatPlural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}

// formatBytes formats bytes in a human-readable way.
func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatUint(b, 10) + " B"
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
