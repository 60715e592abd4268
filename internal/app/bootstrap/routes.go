// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"
	"time"

	callsfeature "github.com/dalemusser/stratastock/internal/app/features/calls"
	errorsfeature "github.com/dalemusser/stratastock/internal/app/features/errors"
	forecastfeature "github.com/dalemusser/stratastock/internal/app/features/forecast"
	healthfeature "github.com/dalemusser/stratastock/internal/app/features/health"
	homefeature "github.com/dalemusser/stratastock/internal/app/features/home"
	inventoryfeature "github.com/dalemusser/stratastock/internal/app/features/inventory"
	statusfeature "github.com/dalemusser/stratastock/internal/app/features/status"
	transactionsfeature "github.com/dalemusser/stratastock/internal/app/features/transactions"
	appresources "github.com/dalemusser/stratastock/internal/app/resources"
	"github.com/dalemusser/stratastock/internal/app/system/calllog"
	"github.com/dalemusser/stratastock/internal/app/system/keys"
	"github.com/dalemusser/stratastock/internal/app/system/tasks"
	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed, so the backend client and rule sets built in
// Startup are available here.
//
// Every page is server-rendered. Forms post back with a CSRF token, and
// results of mutations are reported through flash toasts.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if services.client == nil {
		return nil, errors.New("backend client not initialized; Startup must run first")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"

	toastStore, err := toast.NewStore(appCfg.SessionKey, appCfg.SessionName, secure, logger)
	if err != nil {
		logger.Error("toast store init failed", zap.Error(err))
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

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// Request timeout middleware: a page makes at most a few backend calls,
	// each bounded by backend_timeout.
	r.Use(chimw.Timeout(2*appCfg.BackendTimeout + 5*time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Record which page triggered each backend call.
	r.Use(calllog.OriginMiddleware)

	// Flash toasts carried across redirects.
	r.Use(toastStore.Middleware)

	csrfKey, err := keys.Derive(appCfg.CSRFKey, "csrf", 32)
	if err != nil {
		logger.Error("csrf key derivation failed", zap.Error(err))
		return nil, err
	}
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("stratastock_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	r.Use(csrf.Protect(csrfKey, csrfOpts...))

	// ─────────────────────────────────────────────────────────────────────────────
	// Infrastructure
	// ─────────────────────────────────────────────────────────────────────────────

	healthHandler := healthfeature.NewHandler(services.client, deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	// ─────────────────────────────────────────────────────────────────────────────
	// Pages
	// ─────────────────────────────────────────────────────────────────────────────

	homeHandler := homefeature.NewHandler(services.client, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	inventoryHandler := inventoryfeature.NewHandler(services.client, errLog, logger, appCfg.PageSize)
	r.Mount("/inventory", inventoryfeature.Routes(inventoryHandler))

	transactionsHandler := transactionsfeature.NewHandler(services.client, logger)
	r.Mount("/transactions", transactionsfeature.Routes(transactionsHandler))

	forecastHandler := forecastfeature.NewHandler(services.client, services.rules, errLog, logger, appCfg.PageSize)
	r.Mount("/forecast", forecastfeature.Routes(forecastHandler))

	if deps.CallLog != nil {
		callsHandler := callsfeature.NewHandler(deps.CallLog, errLog, logger)
		r.Mount("/calls", callsfeature.Routes(callsHandler))
	}

	var jobs func() []tasks.JobStatus
	if services.runner != nil {
		jobs = services.runner.Status
	}
	statusHandler := statusfeature.NewHandler(services.probe, deps.MongoClient, services.rules, jobs, coreCfg, statusfeature.AppConfig{
		BackendURL:          appCfg.BackendURL,
		BackendTimeout:      appCfg.BackendTimeout,
		BackendMaxBodyMB:    appCfg.BackendMaxBodyMB,
		BackendTokenURL:     appCfg.BackendTokenURL,
		BackendClientID:     appCfg.BackendClientID,
		BackendClientSecret: appCfg.BackendClientSecret,
		BackendScopes:       appCfg.BackendScopes,
		MongoURI:            appCfg.MongoURI,
		MongoDatabase:       appCfg.MongoDatabase,
		CallLogRetention:    appCfg.CallLogRetention,
		CallLogBodyPreview:  appCfg.CallLogBodyPreview,
		SessionKey:          appCfg.SessionKey,
		SessionName:         appCfg.SessionName,
		CSRFKey:             appCfg.CSRFKey,
		ClassificationFile:  appCfg.ClassificationFile,
		PageSize:            appCfg.PageSize,
		SiteName:            appCfg.SiteName,
	}, logger)
	r.Mount("/status", statusfeature.Routes(statusHandler))

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	return r, nil
}
