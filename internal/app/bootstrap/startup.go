// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/stratastock/internal/app/resources"
	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"github.com/dalemusser/stratastock/internal/app/system/calllog"
	"github.com/dalemusser/stratastock/internal/app/system/classify"
	"github.com/dalemusser/stratastock/internal/app/system/tasks"
	"github.com/dalemusser/stratastock/internal/app/system/timeouts"
	"github.com/dalemusser/stratastock/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// probeInterval is how often the background probe pings the backend.
const probeInterval = 30 * time.Second

// services holds what Startup builds for BuildHandler and Shutdown.
var services struct {
	client *backend.Client
	rules  classify.Set
	probe  *tasks.Probe
	runner *tasks.Runner
}

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// It registers shared templates, loads the severity rules, builds the
// backend client (recording calls when the call log is enabled), and starts
// the background jobs. Returning an error aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	timeouts.Configure(timeouts.Config{Backend: appCfg.BackendTimeout})

	rules, err := classify.Load(appCfg.ClassificationFile)
	if err != nil {
		logger.Error("failed to load classification rules", zap.Error(err))
		return err
	}
	services.rules = rules
	if appCfg.ClassificationFile != "" {
		logger.Info("loaded classification rules", zap.String("file", appCfg.ClassificationFile))
	}

	client, err := newBackendClient(appCfg, deps, logger)
	if err != nil {
		logger.Error("backend client init failed", zap.Error(err))
		return err
	}
	services.client = client
	logger.Info("backend client ready",
		zap.String("base_url", client.BaseURL()),
		zap.Duration("timeout", appCfg.BackendTimeout),
		zap.Bool("oauth2", appCfg.BackendTokenURL != ""),
		zap.Bool("call_log", deps.CallLog != nil),
	)

	services.probe = tasks.NewProbe(client.Ping, timeouts.Ping(), logger)
	viewdata.Init(appCfg.SiteName, services.probe, deps.CallLog != nil)

	startTaskRunner(appCfg, deps, logger)

	return nil
}

// newBackendClient builds the backend client. With a call log store the
// transport records every call.
func newBackendClient(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*backend.Client, error) {
	var rt http.RoundTripper = http.DefaultTransport
	if deps.CallLog != nil {
		cfg := calllog.DefaultConfig(deps.CallLog, logger)
		cfg.MaxBodyPreview = appCfg.CallLogBodyPreview
		rt = calllog.NewTransport(rt, cfg)
	}

	client, err := backend.New(backend.Config{
		BaseURL:      appCfg.BackendURL,
		Timeout:      appCfg.BackendTimeout,
		TokenURL:     appCfg.BackendTokenURL,
		ClientID:     appCfg.BackendClientID,
		ClientSecret: appCfg.BackendClientSecret,
		Scopes:       appCfg.BackendScopes,
		Transport:    rt,
		UserAgent:    "stratastock",
		MaxBodySize:  int64(appCfg.BackendMaxBodyMB) << 20,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}
	return client, nil
}

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	runner := tasks.New(logger)

	runner.Register(services.probe.Job(probeInterval))
	if deps.CallLog != nil && appCfg.CallLogRetention > 0 {
		runner.Register(tasks.CallLogPruneJob(deps.CallLog, appCfg.CallLogRetention, logger))
	}

	runner.Start()
	services.runner = runner
}
