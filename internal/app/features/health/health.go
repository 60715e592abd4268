// internal/app/features/health/health.go
package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/stratastock/internal/app/system/jsonutil"
	"github.com/dalemusser/stratastock/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger checks the inventory backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler provides health check endpoints.
type Handler struct {
	backend     Pinger
	mongoClient *mongo.Client // nil when the call log is disabled
	logger      *zap.Logger
}

// NewHandler creates a new health check Handler. mongoClient may be nil.
func NewHandler(backend Pinger, mongoClient *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		backend:     backend,
		mongoClient: mongoClient,
		logger:      logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// Check reports the backend and, when configured, MongoDB. The app can
// still serve pages without MongoDB, so only the backend decides the
// status code.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:   "ok",
		Services: make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Services["backend"] = "unavailable"
		h.logger.Warn("health check: backend ping failed", zap.Error(err))
	} else {
		resp.Services["backend"] = "ok"
	}

	if h.mongoClient == nil {
		resp.Services["mongodb"] = "disabled"
	} else if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		resp.Services["mongodb"] = "unavailable"
		h.logger.Warn("health check: mongodb ping failed", zap.Error(err))
	} else {
		resp.Services["mongodb"] = "ok"
	}

	if resp.Status != "ok" {
		jsonutil.Unavailable(w, resp)
		return
	}
	jsonutil.OK(w, resp)
}

// Ready reports whether the backend answers and, when configured,
// whether MongoDB does.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", zap.String("service", "backend"), zap.Error(err))
		jsonutil.Unavailable(w, map[string]string{"status": "not ready", "service": "backend"})
		return
	}
	if h.mongoClient != nil {
		if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
			h.logger.Warn("readiness check failed", zap.String("service", "mongodb"), zap.Error(err))
			jsonutil.Unavailable(w, map[string]string{"status": "not ready", "service": "mongodb"})
			return
		}
	}
	jsonutil.OK(w, map[string]string{"status": "ready"})
}

// Live checks if the process is serving.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]string{"status": "alive"})
}
