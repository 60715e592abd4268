// internal/app/system/calllog/transport.go
package calllog

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	calllogstore "github.com/dalemusser/stratastock/internal/app/store/calllog"
	"github.com/dalemusser/stratastock/internal/app/system/timeouts"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder persists call entries.
type Recorder interface {
	Create(ctx context.Context, entry calllogstore.Entry) error
}

// Config holds configuration for the call log transport.
type Config struct {
	// Recorder persists entries.
	Recorder Recorder

	// Logger for logging errors.
	Logger *zap.Logger

	// MaxBodyPreview is the maximum number of characters to capture from
	// the request body. Set to 0 to disable body preview capture.
	MaxBodyPreview int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(rec Recorder, logger *zap.Logger) Config {
	return Config{
		Recorder:       rec,
		Logger:         logger,
		MaxBodyPreview: 500,
	}
}

// Transport records every backend call it carries.
type Transport struct {
	base http.RoundTripper
	cfg  Config
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, cfg Config) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Transport{base: base, cfg: cfg}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := req.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
		req = req.Clone(req.Context())
		req.Header.Set("X-Request-ID", requestID)
	}

	entry := calllogstore.Entry{
		RequestID:  requestID,
		OriginPath: OriginPath(req.Context()),
		Method:     req.Method,
		Host:       req.URL.Host,
		Path:       req.URL.Path,
		Query:      req.URL.RawQuery,
		StartedAt:  time.Now(),
	}

	if req.Body != nil && req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			t.captureBody(&entry, body)
		}
	}

	resp, err := t.base.RoundTrip(req)

	entry.CompletedAt = time.Now()
	entry.DurationMs = float64(entry.CompletedAt.Sub(entry.StartedAt).Microseconds()) / 1000.0

	if err != nil {
		entry.ErrorKind = "network"
		entry.ErrorMessage = err.Error()
		t.store(entry)
		return resp, err
	}

	entry.StatusCode = resp.StatusCode
	entry.ResponseSize = resp.ContentLength
	switch {
	case resp.StatusCode == http.StatusNotFound:
		entry.ErrorKind = "not_found"
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		entry.ErrorKind = "rejected"
	case resp.StatusCode >= 300:
		entry.ErrorKind = "http"
	}
	t.store(entry)
	return resp, nil
}

func (t *Transport) captureBody(entry *calllogstore.Entry, body io.ReadCloser) {
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil || len(raw) == 0 {
		return
	}
	entry.RequestBodySize = int64(len(raw))

	hash := sha256.Sum256(raw)
	entry.RequestBodyHash = hex.EncodeToString(hash[:])[:8]

	if t.cfg.MaxBodyPreview > 0 {
		preview := string(bytes.ToValidUTF8(raw, nil))
		if len(preview) > t.cfg.MaxBodyPreview {
			preview = preview[:t.cfg.MaxBodyPreview] + "..."
		}
		entry.RequestBodyPreview = preview
	}
}

// store saves the entry asynchronously to not block the call.
func (t *Transport) store(entry calllogstore.Entry) {
	if t.cfg.Recorder == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Store())
		defer cancel()
		if err := t.cfg.Recorder.Create(ctx, entry); err != nil {
			t.cfg.Logger.Error("failed to store call log entry",
				zap.String("request_id", entry.RequestID),
				zap.Error(err))
		}
	}()
}

type ctxKey int

const ctxKeyOrigin ctxKey = iota

// WithOrigin records the app path that is about to call the backend.
func WithOrigin(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, ctxKeyOrigin, path)
}

// OriginPath returns the path stored by WithOrigin.
func OriginPath(ctx context.Context) string {
	p, _ := ctx.Value(ctxKeyOrigin).(string)
	return p
}

// OriginMiddleware stores each incoming request path for the transport.
func OriginMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithOrigin(r.Context(), r.URL.Path)))
	})
}
