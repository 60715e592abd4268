// internal/app/system/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// RequestIDHeader carries the per-call id to the backend and into the call log.
const RequestIDHeader = "X-Request-ID"

// DefaultMaxBodySize caps how much of a response body is read when
// Config.MaxBodySize is zero. Date-range forecasts over every item and
// store run to tens of megabytes.
const DefaultMaxBodySize = 64 << 20

// Config configures a Client.
type Config struct {
	BaseURL string        // e.g. https://inventory.example.com
	Timeout time.Duration // per-call timeout (0 means none beyond ctx)

	// Optional OAuth2 client-credentials grant. When TokenURL is set,
	// every call carries a bearer token.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string

	// Transport is the base round tripper (defaults to http.DefaultTransport).
	Transport http.RoundTripper
	UserAgent string

	// MaxBodySize is the largest response body accepted, in bytes.
	MaxBodySize int64
}

// Client calls the inventory and forecast backend.
type Client struct {
	base      *url.URL
	http      *http.Client
	logger    *zap.Logger
	userAgent string
	maxBody   int64
}

// Request is the variable part of a call.
type Request struct {
	Params Params     // path parameters
	Query  url.Values // query string
	Body   any        // JSON-encoded when non-nil
}

// Response is a successful (2xx) backend response.
type Response struct {
	Status    int
	Body      []byte
	RequestID string
}

// New creates a Client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	if cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
		rt = &oauth2.Transport{Source: cc.TokenSource(tokenCtx), Base: rt}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "stratastock"
	}

	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	return &Client{
		base:      base,
		http:      &http.Client{Transport: rt, Timeout: cfg.Timeout},
		logger:    logger,
		userAgent: ua,
		maxBody:   maxBody,
	}, nil
}

// ParseBaseURL validates a backend base URL.
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("backend: base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("backend: invalid base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("backend: base URL must be an absolute http(s) URL, got %q", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Do performs one call. A non-2xx status is returned as *HTTPError and a
// transport or read failure as *NetworkError.
func (c *Client) Do(ctx context.Context, ep Endpoint, req Request) (*Response, error) {
	path, err := ep.Expand(req.Params)
	if err != nil {
		return nil, err
	}

	u := *c.base
	u.Path = c.base.Path + path
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("backend: encode %s body: %w", ep, err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, ep.Method, u.String(), body)
	if err != nil {
		return nil, &NetworkError{Method: ep.Method, Path: path, Err: err}
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("backend call failed",
			zap.String("method", ep.Method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, &NetworkError{Method: ep.Method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &NetworkError{Method: ep.Method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}
	tooLarge := int64(len(raw)) > c.maxBody
	if tooLarge {
		raw = raw[:c.maxBody]
	}

	c.logger.Debug("backend call",
		zap.String("method", ep.Method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Method: ep.Method,
			Path:   path,
			Status: resp.StatusCode,
			Detail: detailFrom(raw),
		}
	}
	if tooLarge {
		c.logger.Warn("backend response too large",
			zap.String("method", ep.Method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Int64("limit", c.maxBody))
		return nil, &ParseError{Method: ep.Method, Path: path, Err: fmt.Errorf("%w (limit %d bytes)", ErrResponseTooLarge, c.maxBody)}
	}

	return &Response{Status: resp.StatusCode, Body: raw, RequestID: requestID}, nil
}

// Fetch performs a call and decodes its body into a list of T. An object
// body yields one element; an empty body yields none.
func Fetch[T any](ctx context.Context, c *Client, ep Endpoint, req Request) ([]T, error) {
	resp, err := c.Do(ctx, ep, req)
	if err != nil {
		return nil, err
	}
	items, err := DecodeList[T](resp.Body)
	if err != nil {
		path, _ := ep.Expand(req.Params)
		return nil, &ParseError{Method: ep.Method, Path: path, Err: err}
	}
	return items, nil
}

// FetchOne is Fetch for endpoints that answer with a single object.
func FetchOne[T any](ctx context.Context, c *Client, ep Endpoint, req Request) (T, error) {
	var zero T
	items, err := Fetch[T](ctx, c, ep, req)
	if err != nil {
		return zero, err
	}
	if len(items) != 1 {
		path, _ := ep.Expand(req.Params)
		return zero, &ParseError{Method: ep.Method, Path: path, Err: fmt.Errorf("expected one object, got %d", len(items))}
	}
	return items[0], nil
}

// DecodeList decodes a JSON array into []T or a JSON object into a
// one-element []T. Anything else is an error.
func DecodeList[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []T{}, nil
	}
	switch trimmed[0] {
	case '[':
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		if out == nil {
			out = []T{}
		}
		return out, nil
	case '{':
		var one T
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, err
		}
		return []T{one}, nil
	}
	return nil, errors.New("expected a JSON object or array")
}
