package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/stratastock/internal/app/system/backend"
	"go.uber.org/zap"
)

// Call is one request received by a FakeBackend.
type Call struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// Reply is a canned FakeBackend response.
type Reply struct {
	Status int
	Body   any // encoded as JSON unless it is a string or []byte
}

// FakeBackend is an httptest server standing in for the inventory API.
// Routes are keyed by "METHOD /path"; unknown routes answer 404 with a
// FastAPI-style detail body.
type FakeBackend struct {
	Server *httptest.Server

	mu     sync.Mutex
	routes map[string]Reply
	calls  []Call
}

// NewFakeBackend starts a fake backend that is closed on test cleanup.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{routes: map[string]Reply{}}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Server.Close)
	return fb
}

// On registers a reply for method and path.
func (fb *FakeBackend) On(method, path string, status int, body any) *FakeBackend {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[method+" "+path] = Reply{Status: status, Body: body}
	return fb
}

// Calls returns the requests received so far.
func (fb *FakeBackend) Calls() []Call {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]Call(nil), fb.calls...)
}

// LastCall returns the most recent request, or a zero Call.
func (fb *FakeBackend) LastCall() Call {
	calls := fb.Calls()
	if len(calls) == 0 {
		return Call{}
	}
	return calls[len(calls)-1]
}

// Client returns a backend client pointed at the fake server.
func (fb *FakeBackend) Client(t *testing.T) *backend.Client {
	t.Helper()
	c, err := backend.New(backend.Config{BaseURL: fb.Server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	return c
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	fb.mu.Lock()
	fb.calls = append(fb.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
	reply, ok := fb.routes[r.Method+" "+r.URL.Path]
	fb.mu.Unlock()

	if !ok {
		reply = Reply{Status: http.StatusNotFound, Body: map[string]string{"detail": "Not Found"}}
	}

	switch b := reply.Body.(type) {
	case nil:
		w.WriteHeader(reply.Status)
	case string:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(reply.Status)
		_, _ = io.WriteString(w, b)
	case []byte:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(reply.Status)
		_, _ = w.Write(b)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(reply.Status)
		_ = json.NewEncoder(w).Encode(b)
	}
}
