package testutil

import (
	"net/http"
	"testing"

	"github.com/dalemusser/stratastock/internal/app/system/toast"
	"go.uber.org/zap"
)

// TestSessionKey is a 32+ character key for flash cookies in tests.
const TestSessionKey = "test-session-key-0123456789abcdef0123456789"

// WithToasts wraps h with the flash middleware so toasts queued by the
// handler render on the same response or survive a redirect.
func WithToasts(t *testing.T, h http.Handler) http.Handler {
	t.Helper()
	store, err := toast.NewStore(TestSessionKey, "test-flash", false, zap.NewNop())
	if err != nil {
		t.Fatalf("toast.NewStore: %v", err)
	}
	return store.Middleware(h)
}

// Serve runs req through h and returns the recorded response.
func Serve(h http.Handler, req *http.Request) *ResponseRecorder {
	rec := NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
