package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Backend: 45 * time.Second})
	got := Current()
	if got.Backend != 45*time.Second {
		t.Errorf("Backend = %v, want 45s", got.Backend)
	}
	if got.Ping != DefaultPing || got.Store != DefaultStore || got.Batch != DefaultBatch {
		t.Errorf("zero fields should keep defaults, got %+v", got)
	}

	Reset()
	if Backend() != DefaultBackend {
		t.Errorf("Backend after Reset = %v, want %v", Backend(), DefaultBackend)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	<-ctx.Done()
	cancel()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
