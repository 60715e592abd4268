package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/stratastock/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestProbe_RecordsOutcome(t *testing.T) {
	fail := true
	probe := tasks.NewProbe(func(ctx context.Context) error {
		if fail {
			return errors.New("connection refused")
		}
		return nil
	}, time.Second, zap.NewNop())

	if !probe.Last().CheckedAt.IsZero() {
		t.Fatal("expected zero result before first check")
	}

	if err := probe.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	got := probe.Last()
	if got.OK || got.Error != "connection refused" || got.CheckedAt.IsZero() {
		t.Errorf("after failure Last() = %+v", got)
	}

	fail = false
	_ = probe.Check(context.Background())
	if got := probe.Last(); !got.OK || got.Error != "" {
		t.Errorf("after recovery Last() = %+v", got)
	}
}

func TestProbe_AppliesTimeout(t *testing.T) {
	probe := tasks.NewProbe(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 20*time.Millisecond, zap.NewNop())

	start := time.Now()
	_ = probe.Check(context.Background())
	if time.Since(start) > time.Second {
		t.Error("probe did not honour its timeout")
	}
	if probe.Last().OK {
		t.Error("timed-out probe should not be OK")
	}
}

func TestProbe_Job(t *testing.T) {
	probe := tasks.NewProbe(func(ctx context.Context) error { return nil }, time.Second, zap.NewNop())
	runner := tasks.New(zap.NewNop())
	runner.Register(probe.Job(time.Minute))

	if err := runner.RunOnce(context.Background(), "backend-probe"); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if !probe.Last().OK {
		t.Error("probe job did not record a result")
	}
}
