package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/stratastock/internal/app/system/tasks"
	"go.uber.org/zap"
)

func stop(t *testing.T, r *tasks.Runner, timeout time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return r.Stop(ctx)
}

func TestRunner_StartAndStop(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runCount atomic.Int32
	runner.Register(tasks.Job{
		Name:     "backend-probe",
		Interval: 100 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runCount.Add(1)
			return nil
		},
	})

	runner.Start()
	time.Sleep(50 * time.Millisecond)

	if err := stop(t, runner, 5*time.Second); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}
	// Jobs run immediately on start.
	if runCount.Load() < 1 {
		t.Errorf("expected job to run at least once, ran %d times", runCount.Load())
	}
}

func TestRunner_StopWithTimeout(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	inSleep := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "calllog-prune",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(inSleep)
			// Ignores ctx, so Stop must give up at its deadline.
			time.Sleep(5 * time.Second)
			return nil
		},
	})

	runner.Start()
	<-inSleep
	time.Sleep(10 * time.Millisecond)

	if err := stop(t, runner, 100*time.Millisecond); err != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded error, got: %v", err)
	}
	if st := runner.Status(); !st[0].Running {
		t.Error("expected the stuck job to be reported as running")
	}
}

func TestRunner_MultipleJobs(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var probeCount, pruneCount atomic.Int32
	runner.Register(tasks.Job{
		Name:     "backend-probe",
		Interval: 50 * time.Millisecond,
		Run: func(ctx context.Context) error {
			probeCount.Add(1)
			return nil
		},
	})
	runner.Register(tasks.Job{
		Name:     "calllog-prune",
		Interval: 50 * time.Millisecond,
		Run: func(ctx context.Context) error {
			pruneCount.Add(1)
			return nil
		},
	})

	runner.Start()
	time.Sleep(150 * time.Millisecond)

	if err := stop(t, runner, 5*time.Second); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}
	if probeCount.Load() < 1 || pruneCount.Load() < 1 {
		t.Errorf("jobs ran %d and %d times, want at least 1 each", probeCount.Load(), pruneCount.Load())
	}
}

func TestRunner_StatusRecordsRuns(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	fail := errors.New("mongo unavailable")
	var calls atomic.Int32
	runner.Register(tasks.Job{
		Name:     "calllog-prune",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			if calls.Add(1) == 1 {
				return fail
			}
			return nil
		},
	})

	st := runner.Status()
	if len(st) != 1 || st[0].Name != "calllog-prune" || st[0].Runs != 0 || st[0].Interval != time.Hour {
		t.Fatalf("initial status = %+v", st)
	}

	if err := runner.RunOnce(context.Background(), "calllog-prune"); err == nil || err.Error() != fail.Error() {
		t.Errorf("RunOnce() error = %v, want %v", err, fail)
	}
	st = runner.Status()
	if st[0].Runs != 1 || st[0].Failures != 1 || st[0].LastError != fail.Error() || st[0].LastRun.IsZero() {
		t.Errorf("after failure status = %+v", st[0])
	}

	if err := runner.RunOnce(context.Background(), "calllog-prune"); err != nil {
		t.Errorf("RunOnce() error = %v", err)
	}
	st = runner.Status()
	if st[0].Runs != 2 || st[0].Failures != 1 || st[0].LastError != "" || st[0].Running {
		t.Errorf("after success status = %+v", st[0])
	}
}

func TestRunner_RunOnce_NotFound(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	err := runner.RunOnce(context.Background(), "nonexistent-job")
	if !errors.Is(err, tasks.ErrUnknownJob) {
		t.Errorf("RunOnce() error = %v, want ErrUnknownJob", err)
	}
}

func TestRunner_ZeroIntervalRunsOnce(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	var runCount atomic.Int32
	runner.Register(tasks.Job{
		Name: "startup-only",
		Run: func(ctx context.Context) error {
			runCount.Add(1)
			return nil
		},
	})
	if got := runner.Names(); len(got) != 1 || got[0] != "startup-only" {
		t.Errorf("Names() = %v", got)
	}

	runner.Start()
	time.Sleep(50 * time.Millisecond)

	if err := stop(t, runner, time.Second); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}
	if runCount.Load() != 1 {
		t.Errorf("ran %d times, want 1", runCount.Load())
	}
}

func TestRunner_CancelledRunNotCounted(t *testing.T) {
	runner := tasks.New(zap.NewNop())

	contextCancelled := make(chan struct{})
	runner.Register(tasks.Job{
		Name:     "context-aware-job",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			close(contextCancelled)
			return ctx.Err()
		},
	})

	runner.Start()
	time.Sleep(50 * time.Millisecond)

	if err := stop(t, runner, 5*time.Second); err != nil {
		t.Errorf("Stop() returned error: %v", err)
	}

	select {
	case <-contextCancelled:
	case <-time.After(time.Second):
		t.Fatal("job context was not cancelled")
	}

	st := runner.Status()[0]
	if st.Runs != 0 || st.Failures != 0 || st.Running {
		t.Errorf("cancelled run recorded: %+v", st)
	}
}
