// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"sync"
	"time"

	calllogstore "github.com/dalemusser/stratastock/internal/app/store/calllog"
	"github.com/dalemusser/stratastock/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// CallLogPruneJob removes recorded backend calls older than retention.
func CallLogPruneJob(store *calllogstore.Store, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "calllog-prune",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Batch(), logger, "calllog-prune")
			defer cancel()

			deleted, err := store.DeleteOlderThan(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned backend call log",
					zap.Int64("deleted", deleted),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}

// PingFunc checks a dependency.
type PingFunc func(ctx context.Context) error

// ProbeResult is the outcome of the latest probe.
type ProbeResult struct {
	OK        bool
	Error     string
	CheckedAt time.Time
	Latency   time.Duration
}

// Probe periodically pings the backend and remembers the last outcome
// so pages can show reachability without a call of their own.
type Probe struct {
	ping    PingFunc
	timeout time.Duration
	logger  *zap.Logger

	mu   sync.RWMutex
	last ProbeResult
}

// NewProbe creates a Probe.
func NewProbe(ping PingFunc, timeout time.Duration, logger *zap.Logger) *Probe {
	return &Probe{ping: ping, timeout: timeout, logger: logger}
}

// Last returns the most recent result. CheckedAt is zero before the
// first probe.
func (p *Probe) Last() ProbeResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// Check pings once and records the result. State changes are logged.
func (p *Probe) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := p.ping(ctx)
	res := ProbeResult{OK: err == nil, CheckedAt: time.Now(), Latency: time.Since(start)}
	if err != nil {
		res.Error = err.Error()
	}

	p.mu.Lock()
	prev := p.last
	p.last = res
	p.mu.Unlock()

	switch {
	case !res.OK && (prev.OK || prev.CheckedAt.IsZero()):
		p.logger.Warn("backend unreachable", zap.Error(err))
	case res.OK && !prev.OK && !prev.CheckedAt.IsZero():
		p.logger.Info("backend reachable again", zap.Duration("latency", res.Latency))
	}
	// The outcome lives in Last; a failed ping is not a job failure.
	return nil
}

// Job wraps the probe as a runner job.
func (p *Probe) Job(interval time.Duration) Job {
	return Job{
		Name:     "backend-probe",
		Interval: interval,
		Run:      p.Check,
	}
}
