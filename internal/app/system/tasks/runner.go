// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownJob is returned by RunOnce for an unregistered name.
var ErrUnknownJob = errors.New("tasks: unknown job")

// Job is a scheduled background task. A job with a zero Interval runs
// once at start.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// JobStatus is the run history of one job.
type JobStatus struct {
	Name         string
	Interval     time.Duration
	Running      bool
	Runs         int
	Failures     int
	LastRun      time.Time
	LastDuration time.Duration
	LastError    string
}

// Runner runs registered jobs on their intervals and keeps a status
// record per job.
type Runner struct {
	logger *zap.Logger
	jobs   []Job
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu     sync.Mutex
	status map[string]*JobStatus
}

// New creates a new task runner.
func New(logger *zap.Logger) *Runner {
	return &Runner{
		logger: logger,
		status: make(map[string]*JobStatus),
	}
}

// Register adds a job to the runner. Jobs must be registered before Start.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
	r.mu.Lock()
	r.status[job.Name] = &JobStatus{Name: job.Name, Interval: job.Interval}
	r.mu.Unlock()
}

// Names returns the registered job names in registration order.
func (r *Runner) Names() []string {
	names := make([]string, len(r.jobs))
	for i, j := range r.jobs {
		names[i] = j.Name
	}
	return names
}

// Status returns a snapshot of every job's record in registration order.
func (r *Runner) Status() []JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]JobStatus, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, *r.status[j.Name])
	}
	return out
}

// Start begins executing all registered jobs.
// Call Stop to gracefully shutdown.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.runJob(ctx, job)
	}

	r.logger.Info("background task runner started",
		zap.Strings("jobs", r.Names()))
}

// Stop cancels all jobs and waits for them within ctx's deadline. If ctx
// ends first, it returns ctx.Err().
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("background task runner stopped gracefully")
		return nil
	case <-ctx.Done():
		r.logger.Warn("background task runner shutdown timed out",
			zap.Strings("jobs_still_running", r.running()))
		return ctx.Err()
	}
}

// running lists jobs currently executing, sorted by name.
func (r *Runner) running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for name, st := range r.status {
		if st.Running {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// runJob executes a single job on its interval.
func (r *Runner) runJob(ctx context.Context, job Job) {
	defer r.wg.Done()

	r.executeJob(ctx, job)
	if job.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("job stopped", zap.String("job", job.Name))
			return
		case <-ticker.C:
			r.executeJob(ctx, job)
		}
	}
}

// executeJob runs a job, records the outcome and logs it.
func (r *Runner) executeJob(ctx context.Context, job Job) {
	start := time.Now()
	r.update(job.Name, func(st *JobStatus) { st.Running = true })

	err := job.Run(ctx)
	elapsed := time.Since(start)

	cancelled := err != nil && ctx.Err() != nil
	r.update(job.Name, func(st *JobStatus) {
		st.Running = false
		if cancelled {
			return
		}
		st.Runs++
		st.LastRun = start
		st.LastDuration = elapsed
		st.LastError = ""
		if err != nil {
			st.Failures++
			st.LastError = err.Error()
		}
	})

	switch {
	case cancelled:
		r.logger.Debug("job cancelled during shutdown",
			zap.String("job", job.Name),
			zap.Duration("duration", elapsed))
	case err != nil:
		r.logger.Error("job failed",
			zap.String("job", job.Name),
			zap.Duration("duration", elapsed),
			zap.Error(err))
	default:
		r.logger.Debug("job completed",
			zap.String("job", job.Name),
			zap.Duration("duration", elapsed))
	}
}

func (r *Runner) update(name string, fn func(*JobStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.status[name]
	if !ok {
		st = &JobStatus{Name: name}
		r.status[name] = st
	}
	fn(st)
}

// RunOnce executes a job immediately, outside its schedule. The run is
// recorded like a scheduled one.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.Name == name {
			r.executeJob(ctx, job)
			r.mu.Lock()
			defer r.mu.Unlock()
			if msg := r.status[name].LastError; msg != "" {
				return errors.New(msg)
			}
			return nil
		}
	}
	return ErrUnknownJob
}
