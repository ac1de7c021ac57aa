package job

import (
	"fmt"
	"sync"
	"time"

	"github.com/AndreyAkinshin/simcheck/internal/output"
)

// Factory builds the Job for a given attempt, starting at 1.
type Factory func(attempt int) *Job

// RetryingJob decorates a Job with a bounded number of retries.
//
// The base Job never retries itself. When an attempt fails and retries are
// left, the next Status poll starts a fresh Job from the factory and the
// decorator keeps reporting Running. Failed attempts are kept as diagnostics.
type RetryingJob struct {
	name       string
	factory    Factory
	maxRetries int

	mu        sync.Mutex
	status    Status
	attempt   int
	current   *Job
	failures  []string
	killed    bool
	startTime time.Time
	stopTime  time.Time
}

// NewRetrying creates a RetryingJob that makes at most maxRetries+1 attempts.
func NewRetrying(name string, maxRetries int, factory Factory) *RetryingJob {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingJob{
		name:       name,
		factory:    factory,
		maxRetries: maxRetries,
	}
}

func (r *RetryingJob) Name() string { return r.name }

// Start launches the first attempt.
func (r *RetryingJob) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != NotStarted {
		return ErrAlreadyStarted
	}
	r.status = Running
	r.startTime = time.Now()
	return r.launchLocked()
}

func (r *RetryingJob) launchLocked() error {
	r.attempt++
	r.current = r.factory(r.attempt)
	return r.current.Start()
}

// Status polls the current attempt and starts the next one if it failed.
func (r *RetryingJob) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pollLocked()
}

func (r *RetryingJob) pollLocked() Status {
	if r.status != Running {
		return r.status
	}

	switch r.current.Status() {
	case Success:
		r.status = Success
		r.stopTime = r.current.StopTime()
	case Failed:
		r.failures = append(r.failures, fmt.Sprintf("attempt %d: %s", r.attempt, r.current.Diagnose()))
		if r.killed || r.attempt > r.maxRetries {
			r.status = Failed
			r.stopTime = r.current.StopTime()
			break
		}
		// A spawn error on the new attempt surfaces as Failed on the next poll.
		_ = r.launchLocked()
	case NotStarted, Running:
	}
	return r.status
}

// Wait blocks until the final attempt has reached a terminal state.
func (r *RetryingJob) Wait() {
	for {
		r.mu.Lock()
		if r.status == NotStarted {
			r.mu.Unlock()
			return
		}
		cur := r.current
		r.mu.Unlock()

		cur.Wait()
		if r.Status().Terminal() {
			return
		}
	}
}

// Die kills the current attempt and prevents further retries.
func (r *RetryingJob) Die() {
	r.mu.Lock()
	r.killed = true
	cur := r.current
	r.mu.Unlock()
	if cur != nil {
		cur.Die()
	}
}

// Done is closed when the current attempt ends. The next Status poll either
// reports a terminal status or starts a new attempt with a fresh channel.
// It returns nil before Start.
func (r *RetryingJob) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	return r.current.Done()
}

// Attempts returns the number of attempts started so far.
func (r *RetryingJob) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempt
}

// Failures returns one diagnostic line per failed attempt.
func (r *RetryingJob) Failures() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.failures...)
}

// Duration returns the time from the first start to the final stop, or the
// elapsed time while attempts are still running.
func (r *RetryingJob) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.startTime.IsZero():
		return 0
	case r.stopTime.IsZero():
		return time.Since(r.startTime)
	default:
		return r.stopTime.Sub(r.startTime)
	}
}

// StatusString summarizes the state, including the attempt counter.
func (r *RetryingJob) StatusString() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch s := r.pollLocked(); s {
	case NotStarted:
		return "Not started yet"
	case Running:
		return fmt.Sprintf("Running for %s (attempt %d of %d)",
			output.FormatDuration(time.Since(r.startTime)), r.attempt, r.maxRetries+1)
	case Success:
		return fmt.Sprintf("Finished in %s after %d attempt(s)",
			output.FormatDuration(r.stopTime.Sub(r.startTime)), r.attempt)
	case Failed:
		return fmt.Sprintf("Failed after %d attempt(s): %s", r.attempt, r.current.Diagnose())
	default:
		return s.String()
	}
}
