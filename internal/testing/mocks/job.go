// Package mocks provides shared test doubles for simcheck packages.
package mocks

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AndreyAkinshin/simcheck/internal/job"
)

// Tracker records how many mock jobs are running at the same time.
// Share one Tracker between jobs to observe the peak concurrency.
type Tracker struct {
	current atomic.Int32
	peak    atomic.Int32
}

func (t *Tracker) started() {
	n := t.current.Add(1)
	for {
		p := t.peak.Load()
		if n <= p || t.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

func (t *Tracker) finished() {
	t.current.Add(-1)
}

// Current returns the number of mock jobs currently running.
func (t *Tracker) Current() int { return int(t.current.Load()) }

// Peak returns the highest number of concurrently running mock jobs observed.
func (t *Tracker) Peak() int { return int(t.peak.Load()) }

// Job implements job.Runnable for testing.
// Use NewJob() to create instances with a fluent builder API.
type Job struct {
	name     string
	startErr error
	runFor   time.Duration
	outcome  job.Status
	tracker  *Tracker

	mu     sync.Mutex
	status job.Status
	done   chan struct{}

	startCount atomic.Int32
	dieCount   atomic.Int32
}

// NewJob creates a mock job that stays Running until Finish is called.
func NewJob(name string) *Job {
	return &Job{
		name:    name,
		outcome: job.Success,
		done:    make(chan struct{}),
	}
}

// WithStartError makes Start fail; the job then reports Failed.
func (m *Job) WithStartError(err error) *Job {
	m.startErr = err
	return m
}

// WithRunFor makes the job finish on its own with outcome after d.
func (m *Job) WithRunFor(d time.Duration, outcome job.Status) *Job {
	m.runFor = d
	m.outcome = outcome
	return m
}

// WithTracker attaches a shared concurrency tracker.
func (m *Job) WithTracker(t *Tracker) *Job {
	m.tracker = t
	return m
}

// job.Runnable interface implementation

func (m *Job) Name() string { return m.name }

func (m *Job) Start() error {
	m.startCount.Add(1)
	m.mu.Lock()
	if m.status != job.NotStarted {
		m.mu.Unlock()
		return job.ErrAlreadyStarted
	}
	m.status = job.Running
	m.mu.Unlock()

	if m.tracker != nil {
		m.tracker.started()
	}
	if m.startErr != nil {
		m.Finish(job.Failed)
		return m.startErr
	}
	if m.runFor > 0 {
		time.AfterFunc(m.runFor, func() { m.Finish(m.outcome) })
	}
	return nil
}

func (m *Job) Status() job.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Job) Wait() {
	if m.Status() == job.NotStarted {
		return
	}
	<-m.done
}

func (m *Job) Die() {
	m.dieCount.Add(1)
	m.Finish(job.Failed)
}

// Done is closed by Finish.
func (m *Job) Done() <-chan struct{} { return m.done }

func (m *Job) StatusString() string {
	return m.Status().String()
}

// Finish moves a running job to the terminal status s. Calls after the first
// are ignored, as are calls on a job that never started.
func (m *Job) Finish(s job.Status) {
	if !s.Terminal() {
		panic(errors.New("mocks: Finish requires a terminal status"))
	}
	m.mu.Lock()
	if m.status != job.Running {
		m.mu.Unlock()
		return
	}
	m.status = s
	m.mu.Unlock()

	if m.tracker != nil {
		m.tracker.finished()
	}
	close(m.done)
}

// Test inspection methods

// StartCount returns the number of times Start was called.
func (m *Job) StartCount() int { return int(m.startCount.Load()) }

// DieCount returns the number of times Die was called.
func (m *Job) DieCount() int { return int(m.dieCount.Load()) }
