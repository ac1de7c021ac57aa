package job

import "fmt"

// Status is the lifecycle state of a Job.
//
// A Job moves NotStarted -> Running -> {Success, Failed} and never leaves a
// terminal state.
type Status int

const (
	NotStarted Status = iota
	Running
	Success
	Failed
)

// String returns the upper-case name used in logs and reports.
func (s Status) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case Running:
		return "RUNNING"
	case Success:
		return "SUCCESS"
	case Failed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Terminal reports whether no further transition can happen from s.
func (s Status) Terminal() bool {
	switch s {
	case Success, Failed:
		return true
	case NotStarted, Running:
		return false
	default:
		return false
	}
}

// Runnable is the execution contract shared by Job and RetryingJob.
// The process pool stores Runnables so either can occupy a slot.
type Runnable interface {
	// Name identifies the job in logs and reports.
	Name() string
	// Start spawns the work asynchronously. A spawn failure is also
	// reported as Failed by the next Status call.
	Start() error
	// Status polls without blocking.
	Status() Status
	// Wait blocks until the job has reached a terminal state.
	Wait()
	// Die kills the job's whole process group. Safe to call at any time.
	Die()
	// StatusString is a one-line human summary of the current state.
	StatusString() string
}
