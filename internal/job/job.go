// Package job runs one external process with a monotonic status state machine.
package job

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AndreyAkinshin/simcheck/internal/output"
)

// ErrAlreadyStarted is returned when Start is called twice on the same Job.
var ErrAlreadyStarted = errors.New("job already started")

// Options configures how a Job is executed.
type Options struct {
	Dir              string   // Working directory (empty = current directory)
	LogPath          string   // Combined stdout/stderr log (empty = discard)
	ExpectedExitCode int      // Exit code that counts as success
	Env              []string // KEY=VALUE pairs appended to the inherited environment
	AppendLog        bool     // Append to LogPath instead of truncating it
}

// Job is one external process invocation.
//
// All methods are safe for concurrent use. Status is non-blocking; the
// process is reaped by a background goroutine started in Start.
type Job struct {
	name string
	args []string
	opts Options

	mu       sync.Mutex
	status   Status
	cmd      *exec.Cmd
	spawnErr error
	done     chan struct{}

	exitCode  int
	state     *os.ProcessState
	exitedAt  time.Time
	startTime time.Time
	stopTime  time.Time
}

// New creates a Job that executes args[0] with args[1:] as arguments.
func New(name string, args []string, opts Options) *Job {
	return &Job{
		name:     name,
		args:     append([]string(nil), args...),
		opts:     opts,
		done:     make(chan struct{}),
		exitCode: -1,
	}
}

// NewShell creates a Job that runs cmdline through the platform shell.
func NewShell(name, cmdline string, opts Options) *Job {
	return New(name, shellArgs(cmdline), opts)
}

func (j *Job) Name() string    { return j.name }
func (j *Job) LogPath() string { return j.opts.LogPath }

// Done is closed once the process has exited or failed to spawn. It is never
// closed for a Job that is not started.
func (j *Job) Done() <-chan struct{} { return j.done }

// Start spawns the process without waiting for it.
//
// The command line and working directory are written to the log before any
// process output. If the process cannot be spawned the error is returned and
// the Job reports Failed on the next Status call.
func (j *Job) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status != NotStarted {
		return ErrAlreadyStarted
	}
	j.status = Running
	j.startTime = time.Now()

	if err := j.spawnLocked(); err != nil {
		j.spawnErr = err
		j.exitedAt = time.Now()
		close(j.done)
		return fmt.Errorf("start %s: %w", j.name, err)
	}
	return nil
}

func (j *Job) spawnLocked() error {
	if len(j.args) == 0 {
		return errors.New("empty command")
	}

	logFile, err := j.openLog()
	if err != nil {
		return err
	}

	cmd := exec.Command(j.args[0], j.args[1:]...)
	cmd.Dir = j.opts.Dir
	if len(j.opts.Env) > 0 {
		cmd.Env = append(os.Environ(), j.opts.Env...)
	}
	if logFile != nil {
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	}
	configureProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		if logFile != nil {
			fmt.Fprintf(logFile, "Failed to start: %v\n", err)
			_ = logFile.Close()
		}
		return err
	}

	j.cmd = cmd
	go j.reap(cmd, logFile)
	return nil
}

// openLog creates the log file and writes the preamble. It returns a nil
// file when no log path is configured.
func (j *Job) openLog() (*os.File, error) {
	if j.opts.LogPath == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(j.opts.LogPath), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if j.opts.AppendLog {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(j.opts.LogPath, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	dir := j.opts.Dir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	fmt.Fprintf(f, "Command: %s\n", strings.Join(j.args, " "))
	fmt.Fprintf(f, "Directory: %s\n", dir)
	fmt.Fprintf(f, "Started: %s\n\n", j.startTime.Format(time.RFC3339))
	return f, nil
}

// reap waits for the process and records its outcome.
func (j *Job) reap(cmd *exec.Cmd, logFile *os.File) {
	_ = cmd.Wait()

	j.mu.Lock()
	j.state = cmd.ProcessState
	if j.state != nil {
		j.exitCode = j.state.ExitCode()
	}
	j.exitedAt = time.Now()
	if logFile != nil {
		fmt.Fprintf(logFile, "\n%s\n", j.describeExitLocked())
		_ = logFile.Close()
	}
	j.mu.Unlock()

	close(j.done)
}

// Status polls the job without blocking. The stop time is latched the first
// time a terminal state is observed and never changes afterwards.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pollLocked()
}

func (j *Job) pollLocked() Status {
	if j.status != Running {
		return j.status
	}
	select {
	case <-j.done:
	default:
		return Running
	}

	if j.spawnErr == nil && j.exitCode == j.opts.ExpectedExitCode {
		j.status = Success
	} else {
		j.status = Failed
	}
	j.stopTime = j.exitedAt
	return j.status
}

// Wait blocks until the process has exited. It returns immediately for a
// Job that was never started.
func (j *Job) Wait() {
	j.mu.Lock()
	started := j.status != NotStarted
	j.mu.Unlock()
	if !started {
		return
	}
	<-j.done
	j.Status()
}

// Die kills the job's entire process group so that children spawned by the
// job die with it. Errors are swallowed: the process may already be gone.
func (j *Job) Die() {
	j.mu.Lock()
	cmd := j.cmd
	j.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}
	select {
	case <-j.done:
		return
	default:
	}
	killProcessGroup(cmd.Process)
}

// ExitCode returns the observed exit code, or -1 if the process has not
// exited, was killed by a signal or never started.
func (j *Job) ExitCode() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.exitCode
}

// StartTime returns when Start was called.
func (j *Job) StartTime() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.startTime
}

// StopTime returns the latched stop time, or the zero time while the job is
// not terminal.
func (j *Job) StopTime() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stopTime
}

// Duration returns the elapsed time so far, or the total time once terminal.
func (j *Job) Duration() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch j.pollLocked() {
	case NotStarted:
		return 0
	case Running:
		return time.Since(j.startTime)
	default:
		return j.stopTime.Sub(j.startTime)
	}
}

// Diagnose describes how the process ended: an exit code, a signal name or
// a spawn error. It returns an empty string while the job is not terminal.
func (j *Job) Diagnose() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.pollLocked().Terminal() {
		return ""
	}
	return j.describeExitLocked()
}

func (j *Job) describeExitLocked() string {
	if j.spawnErr != nil {
		return fmt.Sprintf("failed to start: %v", j.spawnErr)
	}
	if sig := signalName(j.state); sig != "" {
		return fmt.Sprintf("killed by signal %s", sig)
	}
	return fmt.Sprintf("exit code %d (expected %d)", j.exitCode, j.opts.ExpectedExitCode)
}

// StatusString returns a one-line summary keyed to the current state.
func (j *Job) StatusString() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch s := j.pollLocked(); s {
	case NotStarted:
		return "Not started yet"
	case Running:
		return fmt.Sprintf("Running for %s", output.FormatDuration(time.Since(j.startTime)))
	case Success:
		return fmt.Sprintf("Finished in %s", output.FormatDuration(j.stopTime.Sub(j.startTime)))
	case Failed:
		return fmt.Sprintf("Failed after %s: %s", output.FormatDuration(j.stopTime.Sub(j.startTime)), j.describeExitLocked())
	default:
		return s.String()
	}
}
