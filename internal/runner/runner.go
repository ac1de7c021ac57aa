// Package runner drives one orchestration: discovery, the build and run
// phases on a shared process pool, aggregation, reporting, the optional
// post-steps and the result exports.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/AndreyAkinshin/simcheck/internal/catalogue"
	"github.com/AndreyAkinshin/simcheck/internal/config"
	"github.com/AndreyAkinshin/simcheck/internal/ctxlog"
	simerrors "github.com/AndreyAkinshin/simcheck/internal/errors"
	"github.com/AndreyAkinshin/simcheck/internal/job"
	"github.com/AndreyAkinshin/simcheck/internal/metrics"
	"github.com/AndreyAkinshin/simcheck/internal/output"
	"github.com/AndreyAkinshin/simcheck/internal/pool"
	"github.com/AndreyAkinshin/simcheck/internal/record"
)

const (
	// MinWorkers is the smallest pool size; a zero-slot pool would never admit a job.
	MinWorkers = 1

	// MaxWorkers caps the pool size.
	MaxWorkers = 256

	// WorkersEnv overrides the default pool size when -j is not given.
	WorkersEnv = "SIMCHECK_WORKERS"

	// killGrace bounds how long an interrupted run waits for killed jobs.
	killGrace = 10 * time.Second
)

// Phase names, in execution order.
const (
	PhaseDiscovery = "discovery"
	PhaseBuild     = "build"
	PhaseRun       = "run"
	PhaseAggregate = "aggregate"
	PhaseAnalyze   = "analyze"
	PhaseCoverage  = "coverage"
	PhaseExport    = "export"
)

// Options configures one orchestration.
type Options struct {
	Policy   catalogue.BuildPolicy
	RunNone  bool // skip the run phase entirely
	Analyze  bool // run the analyze command for every mismatched comparison
	Coverage bool // run the coverage command once at the end

	// Retries overrides build.retries from the catalogue when >= 0.
	Retries int

	Workers      int
	PollInterval time.Duration

	LogDir string // absolute log directory
	Model  string // restrict to one model
	RunID  string

	ResultsFile string // JSON report destination (optional)
	MetricsFile string // Prometheus textfile destination (optional)
}

// Runner orchestrates one catalogue.
type Runner struct {
	cfg  *config.Config
	root string
	env  []string
	out  *output.Writer
	opts Options

	pool    *pool.Pool
	metrics *metrics.Recorder
	phase   string
}

// New creates a Runner for cfg rooted at root. env holds the KEY=VALUE pairs
// added to every child process environment.
func New(cfg *config.Config, root string, env []string, out *output.Writer, opts Options) *Runner {
	if opts.Workers < MinWorkers {
		opts.Workers = DefaultWorkers()
	}
	if out == nil {
		out = output.New()
	}
	r := &Runner{
		cfg:     cfg,
		root:    root,
		env:     env,
		out:     out,
		opts:    opts,
		metrics: metrics.NewRecorder(),
	}
	r.pool = pool.New(opts.Workers,
		pool.WithPollInterval(opts.PollInterval),
		pool.WithOnStart(r.jobStarted),
		pool.WithOnReclaim(r.jobFinished),
	)
	return r
}

// Metrics returns the recorder filled in by Run.
func (r *Runner) Metrics() *metrics.Recorder {
	return r.metrics
}

// Run executes every phase. The returned error is reserved for configuration
// errors, interruption and broken invariants; build, run and comparison
// failures are reported through Result.Success.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	result := &Result{StartTime: time.Now()}

	var report *record.PackageReport
	err := r.runPhase(ctx, result, PhaseDiscovery, func() (bool, error) {
		var warnings []string
		var err error
		report, warnings, err = catalogue.Discover(ctx, r.cfg, catalogue.Options{
			Root:    r.root,
			LogDir:  r.opts.LogDir,
			Model:   r.opts.Model,
			Workers: r.opts.Workers,
			RunID:   r.opts.RunID,
		})
		for _, w := range warnings {
			r.out.WarningSimple("%s", w)
		}
		result.Warnings = append(result.Warnings, warnings...)
		return err == nil, err
	})
	if err != nil {
		return nil, err
	}
	result.Report = report
	logger.Info("catalogue discovered",
		"models", len(report.Models),
		"sims", len(report.Sims()),
		"runs", len(report.Runs()),
		"workers", r.opts.Workers,
		"build_policy", r.opts.Policy.String())

	if err := r.runPhase(ctx, result, PhaseBuild, func() (bool, error) {
		return r.build(ctx, report)
	}); err != nil {
		return nil, err
	}

	if r.opts.RunNone {
		r.out.Info("Run phase skipped (--run-none)")
		logger.Info("run phase skipped")
	} else if err := r.runPhase(ctx, result, PhaseRun, func() (bool, error) {
		return r.run(ctx, report)
	}); err != nil {
		return nil, err
	}

	_ = r.runPhase(ctx, result, PhaseAggregate, func() (bool, error) {
		report.Finalize()
		return report.Success(), nil
	})
	r.PrintReport(report)

	if r.opts.Analyze {
		if err := r.runPhase(ctx, result, PhaseAnalyze, func() (bool, error) {
			return r.analyze(ctx, report)
		}); err != nil {
			return nil, err
		}
	}
	if r.opts.Coverage {
		if err := r.runPhase(ctx, result, PhaseCoverage, func() (bool, error) {
			return r.coverage(ctx)
		}); err != nil {
			return nil, err
		}
	}

	result.Success = report.Success()
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if r.opts.ResultsFile != "" || r.opts.MetricsFile != "" {
		_ = r.runPhase(ctx, result, PhaseExport, func() (bool, error) {
			return r.export(ctx, report, result), nil
		})
	}

	logger.Info("orchestration finished",
		"success", result.Success,
		"duration", result.Duration)
	return result, nil
}

// runPhase times fn and records it as a PhaseResult. Interruption inside fn
// kills every pooled job before the error is returned.
func (r *Runner) runPhase(ctx context.Context, result *Result, name string, fn func() (bool, error)) error {
	logger := ctxlog.FromContext(ctx).With("phase", name)
	r.phase = name
	start := time.Now()
	logger.Debug("phase started")

	ok, err := fn()
	if err != nil && isInterrupt(err) {
		err = r.interrupt(ctx, err)
	}

	pr := PhaseResult{
		Name:      name,
		StartTime: start,
		EndTime:   time.Now(),
		Success:   ok && err == nil,
		Error:     err,
	}
	pr.Duration = pr.EndTime.Sub(pr.StartTime)
	result.PhaseResults = append(result.PhaseResults, pr)
	r.metrics.RecordPhase(name, pr.Duration)
	logger.Info("phase finished", "success", pr.Success, "duration", pr.Duration)
	return err
}

// interrupt kills all pooled jobs and waits for them to be reclaimed.
func (r *Runner) interrupt(ctx context.Context, cause error) error {
	ctxlog.FromContext(ctx).Warn("interrupted, killing running jobs", "running", r.pool.Running())
	r.pool.KillAll()

	drainCtx, cancel := context.WithTimeout(context.Background(), killGrace)
	defer cancel()
	if err := r.pool.Drain(drainCtx); err != nil {
		ctxlog.FromContext(ctx).Error("jobs still running after kill", "error", err)
	}
	return simerrors.WrapKind(simerrors.KindEnvironment, cause, "interrupted")
}

func isInterrupt(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// dispatch runs jobs on the pool, translating slot invariant violations into
// internal errors.
func (r *Runner) dispatch(ctx context.Context, jobs []job.Runnable) error {
	err := r.pool.Dispatch(ctx, jobs)
	switch {
	case err == nil:
		return nil
	case isInterrupt(err):
		return err
	default:
		return simerrors.Internal(r.phase, err)
	}
}

func (r *Runner) jobStarted(j job.Runnable) {
	r.out.JobStarted(r.phase, j.Name())
}

type timed interface {
	Duration() time.Duration
}

func (r *Runner) jobFinished(j job.Runnable) {
	var d time.Duration
	if t, ok := j.(timed); ok {
		d = t.Duration()
	}
	ok := j.Status() == job.Success
	r.metrics.RecordJob(r.phase, j.Status().String(), d)

	detail := j.StatusString()
	if ok {
		detail = output.FormatDuration(d)
	}
	r.out.JobFinished(r.phase, j.Name(), ok, detail)
}

// DefaultWorkers returns the pool size used when none is configured.
func DefaultWorkers() int {
	return max(MinWorkers, runtime.NumCPU())
}

// ValidateWorkers checks an explicitly requested pool size.
func ValidateWorkers(n int) error {
	if n < MinWorkers || n > MaxWorkers {
		return simerrors.Configf("workers must be between %d and %d, got %d", MinWorkers, MaxWorkers, n)
	}
	return nil
}

// WorkersFromEnv returns the pool size from SIMCHECK_WORKERS, or the default.
// Invalid values print a warning and fall back to the default.
func WorkersFromEnv(out *output.Writer) int {
	env := os.Getenv(WorkersEnv)
	if env == "" {
		return DefaultWorkers()
	}

	n, err := strconv.Atoi(env)
	if err != nil {
		out.WarningSimple("invalid %s value %q (not a number), using default", WorkersEnv, env)
		return DefaultWorkers()
	}
	if err := ValidateWorkers(n); err != nil {
		out.WarningSimple("%s=%d out of range [%d-%d], using default", WorkersEnv, n, MinWorkers, MaxWorkers)
		return DefaultWorkers()
	}
	return n
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
