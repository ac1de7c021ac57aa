// Package record holds the model → simulation → run hierarchy and rolls
// leaf outcomes up into a single verdict.
package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/AndreyAkinshin/simcheck/internal/compare"
	"github.com/AndreyAkinshin/simcheck/internal/ctxlog"
	"github.com/AndreyAkinshin/simcheck/internal/job"
)

// ErrJobNotSucceeded is returned when comparisons are requested for a run
// whose job did not succeed.
var ErrJobNotSucceeded = errors.New("run job has not succeeded")

// RunRecord is one execution of a built simulation.
type RunRecord struct {
	Name             string
	Dir              string
	Command          string
	WorkDir          string
	ExpectedExitCode int
	LogPath          string
	Comparisons      []*compare.FileComparison

	status RunStatus
	detail string
}

// Status returns the run's current classification.
func (r *RunRecord) Status() RunStatus { return r.status }

// Detail returns the job summary captured when the run finished.
func (r *RunRecord) Detail() string { return r.detail }

// Attempted reports whether the run's job was ever classified.
func (r *RunRecord) Attempted() bool { return r.status != RunNotStarted }

// Finish classifies the run from its job's terminal status. A failed job is
// RUN_FAIL and its comparisons are never executed.
func (r *RunRecord) Finish(ctx context.Context, status job.Status, detail string) error {
	r.detail = detail
	switch status {
	case job.Failed:
		r.status = RunFail
		ctxlog.FromContext(ctx).Warn("run failed", "run", r.Dir, "detail", detail)
		return nil
	case job.Success:
		return r.CompareData(ctx, status)
	case job.NotStarted, job.Running:
		return fmt.Errorf("run %s: job is %s", r.Dir, status)
	default:
		return fmt.Errorf("run %s: unexpected job status %s", r.Dir, status)
	}
}

// CompareData runs every comparison of the run. It refuses to run unless
// the job succeeded. A missing file is logged as an error, a mismatch as a
// warning; both make the run COMP_FAIL.
func (r *RunRecord) CompareData(ctx context.Context, status job.Status) error {
	if status != job.Success {
		return fmt.Errorf("%w: %s is %s", ErrJobNotSucceeded, r.Dir, status)
	}
	logger := ctxlog.FromContext(ctx)

	r.status = RunSuccess
	for _, c := range r.Comparisons {
		if c.Compare() == compare.Success {
			logger.Debug("comparison passed", "produced", c.Produced, "baseline", c.Baseline)
			continue
		}
		r.status = RunCompFail
		attrs := []any{"run", r.Dir, "produced", c.Produced, "baseline", c.Baseline, "reason", c.Reason().String()}
		if c.Reason().Missing() {
			logger.Error("comparison input missing", append(attrs, "error", c.Err())...)
		} else {
			logger.Warn("comparison failed", attrs...)
		}
	}
	return nil
}
