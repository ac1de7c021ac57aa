package runner

import (
	"context"
	"strings"

	"github.com/AndreyAkinshin/simcheck/internal/catalogue"
	"github.com/AndreyAkinshin/simcheck/internal/ctxlog"
	simerrors "github.com/AndreyAkinshin/simcheck/internal/errors"
	"github.com/AndreyAkinshin/simcheck/internal/job"
	"github.com/AndreyAkinshin/simcheck/internal/record"
)

// build compiles every sim in the build set, then scans each sim for its
// executable. It reports whether every attempted build produced one.
func (r *Runner) build(ctx context.Context, report *record.PackageReport) (bool, error) {
	logger := ctxlog.FromContext(ctx)
	plan := catalogue.Plan(report, r.opts.Policy)

	for _, s := range plan.AlreadyBuilt {
		logger.Debug("executable present, build skipped", "sim", s.ID())
	}
	for _, s := range plan.Forbidden {
		logger.Debug("builds disabled", "sim", s.ID(), "has_executable", s.HasExecutable())
	}

	jobs := make(map[*record.SimRecord]job.Runnable, len(plan.NeedsBuild))
	queue := make([]job.Runnable, 0, len(plan.NeedsBuild))
	for _, s := range plan.NeedsBuild {
		j := r.buildJob(s)
		jobs[s] = j
		queue = append(queue, j)
	}
	if len(queue) > 0 {
		r.out.PhaseHeader("Building " + pluralize(len(queue), "simulation"))
	}

	if err := r.dispatch(ctx, queue); err != nil {
		return false, err
	}

	ok := true
	for _, s := range report.Sims() {
		j, attempted := jobs[s]
		succeeded := attempted && j.Status() == job.Success
		if attempted {
			s.SetBuildDetail(buildDetail(ctx, s, j))
		}
		status := s.ScanBuild(attempted, succeeded)

		switch {
		case succeeded && status == record.SimNoExecutable:
			s.SetBuildDetail("build succeeded but " + s.ExecutablePath() + " was not produced")
			logger.Error("build produced no executable", "sim", s.ID(), "executable", s.Executable)
			ok = false
		case attempted && !succeeded:
			logger.Warn("build failed", "sim", s.ID(), "detail", j.StatusString(), "log", s.BuildLogPath)
			ok = false
		case !attempted && status == record.SimNoExecutable:
			logger.Info("no executable and no build scheduled", "sim", s.ID())
		}
	}
	return ok, nil
}

// attemptHistory is implemented by build jobs that retry.
type attemptHistory interface {
	Failures() []string
}

// buildDetail is the job's summary line, followed by the diagnosis of every
// failed attempt when the build was retried.
func buildDetail(ctx context.Context, s *record.SimRecord, j job.Runnable) string {
	detail := j.StatusString()
	h, ok := j.(attemptHistory)
	if !ok {
		return detail
	}
	failures := h.Failures()
	if len(failures) == 0 {
		return detail
	}
	logger := ctxlog.FromContext(ctx)
	for _, f := range failures {
		logger.Warn("build attempt failed", "sim", s.ID(), "attempt", f)
	}
	return detail + " [" + strings.Join(failures, "; ") + "]"
}

// buildJob creates the build job for s, wrapped in a retrying decorator when
// retries are configured. Retries append to the same log.
func (r *Runner) buildJob(s *record.SimRecord) job.Runnable {
	opts := job.Options{
		Dir:              s.Dir,
		LogPath:          s.BuildLogPath,
		ExpectedExitCode: r.cfg.Build.ExpectedExitCode,
		Env:              r.env,
	}

	retries := r.cfg.Build.Retries
	if r.opts.Retries >= 0 {
		retries = r.opts.Retries
	}
	if retries == 0 {
		return job.NewShell(s.ID(), s.BuildCommand, opts)
	}
	return job.NewRetrying(s.ID(), retries, func(attempt int) *job.Job {
		o := opts
		o.AppendLog = attempt > 1
		return job.NewShell(s.ID(), s.BuildCommand, o)
	})
}

// run executes every run of every built sim and compares its outputs. Runs
// of sims without an executable are left unattempted.
func (r *Runner) run(ctx context.Context, report *record.PackageReport) (bool, error) {
	logger := ctxlog.FromContext(ctx)

	jobs := make(map[*record.RunRecord]job.Runnable)
	var queue []job.Runnable
	var order []*record.RunRecord
	for _, s := range report.Sims() {
		if s.Status() != record.SimBuilt {
			if len(s.Runs) > 0 {
				logger.Info("runs skipped, sim has no executable", "sim", s.ID(), "runs", len(s.Runs))
			}
			continue
		}
		for _, run := range s.Runs {
			j := job.NewShell(s.ID()+"/"+run.Name, run.Command, job.Options{
				Dir:              run.WorkDir,
				LogPath:          run.LogPath,
				ExpectedExitCode: run.ExpectedExitCode,
				Env:              r.env,
			})
			jobs[run] = j
			queue = append(queue, j)
			order = append(order, run)
		}
	}
	if len(queue) > 0 {
		r.out.PhaseHeader("Running " + pluralize(len(queue), "simulation run"))
	}

	if err := r.dispatch(ctx, queue); err != nil {
		return false, err
	}

	ok := true
	var errs []error
	for _, run := range order {
		j := jobs[run]
		if err := run.Finish(ctx, j.Status(), j.StatusString()); err != nil {
			errs = append(errs, err)
			continue
		}
		if run.Status() != record.RunSuccess {
			ok = false
		}
	}
	if err := combineErrors(errs); err != nil {
		return false, simerrors.Internal(PhaseRun, err)
	}
	return ok, nil
}
