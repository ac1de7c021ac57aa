package runner

import (
	"context"
	"path/filepath"

	"github.com/AndreyAkinshin/simcheck/internal/catalogue"
	"github.com/AndreyAkinshin/simcheck/internal/ctxlog"
	"github.com/AndreyAkinshin/simcheck/internal/job"
	"github.com/AndreyAkinshin/simcheck/internal/record"
)

// CoverageLogName is the coverage post-step log, relative to the log directory.
const CoverageLogName = "coverage.log"

// analyze runs the analyze command once per mismatched file. Analysis
// failures are reported but never change the verdict.
func (r *Runner) analyze(ctx context.Context, report *record.PackageReport) (bool, error) {
	logger := ctxlog.FromContext(ctx)
	if r.cfg.Analyze == nil {
		r.out.WarningSimple("--analyze given but the catalogue has no analyze command")
		return true, nil
	}

	failed := report.FailedComparisons()
	if len(failed) == 0 {
		logger.Info("no mismatched files to analyze")
		return true, nil
	}

	var queue []job.Runnable
	for _, fc := range failed {
		rel, err := filepath.Rel(fc.Run.Dir, fc.Comparison.Produced)
		if err != nil {
			rel = filepath.Base(fc.Comparison.Produced)
		}
		vars := map[string]string{
			"executable": fc.Sim.ExecutablePath(),
			"model":      fc.Sim.Model,
			"sim":        fc.Sim.Name,
			"sim_dir":    fc.Sim.Dir,
			"root":       r.root,
			"run":        fc.Run.Name,
			"run_dir":    fc.Run.Dir,
			"produced":   fc.Comparison.Produced,
			"baseline":   fc.Comparison.Baseline,
		}
		name := fc.Sim.ID() + "/" + fc.Run.Name + "/" + filepath.ToSlash(rel)
		queue = append(queue, job.NewShell(name, catalogue.Interpolate(r.cfg.Analyze.Command, vars), job.Options{
			Dir:     fc.Run.Dir,
			LogPath: catalogue.AnalyzeLogPath(r.opts.LogDir, fc.Sim, fc.Run, rel),
			Env:     r.env,
		}))
	}

	r.out.PhaseHeader("Analyzing " + pluralize(len(queue), "mismatched file"))
	if err := r.dispatch(ctx, queue); err != nil {
		return false, err
	}

	ok := true
	for _, j := range queue {
		if j.Status() != job.Success {
			ok = false
			logger.Warn("analysis failed", "file", j.Name(), "detail", j.StatusString())
		}
	}
	return ok, nil
}

// coverage runs the coverage command once in the catalogue root.
func (r *Runner) coverage(ctx context.Context) (bool, error) {
	logger := ctxlog.FromContext(ctx)
	if r.cfg.Coverage == nil {
		r.out.WarningSimple("--coverage given but the catalogue has no coverage command")
		return true, nil
	}

	cmd := catalogue.Interpolate(r.cfg.Coverage.Command, map[string]string{
		"root":       r.root,
		"executable": r.cfg.Executable,
	})
	j := job.NewShell("coverage", cmd, job.Options{
		Dir:     r.root,
		LogPath: filepath.Join(r.opts.LogDir, CoverageLogName),
		Env:     r.env,
	})

	r.out.PhaseHeader("Collecting coverage")
	if err := r.dispatch(ctx, []job.Runnable{j}); err != nil {
		return false, err
	}
	if j.Status() != job.Success {
		logger.Warn("coverage failed", "detail", j.StatusString(), "log", j.LogPath())
		return false, nil
	}
	return true, nil
}
