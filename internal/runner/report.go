package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreyAkinshin/simcheck/internal/compare"
	"github.com/AndreyAkinshin/simcheck/internal/ctxlog"
	"github.com/AndreyAkinshin/simcheck/internal/fileutil"
	"github.com/AndreyAkinshin/simcheck/internal/output"
	"github.com/AndreyAkinshin/simcheck/internal/record"
)

// Result contains the outcome of one orchestration.
type Result struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	PhaseResults []PhaseResult
	Report       *record.PackageReport
	Warnings     []string
	Success      bool
}

// PhaseResult contains the timing and outcome of one phase.
type PhaseResult struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Success   bool
	Error     error
}

// PrintReport prints the model → sim → run tree. Passing comparisons are
// only listed in verbose mode.
func (r *Runner) PrintReport(report *record.PackageReport) {
	r.out.SummaryHeader("Results")
	for _, m := range report.Models {
		r.out.TreeNode(0, m.Name, m.Status().String(), m.Status() == record.ModelSuccess, "")
		for _, s := range m.Sims {
			r.out.TreeNode(1, s.Name, s.Status().String(), s.Status() == record.SimSuccess, simDetail(s))
			for _, run := range s.Runs {
				r.out.TreeNode(2, run.Name, run.Status().String(), run.Status() == record.RunSuccess, run.Detail())
				for _, c := range run.Comparisons {
					rel, err := filepath.Rel(run.Dir, c.Produced)
					if err != nil {
						rel = c.Produced
					}
					if c.Status() == compare.Success {
						r.out.Debug("      %s [%s]", filepath.ToSlash(rel), c.Status())
						continue
					}
					detail := ""
					if c.Status() == compare.Fail {
						detail = c.Reason().String()
					}
					r.out.TreeNode(3, filepath.ToSlash(rel), c.Status().String(), false, detail)
				}
			}
		}
	}
}

func simDetail(s *record.SimRecord) string {
	switch {
	case s.BuildFailed():
		return "build failed: " + s.BuildDetail()
	case s.BuildSkipped():
		return "no executable, build skipped"
	default:
		return ""
	}
}

// PrintSummary prints phase timings, the per-level counters and the verdict.
func PrintSummary(result *Result, out *output.Writer) {
	out.SummaryHeader("Summary")

	titleCase := cases.Title(language.English)
	out.SummarySectionLabel("Phases:")
	for _, p := range result.PhaseResults {
		var errMsg string
		if p.Error != nil {
			errMsg = p.Error.Error()
		}
		out.SummaryAction(titleCase.String(p.Name), p.Success, output.FormatDuration(p.Duration), errMsg)
	}
	out.Println("")

	if result.Report == nil {
		out.FinalFailure("Orchestration did not complete.")
		return
	}
	s := result.Report.Summary()

	modelLine := fmt.Sprintf("%d of %d passed", s.Models.Success, s.Models.Total)
	if s.Models.Fail > 0 {
		out.SummaryFailed("Models", modelLine)
	} else {
		out.SummaryPassed("Models", modelLine)
	}
	out.SummaryItem("Sims", joinCounts(
		count{s.Sims.Success, "passed"},
		count{s.Sims.RunFail, "with failed runs"},
		count{s.Sims.BuildFailed, "build failed"},
		count{s.Sims.BuildSkipped, "build skipped"},
	))
	out.SummaryItem("Runs", joinCounts(
		count{s.Runs.Success, "passed"},
		count{s.Runs.CompFail, "comparison failed"},
		count{s.Runs.RunFail, "run failed"},
		count{s.Runs.NotAttempted, "not attempted"},
	))
	out.SummaryItem("Comparisons", joinCounts(
		count{s.Comparisons.Success, "matched"},
		count{s.Comparisons.Fail, "failed"},
		count{s.Comparisons.Missing, "missing"},
		count{s.Comparisons.NotCompared, "not compared"},
	))
	out.SummaryItem("Duration", output.FormatDuration(result.Duration))
	if result.Report.LogDir != "" {
		out.SummaryItem("Logs", result.Report.LogDir)
	}

	if result.Success {
		out.FinalSuccess("All %s passed.", pluralize(s.Models.Total, "model"))
	} else {
		out.FinalFailure("%d of %s failed.", s.Models.Fail, pluralize(s.Models.Total, "model"))
	}
}

type count struct {
	n     int
	label string
}

// joinCounts renders the non-zero counts; the first one is always shown.
func joinCounts(counts ...count) string {
	var parts []string
	for i, c := range counts {
		if c.n == 0 && i > 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s", c.n, c.label))
	}
	return strings.Join(parts, ", ")
}

// export writes the JSON report and the metrics textfile. Export failures
// are reported as warnings; they never change the verdict.
func (r *Runner) export(ctx context.Context, report *record.PackageReport, result *Result) bool {
	logger := ctxlog.FromContext(ctx)
	ok := true

	if r.opts.ResultsFile != "" {
		data, err := report.MarshalReport(result.EndTime)
		if err == nil {
			err = fileutil.AtomicWrite(r.opts.ResultsFile, data)
		}
		if err != nil {
			r.out.WarningSimple("could not write results file: %v", err)
			logger.Error("results export failed", "path", r.opts.ResultsFile, "error", err)
			ok = false
		} else {
			logger.Info("results written", "path", r.opts.ResultsFile)
		}
	}

	if r.opts.MetricsFile != "" {
		r.metrics.RecordReport(report)
		if err := r.metrics.WriteFile(r.opts.MetricsFile); err != nil {
			r.out.WarningSimple("could not write metrics file: %v", err)
			logger.Error("metrics export failed", "path", r.opts.MetricsFile, "error", err)
			ok = false
		} else {
			logger.Info("metrics written", "path", r.opts.MetricsFile)
		}
	}
	return ok
}
