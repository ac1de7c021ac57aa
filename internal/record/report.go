package record

import "github.com/AndreyAkinshin/simcheck/internal/compare"

// PackageReport is the root of the hierarchy together with the run
// configuration it was produced under.
type PackageReport struct {
	Project     string
	Root        string
	Executable  string
	BaselineDir string
	LogDir      string
	Workers     int
	RunID       string
	Models      []*ModelRecord

	finalized bool
}

// Sims returns every simulation in catalogue order.
func (p *PackageReport) Sims() []*SimRecord {
	var sims []*SimRecord
	for _, m := range p.Models {
		sims = append(sims, m.Sims...)
	}
	return sims
}

// Runs returns every run in catalogue order.
func (p *PackageReport) Runs() []*RunRecord {
	var runs []*RunRecord
	for _, s := range p.Sims() {
		runs = append(runs, s.Runs...)
	}
	return runs
}

// Finalize rolls statuses up from sims to models. It writes each status
// once; later calls are no-ops.
func (p *PackageReport) Finalize() {
	if p.finalized {
		return
	}
	for _, m := range p.Models {
		m.Finalize()
	}
	p.finalized = true
}

// Success reports whether every model succeeded.
func (p *PackageReport) Success() bool {
	for _, m := range p.Models {
		if m.Status() != ModelSuccess {
			return false
		}
	}
	return true
}

// RunCounts tallies runs by outcome.
type RunCounts struct {
	Total        int `json:"total"`
	Success      int `json:"success"`
	CompFail     int `json:"comp_fail"`
	RunFail      int `json:"run_fail"`
	NotAttempted int `json:"not_attempted"`
}

// ComparisonCounts tallies file comparisons by outcome.
type ComparisonCounts struct {
	Total       int `json:"total"`
	Success     int `json:"success"`
	Fail        int `json:"fail"`
	Missing     int `json:"missing"`
	NotCompared int `json:"not_compared"`
}

// SimCounts tallies simulations by outcome. Build failures and skipped
// builds share NO_EXECUTABLE but are counted apart.
type SimCounts struct {
	Total        int `json:"total"`
	Success      int `json:"success"`
	RunFail      int `json:"run_fail"`
	BuildFailed  int `json:"build_failed"`
	BuildSkipped int `json:"build_skipped"`
}

// ModelCounts tallies models by outcome.
type ModelCounts struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Fail    int `json:"fail"`
}

// Summary holds the counters printed at the end of a run.
type Summary struct {
	Runs        RunCounts        `json:"runs"`
	Comparisons ComparisonCounts `json:"comparisons"`
	Sims        SimCounts        `json:"sims"`
	Models      ModelCounts      `json:"models"`
}

// Summary counts every level of the hierarchy.
func (p *PackageReport) Summary() Summary {
	var s Summary
	for _, m := range p.Models {
		s.Models.Total++
		if m.Status() == ModelSuccess {
			s.Models.Success++
		} else {
			s.Models.Fail++
		}
		for _, sim := range m.Sims {
			s.Sims.Total++
			switch {
			case sim.Status() == SimSuccess:
				s.Sims.Success++
			case sim.BuildFailed():
				s.Sims.BuildFailed++
			case sim.BuildSkipped():
				s.Sims.BuildSkipped++
			default:
				s.Sims.RunFail++
			}
			for _, r := range sim.Runs {
				s.Runs.add(r)
				s.Comparisons.add(r)
			}
		}
	}
	return s
}

func (c *RunCounts) add(r *RunRecord) {
	c.Total++
	switch r.Status() {
	case RunSuccess:
		c.Success++
	case RunCompFail:
		c.CompFail++
	case RunFail:
		c.RunFail++
	case RunNotStarted:
		c.NotAttempted++
	}
}

func (c *ComparisonCounts) add(r *RunRecord) {
	for _, fc := range r.Comparisons {
		c.Total++
		switch {
		case fc.Status() == compare.Success:
			c.Success++
		case fc.Status() == compare.NotStarted:
			c.NotCompared++
		case fc.Reason().Missing():
			c.Missing++
		default:
			c.Fail++
		}
	}
}

// FailedComparisons returns comparisons that failed on content, for the
// analyze post-step. Missing files are excluded since there is nothing to
// diff.
func (p *PackageReport) FailedComparisons() []*FailedComparison {
	var out []*FailedComparison
	for _, sim := range p.Sims() {
		for _, r := range sim.Runs {
			for _, c := range r.Comparisons {
				if c.Status() == compare.Fail && c.Reason() == compare.ReasonMismatch {
					out = append(out, &FailedComparison{Sim: sim, Run: r, Comparison: c})
				}
			}
		}
	}
	return out
}

// FailedComparison locates one mismatched file in the hierarchy.
type FailedComparison struct {
	Sim        *SimRecord
	Run        *RunRecord
	Comparison *compare.FileComparison
}
