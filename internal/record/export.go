package record

import (
	"encoding/json"
	"time"

	"github.com/AndreyAkinshin/simcheck/internal/compare"
)

// ReportJSON is the machine-readable form of a PackageReport.
type ReportJSON struct {
	Project     string      `json:"project,omitempty"`
	RunID       string      `json:"run_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Root        string      `json:"root"`
	LogDir      string      `json:"log_dir"`
	Workers     int         `json:"workers"`
	Success     bool        `json:"success"`
	Summary     Summary     `json:"summary"`
	Models      []ModelJSON `json:"models"`
}

// ModelJSON is the exported form of a ModelRecord.
type ModelJSON struct {
	Name   string    `json:"name"`
	Status string    `json:"status"`
	Sims   []SimJSON `json:"sims"`
}

// SimJSON is the exported form of a SimRecord.
type SimJSON struct {
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	BuildAttempted bool      `json:"build_attempted"`
	BuildDetail    string    `json:"build_detail,omitempty"`
	Runs           []RunJSON `json:"runs"`
}

// RunJSON is the exported form of a RunRecord.
type RunJSON struct {
	Name        string           `json:"name"`
	Status      string           `json:"status"`
	Detail      string           `json:"detail,omitempty"`
	LogPath     string           `json:"log_path,omitempty"`
	Comparisons []ComparisonJSON `json:"comparisons,omitempty"`
}

// ComparisonJSON is the exported form of a FileComparison.
type ComparisonJSON struct {
	Produced string `json:"produced"`
	Baseline string `json:"baseline"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

// Export converts the report into its JSON shape.
func (p *PackageReport) Export(now time.Time) ReportJSON {
	out := ReportJSON{
		Project:     p.Project,
		RunID:       p.RunID,
		GeneratedAt: now.UTC(),
		Root:        p.Root,
		LogDir:      p.LogDir,
		Workers:     p.Workers,
		Success:     p.Success(),
		Summary:     p.Summary(),
		Models:      []ModelJSON{},
	}
	for _, m := range p.Models {
		mj := ModelJSON{Name: m.Name, Status: m.Status().String(), Sims: []SimJSON{}}
		for _, s := range m.Sims {
			sj := SimJSON{
				Name:           s.Name,
				Status:         s.Status().String(),
				BuildAttempted: s.BuildAttempted(),
				BuildDetail:    s.BuildDetail(),
				Runs:           []RunJSON{},
			}
			for _, r := range s.Runs {
				rj := RunJSON{Name: r.Name, Status: r.Status().String(), Detail: r.Detail(), LogPath: r.LogPath}
				for _, c := range r.Comparisons {
					cj := ComparisonJSON{Produced: c.Produced, Baseline: c.Baseline, Status: c.Status().String()}
					if c.Status() == compare.Fail {
						cj.Reason = c.Reason().String()
					}
					rj.Comparisons = append(rj.Comparisons, cj)
				}
				sj.Runs = append(sj.Runs, rj)
			}
			mj.Sims = append(mj.Sims, sj)
		}
		out.Models = append(out.Models, mj)
	}
	return out
}

// MarshalReport renders the report as indented JSON.
func (p *PackageReport) MarshalReport(now time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(p.Export(now), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
