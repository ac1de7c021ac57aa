package record

import (
	"os"
	"path/filepath"
)

// SimRecord is one buildable simulation and its runs.
type SimRecord struct {
	Model        string
	Name         string
	Dir          string
	Executable   string
	BuildCommand string
	BuildLogPath string
	Runs         []*RunRecord

	status         SimStatus
	buildAttempted bool
	buildDetail    string
}

// ID returns the "<model>/<sim>" identifier used in logs and reports.
func (s *SimRecord) ID() string {
	return s.Model + "/" + s.Name
}

// Status returns the simulation's current classification.
func (s *SimRecord) Status() SimStatus { return s.status }

// HasExecutable reports whether the build artifact exists as a regular file.
func (s *SimRecord) HasExecutable() bool {
	info, err := os.Stat(s.Executable)
	return err == nil && info.Mode().IsRegular()
}

// ExecutablePath returns the artifact path relative to the sim directory
// when possible.
func (s *SimRecord) ExecutablePath() string {
	if rel, err := filepath.Rel(s.Dir, s.Executable); err == nil {
		return rel
	}
	return s.Executable
}

// SetBuildDetail records the build job's summary line for the report.
func (s *SimRecord) SetBuildDetail(detail string) { s.buildDetail = detail }

// BuildDetail returns the build job's summary line, if a build ran.
func (s *SimRecord) BuildDetail() string { return s.buildDetail }

// ScanBuild sets BUILT or NO_EXECUTABLE after the build phase. attempted
// says whether the sim was in the build set; succeeded is the build job's
// outcome and is ignored when nothing was attempted. The artifact must
// exist in every case.
func (s *SimRecord) ScanBuild(attempted, succeeded bool) SimStatus {
	s.buildAttempted = attempted
	switch {
	case !s.HasExecutable():
		s.status = SimNoExecutable
	case attempted && !succeeded:
		s.status = SimNoExecutable
	default:
		s.status = SimBuilt
	}
	return s.status
}

// BuildAttempted reports whether a build job was created for the sim.
func (s *SimRecord) BuildAttempted() bool { return s.buildAttempted }

// BuildFailed reports NO_EXECUTABLE after an attempted build.
func (s *SimRecord) BuildFailed() bool {
	return s.status == SimNoExecutable && s.buildAttempted
}

// BuildSkipped reports NO_EXECUTABLE for a sim that was never built.
func (s *SimRecord) BuildSkipped() bool {
	return s.status == SimNoExecutable && !s.buildAttempted
}

// Finalize promotes a BUILT sim to SUCCESS when every run succeeded and to
// RUN_FAIL otherwise. NO_EXECUTABLE is terminal.
func (s *SimRecord) Finalize() SimStatus {
	switch s.status {
	case SimBuilt:
		s.status = SimSuccess
		for _, r := range s.Runs {
			if r.Status() != RunSuccess {
				s.status = SimRunFail
				break
			}
		}
	case SimNotStarted:
		s.status = SimNoExecutable
	case SimNoExecutable, SimSuccess, SimRunFail:
	}
	return s.status
}
