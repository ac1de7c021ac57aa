package catalogue

import (
	"fmt"

	"github.com/AndreyAkinshin/simcheck/internal/record"
)

// BuildPolicy decides which simulations are built.
type BuildPolicy int

const (
	// BuildIfMissing builds only simulations without an executable.
	BuildIfMissing BuildPolicy = iota
	// BuildAll rebuilds every simulation.
	BuildAll
	// BuildNone never builds; existing executables are still used.
	BuildNone
)

func (p BuildPolicy) String() string {
	switch p {
	case BuildIfMissing:
		return "if-missing"
	case BuildAll:
		return "all"
	case BuildNone:
		return "none"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// PolicyFromFlags maps the mutually exclusive CLI toggles to a policy.
func PolicyFromFlags(buildNone, buildAll bool) (BuildPolicy, error) {
	switch {
	case buildNone && buildAll:
		return BuildIfMissing, fmt.Errorf("--build-none and --build-all are mutually exclusive")
	case buildNone:
		return BuildNone, nil
	case buildAll:
		return BuildAll, nil
	default:
		return BuildIfMissing, nil
	}
}

// BuildPlan partitions simulations before the build phase.
type BuildPlan struct {
	NeedsBuild   []*record.SimRecord
	AlreadyBuilt []*record.SimRecord
	Forbidden    []*record.SimRecord
}

// InBuildSet reports whether s is scheduled for a build.
func (p BuildPlan) InBuildSet(s *record.SimRecord) bool {
	for _, n := range p.NeedsBuild {
		if n == s {
			return true
		}
	}
	return false
}

// Plan partitions every simulation of the report according to policy.
func Plan(report *record.PackageReport, policy BuildPolicy) BuildPlan {
	var plan BuildPlan
	for _, s := range report.Sims() {
		switch policy {
		case BuildNone:
			plan.Forbidden = append(plan.Forbidden, s)
		case BuildAll:
			plan.NeedsBuild = append(plan.NeedsBuild, s)
		case BuildIfMissing:
			if s.HasExecutable() {
				plan.AlreadyBuilt = append(plan.AlreadyBuilt, s)
			} else {
				plan.NeedsBuild = append(plan.NeedsBuild, s)
			}
		}
	}
	return plan
}
