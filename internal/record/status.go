package record

import "fmt"

// RunStatus is the outcome of one run.
type RunStatus int

const (
	RunNotStarted RunStatus = iota
	RunFail
	RunCompFail
	RunSuccess
)

func (s RunStatus) String() string {
	switch s {
	case RunNotStarted:
		return "NOT_STARTED"
	case RunFail:
		return "RUN_FAIL"
	case RunCompFail:
		return "COMP_FAIL"
	case RunSuccess:
		return "SUCCESS"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// SimStatus is the build and run outcome of one simulation.
type SimStatus int

const (
	SimNotStarted SimStatus = iota
	SimBuilt
	SimNoExecutable
	SimSuccess
	SimRunFail
)

func (s SimStatus) String() string {
	switch s {
	case SimNotStarted:
		return "NOT_STARTED"
	case SimBuilt:
		return "BUILT"
	case SimNoExecutable:
		return "NO_EXECUTABLE"
	case SimSuccess:
		return "SUCCESS"
	case SimRunFail:
		return "RUN_FAIL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// ModelStatus is the rolled-up outcome of one model.
type ModelStatus int

const (
	ModelNotStarted ModelStatus = iota
	ModelSuccess
	ModelSimFail
)

func (s ModelStatus) String() string {
	switch s {
	case ModelNotStarted:
		return "NOT_STARTED"
	case ModelSuccess:
		return "SUCCESS"
	case ModelSimFail:
		return "SIM_FAIL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}
