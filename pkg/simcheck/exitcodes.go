// Package simcheck provides public constants for external tools that invoke
// the simcheck CLI.
package simcheck

// Exit codes returned by the simcheck CLI.
//
// The convention is fixed here and nowhere else: zero means every model
// passed. Aggregation code only ever reports success as a boolean and the
// CLI maps it to these values at the process boundary. A completed
// orchestration only ever exits with ExitSuccess or ExitFailure; the other
// codes are reserved for runs that stop before any verdict exists.
const (
	// ExitSuccess indicates every model in the catalogue passed.
	ExitSuccess = 0

	// ExitFailure indicates at least one build, run or comparison failed.
	ExitFailure = 1

	// ExitConfigError indicates a configuration error (malformed catalogue,
	// missing directories, meaningless comparisons, invalid flags).
	ExitConfigError = 2

	// ExitEnvError indicates an environment error (log directory locked by
	// another orchestration, interrupted run).
	ExitEnvError = 3
)
