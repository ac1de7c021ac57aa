// Package errors provides structured error types and exit codes for simcheck.
//
// Only configuration errors, environment errors and pool invariant violations
// travel as Go errors. A unit that fails to build, run or compare is recorded
// as a status value on its record and never surfaces here.
package errors

import (
	"errors"
	"fmt"

	"github.com/AndreyAkinshin/simcheck/pkg/simcheck"
)

// Exit codes returned by the simcheck CLI. See pkg/simcheck for the public copy.
const (
	ExitSuccess          = simcheck.ExitSuccess
	ExitRuntimeError     = simcheck.ExitFailure
	ExitConfigError      = simcheck.ExitConfigError
	ExitEnvironmentError = simcheck.ExitEnvError
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindValidation
	KindEnvironment
	KindInternal
)

// SimcheckError is the base error type for simcheck.
type SimcheckError struct {
	Kind    ErrorKind
	Message string
	Unit    string // model/sim/run path if applicable
	Phase   string // orchestration phase if applicable
	Cause   error  // Underlying error
}

func (e *SimcheckError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Unit != "" && e.Phase != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Unit, e.Phase, msg)
	}
	if e.Unit != "" {
		return fmt.Sprintf("[%s] %s", e.Unit, msg)
	}
	return msg
}

func (e *SimcheckError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *SimcheckError) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation, KindNotFound:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *SimcheckError {
	return &SimcheckError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *SimcheckError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *SimcheckError {
	return &SimcheckError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *SimcheckError {
	return Config(fmt.Sprintf(format, args...))
}

// UnitConfig creates a configuration error attached to a catalogue unit.
func UnitConfig(unit, message string) *SimcheckError {
	return &SimcheckError{
		Kind:    KindConfig,
		Unit:    unit,
		Message: message,
	}
}

// Environment creates a new environment error.
func Environment(message string) *SimcheckError {
	return &SimcheckError{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...interface{}) *SimcheckError {
	return Environment(fmt.Sprintf(format, args...))
}

// Internal creates an error for a broken invariant, such as placing a job
// into a slot that is still occupied.
func Internal(phase string, cause error) *SimcheckError {
	return &SimcheckError{
		Kind:    KindInternal,
		Phase:   phase,
		Message: "internal invariant violated",
		Cause:   cause,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *SimcheckError {
	return &SimcheckError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// WrapKind wraps an error with additional context and an explicit kind.
func WrapKind(kind ErrorKind, err error, message string) *SimcheckError {
	return &SimcheckError{
		Kind:    kind,
		Message: message,
		Cause:   err,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *SimcheckError {
	return &SimcheckError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// IsKind reports whether err is, or wraps, a SimcheckError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *SimcheckError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var se *SimcheckError
	if errors.As(err, &se) {
		return se.ExitCode()
	}
	return ExitRuntimeError
}
