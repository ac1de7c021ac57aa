package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimcheckError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *SimcheckError
		expected string
	}{
		{
			name:     "message only",
			err:      &SimcheckError{Message: "something failed"},
			expected: "something failed",
		},
		{
			name:     "with unit",
			err:      &SimcheckError{Unit: "orbit/SIM_a", Message: "directory missing"},
			expected: "[orbit/SIM_a] directory missing",
		},
		{
			name:     "with unit and phase",
			err:      &SimcheckError{Unit: "orbit/SIM_a", Phase: "build", Message: "bad command"},
			expected: "[orbit/SIM_a] build: bad command",
		},
		{
			name:     "phase without unit not included",
			err:      &SimcheckError{Phase: "build", Message: "something failed"},
			expected: "something failed",
		},
		{
			name:     "with cause",
			err:      &SimcheckError{Message: "load", Cause: errors.New("boom")},
			expected: "load: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestSimcheckError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, "wrapper")

	assert.Same(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, New("no cause").Unwrap())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("x"), ExitRuntimeError},
		{"runtime", New("x"), ExitRuntimeError},
		{"config", Config("x"), ExitConfigError},
		{"validation", &SimcheckError{Kind: KindValidation}, ExitConfigError},
		{"not found", NotFound("model", "orbit"), ExitConfigError},
		{"environment", Environment("x"), ExitEnvironmentError},
		{"internal", Internal("build", errors.New("slot")), ExitRuntimeError},
		{"wrapped config", fmt.Errorf("outer: %w", Configf("inner %d", 1)), ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("context: %w", UnitConfig("orbit", "missing"))

	assert.True(t, IsKind(err, KindConfig))
	assert.False(t, IsKind(err, KindEnvironment))
	assert.False(t, IsKind(errors.New("plain"), KindConfig))
}
