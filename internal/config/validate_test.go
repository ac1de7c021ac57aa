package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{
		Executable: "sim.exe",
		Models: []ModelConfig{{
			Directory: "models/orbit",
			Sims: []SimConfig{{
				Directory: "SIM_a",
				Runs:      []RunEntry{{Pattern: "RUN_*", Compare: []string{"log/*.csv"}}},
			}},
		}},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	warnings, err := Validate(validConfig())

	assert.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing executable", func(c *Config) { c.Executable = " " }, "executable"},
		{"absolute executable", func(c *Config) { c.Executable = "/usr/bin/sim" }, "executable"},
		{"retries too high", func(c *Config) { c.Build.Retries = MaxRetries + 1 }, "build.retries"},
		{"negative build exit code", func(c *Config) { c.Build.ExpectedExitCode = -1 }, "build.expected_exit_code"},
		{"bad working dir", func(c *Config) { c.Run.WorkingDir = "tmp" }, "run.working_dir"},
		{"escaping baseline dir", func(c *Config) { c.Comparison.Directory = "../baseline" }, "comparison.directory"},
		{"empty analyze", func(c *Config) { c.Analyze = &CommandConfig{} }, "analyze.command"},
		{"empty coverage", func(c *Config) { c.Coverage = &CommandConfig{Command: "  "} }, "coverage.command"},
		{"no models", func(c *Config) { c.Models = nil }, "models"},
		{"model without directory", func(c *Config) { c.Models[0].Directory = "" }, "models[0].directory"},
		{"duplicate model", func(c *Config) { c.Models = append(c.Models, c.Models[0]) }, "models[1]"},
		{"sim without directory", func(c *Config) { c.Models[0].Sims[0].Directory = "" }, "models[0].sims[0].directory"},
		{"escaping sim", func(c *Config) { c.Models[0].Sims[0].Directory = "../SIM_a" }, "models[0].sims[0].directory"},
		{"duplicate sim", func(c *Config) {
			c.Models[0].Sims = append(c.Models[0].Sims, SimConfig{Directory: "./SIM_a"})
		}, "models[0].sims[1]"},
		{"absolute sim executable", func(c *Config) { c.Models[0].Sims[0].Executable = "/bin/true" }, "models[0].sims[0].executable"},
		{"empty pattern", func(c *Config) { c.Models[0].Sims[0].Runs[0].Pattern = "" }, "models[0].sims[0].runs[0].pattern"},
		{"bad pattern", func(c *Config) { c.Models[0].Sims[0].Runs[0].Pattern = "RUN_[" }, "models[0].sims[0].runs[0].pattern"},
		{"bad compare pattern", func(c *Config) { c.Models[0].Sims[0].Runs[0].Compare = []string{"log/[x"} }, "models[0].sims[0].runs[0].compare[0]"},
		{"absolute compare", func(c *Config) { c.Models[0].Sims[0].Runs[0].Compare = []string{"/tmp/x"} }, "models[0].sims[0].runs[0].compare[0]"},
		{"run exit code", func(c *Config) { c.Models[0].Sims[0].Runs[0].ExpectedExitCode = 256 }, "models[0].sims[0].runs[0].expected_exit_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			_, err := Validate(cfg)

			require.Error(t, err)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	cfg := validConfig()
	cfg.Models = append(cfg.Models, ModelConfig{Name: "empty", Directory: "models/empty"})

	warnings, err := Validate(cfg)

	require.NoError(t, err)
	assert.Equal(t, []string{`model "empty" has no sims`}, warnings)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "executable", Message: "is required"}

	assert.Equal(t, "executable: is required", err.Error())
}

func TestModelName(t *testing.T) {
	assert.Equal(t, "orbit", ModelConfig{Directory: "models/orbit/"}.ModelName())
	assert.Equal(t, "custom", ModelConfig{Name: "custom", Directory: "models/orbit"}.ModelName())
}
