// Package config provides loading and validation for the simcheck catalogue
// file (simcheck.yaml, simcheck.yml or simcheck.json).
package config

// Config represents the complete catalogue file.
type Config struct {
	Project    string            `json:"project,omitempty"`
	Executable string            `json:"executable"`
	Env        map[string]string `json:"env,omitempty"`
	EnvFile    string            `json:"env_file,omitempty"`
	Build      *BuildConfig      `json:"build,omitempty"`
	Run        *RunConfig        `json:"run,omitempty"`
	Comparison *ComparisonConfig `json:"comparison,omitempty"`
	Analyze    *CommandConfig    `json:"analyze,omitempty"`
	Coverage   *CommandConfig    `json:"coverage,omitempty"`
	Models     []ModelConfig     `json:"models"`
}

// BuildConfig describes how a simulation executable is produced.
type BuildConfig struct {
	Command          string `json:"command,omitempty"`
	ExpectedExitCode int    `json:"expected_exit_code,omitempty"`
	Retries          int    `json:"retries,omitempty"`
}

// RunConfig holds defaults shared by every run.
type RunConfig struct {
	Command    string `json:"command,omitempty"`
	WorkingDir string `json:"working_dir,omitempty"` // "sim" or "run"
}

// ComparisonConfig locates the baseline tree.
type ComparisonConfig struct {
	Directory string `json:"directory,omitempty"`
}

// CommandConfig is an optional post-step command.
type CommandConfig struct {
	Command string `json:"command"`
}

// ModelConfig is one model directory and its simulations.
type ModelConfig struct {
	Name      string      `json:"name,omitempty"`
	Directory string      `json:"directory"`
	Sims      []SimConfig `json:"sims"`
}

// SimConfig is one simulation directory and its run patterns.
type SimConfig struct {
	Directory  string     `json:"directory"`
	Executable string     `json:"executable,omitempty"`
	Runs       []RunEntry `json:"runs,omitempty"`
}

// RunEntry matches one or more run directories inside a simulation.
type RunEntry struct {
	Pattern          string   `json:"pattern"`
	Compare          []string `json:"compare,omitempty"`
	ExpectedExitCode int      `json:"expected_exit_code,omitempty"`
	Command          string   `json:"command,omitempty"`
}

// Working directory choices for run jobs.
const (
	WorkingDirSim = "sim"
	WorkingDirRun = "run"
)

// ModelName returns the configured name, or the directory's base name.
func (m ModelConfig) ModelName() string {
	if m.Name != "" {
		return m.Name
	}
	return baseName(m.Directory)
}
