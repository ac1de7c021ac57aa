package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AndreyAkinshin/simcheck/internal/schema"
)

// Limits enforced by Validate.
const (
	MaxRetries  = 10
	MaxExitCode = 255
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validateSchema(data []byte) error {
	if err := schema.ValidateCatalogue(data); err != nil {
		return &ValidationError{Field: "catalogue", Message: err.Error()}
	}
	return nil
}

// Validate checks a configuration for errors and returns warnings for
// non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if strings.TrimSpace(cfg.Executable) == "" {
		return nil, &ValidationError{Field: "executable", Message: "is required"}
	}
	if err := validateRelative("executable", cfg.Executable); err != nil {
		return nil, err
	}
	if err := validateBuild(cfg.Build); err != nil {
		return nil, err
	}
	if err := validateRun(cfg.Run); err != nil {
		return nil, err
	}
	if cfg.Comparison != nil {
		if err := validateRelative("comparison.directory", cfg.Comparison.Directory); err != nil {
			return nil, err
		}
	}
	if cfg.Analyze != nil && strings.TrimSpace(cfg.Analyze.Command) == "" {
		return nil, &ValidationError{Field: "analyze.command", Message: "is required when analyze is set"}
	}
	if cfg.Coverage != nil && strings.TrimSpace(cfg.Coverage.Command) == "" {
		return nil, &ValidationError{Field: "coverage.command", Message: "is required when coverage is set"}
	}

	modelWarnings, err := validateModels(cfg.Models)
	if err != nil {
		return nil, err
	}
	return modelWarnings, nil
}

func validateBuild(b *BuildConfig) error {
	if b == nil {
		return nil
	}
	if b.Retries < 0 || b.Retries > MaxRetries {
		return &ValidationError{Field: "build.retries", Message: fmt.Sprintf("must be between 0 and %d", MaxRetries)}
	}
	return validateExitCode("build.expected_exit_code", b.ExpectedExitCode)
}

func validateRun(r *RunConfig) error {
	if r == nil {
		return nil
	}
	switch r.WorkingDir {
	case "", WorkingDirSim, WorkingDirRun:
		return nil
	default:
		return &ValidationError{Field: "run.working_dir", Message: `must be "sim" or "run"`}
	}
}

func validateModels(models []ModelConfig) ([]string, error) {
	if len(models) == 0 {
		return nil, &ValidationError{Field: "models", Message: "at least one model is required"}
	}

	var warnings []string
	seen := make(map[string]bool)
	for i, m := range models {
		field := fmt.Sprintf("models[%d]", i)
		if strings.TrimSpace(m.Directory) == "" {
			return nil, &ValidationError{Field: field + ".directory", Message: "is required"}
		}
		name := m.ModelName()
		if seen[name] {
			return nil, &ValidationError{Field: field, Message: fmt.Sprintf("duplicate model name %q", name)}
		}
		seen[name] = true

		if len(m.Sims) == 0 {
			warnings = append(warnings, fmt.Sprintf("model %q has no sims", name))
		}
		simSeen := make(map[string]bool)
		for j, s := range m.Sims {
			simField := fmt.Sprintf("%s.sims[%d]", field, j)
			if strings.TrimSpace(s.Directory) == "" {
				return nil, &ValidationError{Field: simField + ".directory", Message: "is required"}
			}
			if err := validateRelative(simField+".directory", s.Directory); err != nil {
				return nil, err
			}
			if simSeen[filepath.Clean(s.Directory)] {
				return nil, &ValidationError{Field: simField, Message: fmt.Sprintf("duplicate sim %q in model %q", s.Directory, name)}
			}
			simSeen[filepath.Clean(s.Directory)] = true
			if s.Executable != "" {
				if err := validateRelative(simField+".executable", s.Executable); err != nil {
					return nil, err
				}
			}
			if len(s.Runs) == 0 {
				warnings = append(warnings, fmt.Sprintf("sim %q in model %q has no runs", s.Directory, name))
			}
			for k, r := range s.Runs {
				if err := validateRunEntry(fmt.Sprintf("%s.runs[%d]", simField, k), r); err != nil {
					return nil, err
				}
			}
		}
	}
	return warnings, nil
}

func validateRunEntry(field string, r RunEntry) error {
	if strings.TrimSpace(r.Pattern) == "" {
		return &ValidationError{Field: field + ".pattern", Message: "is required"}
	}
	if _, err := filepath.Match(r.Pattern, ""); err != nil {
		return &ValidationError{Field: field + ".pattern", Message: fmt.Sprintf("invalid pattern %q: %v", r.Pattern, err)}
	}
	if err := validateRelative(field+".pattern", r.Pattern); err != nil {
		return err
	}
	for i, c := range r.Compare {
		cf := fmt.Sprintf("%s.compare[%d]", field, i)
		if _, err := filepath.Match(c, ""); err != nil {
			return &ValidationError{Field: cf, Message: fmt.Sprintf("invalid pattern %q: %v", c, err)}
		}
		if err := validateRelative(cf, c); err != nil {
			return err
		}
	}
	return validateExitCode(field+".expected_exit_code", r.ExpectedExitCode)
}

func validateExitCode(field string, code int) error {
	if code < 0 || code > MaxExitCode {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be between 0 and %d", MaxExitCode)}
	}
	return nil
}

// validateRelative rejects absolute paths and paths escaping their parent.
func validateRelative(field, p string) error {
	if p == "" {
		return nil
	}
	if filepath.IsAbs(p) {
		return &ValidationError{Field: field, Message: "must be a relative path"}
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return &ValidationError{Field: field, Message: "must not escape its parent directory"}
	}
	return nil
}
