package config

// Default configuration values.
const (
	DefaultBuildCommand        = "make"
	DefaultRunCommand          = "./${executable} ${run}"
	DefaultWorkingDir          = WorkingDirSim
	DefaultComparisonDirectory = "baseline"
)

// ApplyDefaults fills in default values for unset configuration fields.
func ApplyDefaults(cfg *Config) {
	applyBuildDefaults(cfg)
	applyRunDefaults(cfg)
	applyComparisonDefaults(cfg)
}

func applyBuildDefaults(cfg *Config) {
	if cfg.Build == nil {
		cfg.Build = &BuildConfig{}
	}
	if cfg.Build.Command == "" {
		cfg.Build.Command = DefaultBuildCommand
	}
}

func applyRunDefaults(cfg *Config) {
	if cfg.Run == nil {
		cfg.Run = &RunConfig{}
	}
	if cfg.Run.Command == "" {
		cfg.Run.Command = DefaultRunCommand
	}
	if cfg.Run.WorkingDir == "" {
		cfg.Run.WorkingDir = DefaultWorkingDir
	}
}

func applyComparisonDefaults(cfg *Config) {
	if cfg.Comparison == nil {
		cfg.Comparison = &ComparisonConfig{}
	}
	if cfg.Comparison.Directory == "" {
		cfg.Comparison.Directory = DefaultComparisonDirectory
	}
}
