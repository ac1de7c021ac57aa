// Package catalogue turns a loaded catalogue file into the record hierarchy
// and decides which simulations need building.
package catalogue

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/AndreyAkinshin/simcheck/internal/compare"
	"github.com/AndreyAkinshin/simcheck/internal/config"
	"github.com/AndreyAkinshin/simcheck/internal/ctxlog"
	simerrors "github.com/AndreyAkinshin/simcheck/internal/errors"
	"github.com/AndreyAkinshin/simcheck/internal/record"
)

// Log subdirectories under the log directory.
const (
	BuildLogDir   = "build"
	RunLogDir     = "run"
	AnalyzeLogDir = "analyze"
)

// Options controls discovery.
type Options struct {
	Root    string // directory containing the catalogue file
	LogDir  string // absolute log directory
	Model   string // restrict to one model; empty means all
	Workers int
	RunID   string
}

// Discover builds the record hierarchy for cfg. It returns non-fatal
// warnings (such as patterns matching nothing) alongside the report.
// Missing directories and comparisons that would compare a file with
// itself are configuration errors.
func Discover(ctx context.Context, cfg *config.Config, opts Options) (*record.PackageReport, []string, error) {
	d := &discoverer{cfg: cfg, opts: opts, logger: ctxlog.FromContext(ctx)}

	report := &record.PackageReport{
		Project:     cfg.Project,
		Root:        opts.Root,
		Executable:  cfg.Executable,
		BaselineDir: filepath.Join(opts.Root, cfg.Comparison.Directory),
		LogDir:      opts.LogDir,
		Workers:     opts.Workers,
		RunID:       opts.RunID,
	}

	matchedFilter := false
	for _, mc := range cfg.Models {
		name := mc.ModelName()
		if opts.Model != "" && name != opts.Model {
			continue
		}
		matchedFilter = true

		model, err := d.model(name, mc)
		if err != nil {
			return nil, d.warnings, err
		}
		report.Models = append(report.Models, model)
	}

	if opts.Model != "" && !matchedFilter {
		return nil, d.warnings, simerrors.NotFound("model", opts.Model)
	}

	return report, d.warnings, nil
}

type discoverer struct {
	cfg      *config.Config
	opts     Options
	logger   *slog.Logger
	warnings []string
}

func (d *discoverer) warn(unit, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.warnings = append(d.warnings, fmt.Sprintf("[%s] %s", unit, msg))
	d.logger.Warn(msg, "unit", unit)
}

func (d *discoverer) model(name string, mc config.ModelConfig) (*record.ModelRecord, error) {
	dir := filepath.Join(d.opts.Root, filepath.FromSlash(mc.Directory))
	if !isDir(dir) {
		return nil, simerrors.UnitConfig(name, fmt.Sprintf("model directory %s does not exist", dir))
	}

	model := &record.ModelRecord{Name: name, Dir: dir}
	for _, sc := range mc.Sims {
		sim, err := d.sim(model, sc)
		if err != nil {
			return nil, err
		}
		model.Sims = append(model.Sims, sim)
	}
	return model, nil
}

func (d *discoverer) sim(model *record.ModelRecord, sc config.SimConfig) (*record.SimRecord, error) {
	simName := filepath.ToSlash(filepath.Clean(sc.Directory))
	unit := model.Name + "/" + simName
	dir := filepath.Join(model.Dir, filepath.FromSlash(sc.Directory))
	if !isDir(dir) {
		return nil, simerrors.UnitConfig(unit, fmt.Sprintf("sim directory %s does not exist", dir))
	}

	executable := d.cfg.Executable
	if sc.Executable != "" {
		executable = sc.Executable
	}

	sim := &record.SimRecord{
		Model:      model.Name,
		Name:       simName,
		Dir:        dir,
		Executable: filepath.Join(dir, filepath.FromSlash(executable)),
	}
	vars := d.vars(sim, executable)
	sim.BuildCommand = Interpolate(d.cfg.Build.Command, vars)
	sim.BuildLogPath = filepath.Join(d.opts.LogDir, BuildLogDir, logName(model.Name, simName)+".log")

	seen := make(map[string]bool)
	for _, entry := range sc.Runs {
		runNames, err := findRunDirs(dir, entry.Pattern)
		if err != nil {
			return nil, simerrors.UnitConfig(unit, fmt.Sprintf("invalid run pattern %q: %v", entry.Pattern, err))
		}
		if len(runNames) == 0 {
			d.warn(unit, "run pattern %q matches no directories", entry.Pattern)
			continue
		}
		for _, runName := range runNames {
			if seen[runName] {
				d.warn(unit, "run %s matched by more than one pattern, keeping the first", runName)
				continue
			}
			seen[runName] = true

			run, err := d.run(sim, entry, runName, vars)
			if err != nil {
				return nil, err
			}
			sim.Runs = append(sim.Runs, run)
		}
	}
	return sim, nil
}

func (d *discoverer) run(sim *record.SimRecord, entry config.RunEntry, runName string, simVars map[string]string) (*record.RunRecord, error) {
	unit := sim.ID() + "/" + runName
	runDir := filepath.Join(sim.Dir, filepath.FromSlash(runName))

	vars := make(map[string]string, len(simVars)+2)
	for k, v := range simVars {
		vars[k] = v
	}
	vars["run"] = runName
	vars["run_dir"] = runDir

	command := d.cfg.Run.Command
	if entry.Command != "" {
		command = entry.Command
	}
	workDir := sim.Dir
	if d.cfg.Run.WorkingDir == config.WorkingDirRun {
		workDir = runDir
	}

	run := &record.RunRecord{
		Name:             runName,
		Dir:              runDir,
		Command:          Interpolate(command, vars),
		WorkDir:          workDir,
		ExpectedExitCode: entry.ExpectedExitCode,
		LogPath:          filepath.Join(d.opts.LogDir, RunLogDir, logName(sim.Model, sim.Name, runName)+".log"),
	}

	if len(entry.Compare) == 0 {
		return run, nil
	}

	baselineDir := filepath.Join(d.opts.Root, filepath.FromSlash(d.cfg.Comparison.Directory),
		sim.Model, filepath.FromSlash(sim.Name), filepath.FromSlash(runName))
	if filepath.Clean(baselineDir) == filepath.Clean(runDir) {
		return nil, simerrors.UnitConfig(unit, fmt.Sprintf("run directory and baseline directory are both %s", runDir))
	}
	if !isDir(baselineDir) {
		d.warn(unit, "baseline directory %s does not exist, nothing to compare", baselineDir)
		return run, nil
	}

	for _, pattern := range entry.Compare {
		files, err := findFiles(baselineDir, pattern)
		if err != nil {
			return nil, simerrors.UnitConfig(unit, fmt.Sprintf("invalid compare pattern %q: %v", pattern, err))
		}
		if len(files) == 0 {
			d.warn(unit, "compare pattern %q matches no baseline files", pattern)
			continue
		}
		for _, rel := range files {
			produced := filepath.Join(runDir, filepath.FromSlash(rel))
			baseline := filepath.Join(baselineDir, filepath.FromSlash(rel))
			if produced == baseline {
				return nil, simerrors.UnitConfig(unit, fmt.Sprintf("produced and baseline paths are both %s", produced))
			}
			run.Comparisons = append(run.Comparisons, compare.New(produced, baseline))
		}
	}
	return run, nil
}

func (d *discoverer) vars(sim *record.SimRecord, executable string) map[string]string {
	return map[string]string{
		"executable": executable,
		"model":      sim.Model,
		"sim":        sim.Name,
		"sim_dir":    sim.Dir,
		"root":       d.opts.Root,
	}
}

// logName joins hierarchy names into one flat file name.
func logName(parts ...string) string {
	clean := make([]string, len(parts))
	for i, p := range parts {
		clean[i] = strings.NewReplacer("/", "_", `\`, "_", " ", "_").Replace(p)
	}
	return strings.Join(clean, ".")
}

// AnalyzeLogPath returns the log file for analyzing one mismatched file.
func AnalyzeLogPath(logDir string, sim *record.SimRecord, run *record.RunRecord, rel string) string {
	return filepath.Join(logDir, AnalyzeLogDir, logName(sim.Model, sim.Name, run.Name, rel)+".log")
}
