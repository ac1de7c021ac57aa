// Package cli provides the simcheck command line.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	simerrors "github.com/AndreyAkinshin/simcheck/internal/errors"
	"github.com/AndreyAkinshin/simcheck/internal/logging"
	"github.com/AndreyAkinshin/simcheck/internal/output"
	"github.com/AndreyAkinshin/simcheck/internal/project"
)

// Version is set at build time.
var Version = "dev"

// DefaultLogDir is the log directory, relative to the catalogue root.
const DefaultLogDir = "simcheck-logs"

// Options holds the parsed command-line flags.
type Options struct {
	ConfigPath  string
	LogDir      string
	LogFormat   string
	Model       string
	Workers     int
	BuildNone   bool
	BuildAll    bool
	RunNone     bool
	Analyze     bool
	Coverage    bool
	Retries     int
	ResultsFile string
	MetricsFile string
	Quiet       bool
	Verbose     bool
	NoColor     bool
}

type app struct {
	opts Options
	out  *output.Writer
	code int
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	return RunWithWriters(args, os.Stdout, os.Stderr)
}

// RunWithWriters is Run with explicit output streams.
func RunWithWriters(args []string, stdout, stderr io.Writer) int {
	a := &app{out: newWriter(stdout, stderr)}
	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		a.out.ErrorPrefix("%v", err)
		return exitCode(err)
	}
	return a.code
}

// exitCode maps an error to the process exit code. Errors that carry no
// kind come from cobra's own flag and argument parsing.
func exitCode(err error) int {
	var se *simerrors.SimcheckError
	if !errors.As(err, &se) {
		return simerrors.ExitConfigError
	}
	return simerrors.GetExitCode(err)
}

func newWriter(stdout, stderr io.Writer) *output.Writer {
	if stdout == os.Stdout && stderr == os.Stderr {
		return output.New()
	}
	return output.NewWithWriters(stdout, stderr, false)
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simcheck",
		Short: "Build, run and regression-check simulations against baselines",
		Long: `simcheck builds every simulation listed in the catalogue, executes its runs
through a bounded process pool, and compares the files each run produces
with the stored baselines.

The catalogue (simcheck.yaml, simcheck.yml or simcheck.json) is searched
for in the current directory and its parents unless --config is given.

Exit codes:
  0  every model passed
  1  at least one build, run or comparison failed
  2  configuration error
  3  environment error (log directory locked, interrupted)`,
		Example: `  simcheck                      # build missing executables, run, compare
  simcheck -j 8 --build-all     # rebuild everything with 8 workers
  simcheck --build-none --model orbit
  simcheck --analyze --results-file results.json
  simcheck validate             # check the catalogue without running`,
		Version:           Version,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.prepare,
		RunE:              a.runCheck,
	}
	cmd.SetVersionTemplate("simcheck {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.opts.ConfigPath, "config", "c", "", "Path to the catalogue file (default: search upwards for simcheck.yaml)")
	pf.StringVar(&a.opts.LogDir, "log-dir", DefaultLogDir, "Log directory, relative to the catalogue root")
	pf.StringVar(&a.opts.LogFormat, "log-format", logging.FormatText, "Format of simcheck.log (text or json)")
	pf.StringVar(&a.opts.Model, "model", "", "Only process the named model")
	pf.BoolVarP(&a.opts.Quiet, "quiet", "q", false, "Minimal output (errors only)")
	pf.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "Maximum detail")
	pf.BoolVar(&a.opts.NoColor, "no-color", false, "Disable colored output")

	f := cmd.Flags()
	f.IntVarP(&a.opts.Workers, "workers", "j", 0, "Number of parallel jobs (default: number of CPUs)")
	f.BoolVar(&a.opts.BuildNone, "build-none", false, "Never build; sims without an executable are not run")
	f.BoolVar(&a.opts.BuildAll, "build-all", false, "Rebuild every sim, even when the executable exists")
	f.BoolVar(&a.opts.RunNone, "run-none", false, "Skip the run phase")
	f.BoolVar(&a.opts.Analyze, "analyze", false, "Run the analyze command for every mismatched file")
	f.BoolVar(&a.opts.Coverage, "coverage", false, "Run the coverage command after the run phase")
	f.IntVar(&a.opts.Retries, "retries", -1, "Build retries (default: build.retries from the catalogue)")
	f.StringVar(&a.opts.ResultsFile, "results-file", "", "Write the report as JSON to this file")
	f.StringVar(&a.opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format to this file")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return simerrors.WrapKind(simerrors.KindConfig, err, "invalid flags")
	})

	cmd.AddCommand(newValidateCommand(a))
	return cmd
}

// prepare validates the global flags and applies them to the output writer.
func (a *app) prepare(_ *cobra.Command, _ []string) error {
	if a.opts.Quiet && a.opts.Verbose {
		return simerrors.Config("--quiet and --verbose are mutually exclusive")
	}
	if err := logging.ValidateFormat(a.opts.LogFormat); err != nil {
		return simerrors.WrapKind(simerrors.KindConfig, err, "invalid --log-format")
	}
	a.out.SetQuiet(a.opts.Quiet)
	a.out.SetVerbose(a.opts.Verbose)
	if a.opts.NoColor || os.Getenv("NO_COLOR") != "" {
		a.out.SetColor(false)
	}
	return nil
}

// loadProject loads the catalogue and prints its warnings. Load failures
// are configuration errors.
func (a *app) loadProject() (*project.Project, error) {
	proj, err := project.Load(a.opts.ConfigPath)
	if err != nil {
		var se *simerrors.SimcheckError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, simerrors.WrapKind(simerrors.KindConfig, err, "cannot load catalogue")
	}
	for _, w := range proj.Warnings {
		a.out.WarningSimple("%s", w)
	}
	return proj, nil
}
