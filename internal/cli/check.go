package cli

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/simcheck/internal/catalogue"
	"github.com/AndreyAkinshin/simcheck/internal/ctxlog"
	simerrors "github.com/AndreyAkinshin/simcheck/internal/errors"
	"github.com/AndreyAkinshin/simcheck/internal/fileutil"
	"github.com/AndreyAkinshin/simcheck/internal/logging"
	"github.com/AndreyAkinshin/simcheck/internal/runner"
)

// runCheck is the default command: build, run, compare and report.
func (a *app) runCheck(cmd *cobra.Command, _ []string) error {
	policy, err := catalogue.PolicyFromFlags(a.opts.BuildNone, a.opts.BuildAll)
	if err != nil {
		return simerrors.WrapKind(simerrors.KindConfig, err, "invalid flags")
	}

	workers := a.opts.Workers
	if cmd.Flags().Changed("workers") {
		if err := runner.ValidateWorkers(workers); err != nil {
			return err
		}
	} else {
		workers = runner.WorkersFromEnv(a.out)
	}

	resultsFile, err := absOrEmpty(a.opts.ResultsFile)
	if err != nil {
		return err
	}
	metricsFile, err := absOrEmpty(a.opts.MetricsFile)
	if err != nil {
		return err
	}

	proj, err := a.loadProject()
	if err != nil {
		return err
	}
	logDir := proj.LogDir(a.opts.LogDir)

	lock, err := fileutil.NewDirLock(logDir)
	if err != nil {
		return simerrors.WrapKind(simerrors.KindEnvironment, err, "cannot prepare log directory")
	}
	locked, err := lock.TryLock()
	if err != nil {
		return simerrors.WrapKind(simerrors.KindEnvironment, err, "cannot lock log directory")
	}
	if !locked {
		return simerrors.Environmentf("log directory %s is in use by another simcheck process", logDir)
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	logger, logFile, err := logging.Open(logDir, runID, a.opts.LogFormat, a.opts.Verbose)
	if err != nil {
		return simerrors.WrapKind(simerrors.KindEnvironment, err, "cannot open log")
	}
	defer func() { _ = logFile.Close() }()

	logger.Info("simcheck started",
		"version", Version,
		"config", proj.ConfigPath,
		"root", proj.Root,
		"workers", workers,
		"build_policy", policy.String())
	for _, w := range proj.Warnings {
		logger.Warn("catalogue warning", "warning", w)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	r := runner.New(proj.Config, proj.Root, proj.Env, a.out, runner.Options{
		Policy:      policy,
		RunNone:     a.opts.RunNone,
		Analyze:     a.opts.Analyze,
		Coverage:    a.opts.Coverage,
		Retries:     a.opts.Retries,
		Workers:     workers,
		LogDir:      logDir,
		Model:       a.opts.Model,
		RunID:       runID,
		ResultsFile: resultsFile,
		MetricsFile: metricsFile,
	})
	result, err := r.Run(ctx)
	if err != nil {
		logger.Error("orchestration aborted", "error", err)
		return err
	}

	runner.PrintSummary(result, a.out)
	if !result.Success {
		a.code = simerrors.ExitRuntimeError
	}
	return nil
}

func absOrEmpty(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", simerrors.WrapKind(simerrors.KindConfig, err, "invalid path "+path)
	}
	return abs, nil
}
