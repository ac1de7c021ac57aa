// Package logging sets up the top-level orchestration log written next to
// the per-job logs.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the name of the top-level log inside the log directory.
const FileName = "simcheck.log"

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ValidateFormat rejects anything but FormatText and FormatJSON.
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatText, FormatJSON)
	}
}

// NewLogger creates a slog.Logger writing to w. It does not set the global
// logger, so independent orchestrations can run in one process.
func NewLogger(verbose bool, format string, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Open creates (or truncates) <logDir>/simcheck.log and returns a logger
// tagged with runID. The caller closes the returned file.
func Open(logDir, runID, format string, verbose bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.Create(filepath.Join(logDir, FileName))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", FileName, err)
	}
	logger := NewLogger(verbose, format, f).With("run_id", runID)
	return logger, f, nil
}
