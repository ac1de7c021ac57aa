// Package output provides formatted console output for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Writer handles CLI output formatting. It is safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	out     io.Writer
	err     io.Writer
	color   bool
	quiet   bool
	verbose bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// SetVerbose enables or disables verbose mode.
func (w *Writer) SetVerbose(verbose bool) {
	w.verbose = verbose
}

// SetColor forces color on or off.
func (w *Writer) SetColor(enabled bool) {
	w.color = enabled
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	w.Print(format+"\n", args...)
}

// Error writes to stderr.
func (w *Writer) Error(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.err, format, args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	w.Error(format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Debug prints a message only in verbose mode.
func (w *Writer) Debug(format string, args ...interface{}) {
	if !w.verbose || w.quiet {
		return
	}
	w.Println("%s", w.paint(color.Faint, fmt.Sprintf(format, args...)))
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s", w.paint(color.FgGreen, fmt.Sprintf(format, args...)))
}

// Warning prints a warning message.
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Errorln("%s", w.paint(color.FgYellow, "warning: "+fmt.Sprintf(format, args...)))
}

// WarningSimple prints a warning with only the prefix colored.
func (w *Writer) WarningSimple(format string, args ...interface{}) {
	w.Errorln("%s %s", w.paint(color.FgYellow, "warning:"), fmt.Sprintf(format, args...))
}

// ErrorPrefix prints an error message with the simcheck prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	w.Errorln("%s %s", w.paint(color.FgRed, "simcheck:"), fmt.Sprintf(format, args...))
}

// Section prints a section header.
func (w *Writer) Section(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	w.Println("%s", w.paint(color.Bold, "=== "+title+" ==="))
}

// PhaseHeader prints an orchestration phase header.
func (w *Writer) PhaseHeader(phase string) {
	if w.quiet {
		return
	}
	w.Println("")
	w.Println("%s", w.paint(color.FgBlue, "=== "+phase+" ===", color.Bold))
}

// List prints a list of items.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// Table prints a simple table.
func (w *Writer) Table(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var headerParts []string
	for i, h := range headers {
		headerParts = append(headerParts, fmt.Sprintf("%-*s", widths[i], h))
	}
	w.Println("%s", strings.TrimRight(strings.Join(headerParts, "  "), " "))

	var sepParts []string
	for _, width := range widths {
		sepParts = append(sepParts, strings.Repeat("-", width))
	}
	w.Println("%s", strings.Join(sepParts, "  "))

	for _, row := range rows {
		var rowParts []string
		for i, cell := range row {
			if i < len(widths) {
				rowParts = append(rowParts, fmt.Sprintf("%-*s", widths[i], cell))
			}
		}
		w.Println("%s", strings.TrimRight(strings.Join(rowParts, "  "), " "))
	}
}

// JobStarted reports that a job was dispatched.
func (w *Writer) JobStarted(phase, name string) {
	if w.quiet {
		return
	}
	w.Println("%s %s", w.paint(color.FgCyan, "["+phase+"]"), name)
}

// JobFinished reports the terminal outcome of a job.
func (w *Writer) JobFinished(phase, name string, ok bool, detail string) {
	if ok {
		if w.quiet {
			return
		}
		w.Println("%s %s %s %s", w.paint(color.FgGreen, "["+phase+"]"), name, w.paint(color.FgGreen, "✓"), w.paint(color.Faint, detail))
		return
	}
	w.Errorln("%s %s %s %s", w.paint(color.FgRed, "["+phase+"]"), name, w.paint(color.FgRed, "✗"), detail)
}

// SummaryHeader prints a summary section header.
func (w *Writer) SummaryHeader(title string) {
	w.Println("")
	w.Println("%s", w.paint(color.FgCyan, "=== "+title+" ===", color.Bold))
	w.Println("")
}

// SummaryItem prints a labeled summary item with value.
func (w *Writer) SummaryItem(label, value string) {
	w.Println("  %s %s", w.paint(color.Faint, label+":"), value)
}

// SummaryPassed prints a passed/success items summary.
func (w *Writer) SummaryPassed(label, value string) {
	w.Println("  %s %s", w.paint(color.Faint, label+":"), w.paint(color.FgGreen, value))
}

// SummaryFailed prints a failed items summary.
func (w *Writer) SummaryFailed(label, value string) {
	w.Println("  %s %s", w.paint(color.Faint, label+":"), w.paint(color.FgRed, value))
}

// SummarySectionLabel prints a label for a summary section (e.g., "Phases:").
func (w *Writer) SummarySectionLabel(label string) {
	w.Println("  %s", w.paint(color.Faint, label))
}

// SummaryAction prints an action item with status indicator, name, duration, and optional error.
func (w *Writer) SummaryAction(name string, success bool, duration string, errMsg string) {
	var line string
	switch {
	case success && w.color:
		line = fmt.Sprintf("    %s %-12s %s", w.paint(color.FgGreen, "✓"), name, w.paint(color.Faint, duration))
	case success:
		line = fmt.Sprintf("    + %-12s %s", name, duration)
	case w.color:
		line = fmt.Sprintf("    %s %-12s %s", w.paint(color.FgRed, "✗"), name, w.paint(color.Faint, duration))
	default:
		line = fmt.Sprintf("    x %-12s %s", name, duration)
	}
	if !success && errMsg != "" {
		line += fmt.Sprintf("  (%s)", errMsg)
	}
	w.Println("%s", line)
}

// TreeNode prints one node of the hierarchical report, indented by depth.
// The status label is green when ok and red otherwise.
func (w *Writer) TreeNode(depth int, name, status string, ok bool, detail string) {
	indent := strings.Repeat("  ", depth+1)
	statusColor := color.FgRed
	if ok {
		statusColor = color.FgGreen
	}
	line := fmt.Sprintf("%s%s %s", indent, name, w.paint(statusColor, "["+status+"]"))
	if detail != "" {
		line += " " + w.paint(color.Faint, detail)
	}
	w.Println("%s", line)
}

// FinalSuccess prints a final success message.
func (w *Writer) FinalSuccess(format string, args ...interface{}) {
	w.Println("")
	w.Println("%s", w.paint(color.FgGreen, fmt.Sprintf(format, args...)))
}

// FinalFailure prints a final failure message.
func (w *Writer) FinalFailure(format string, args ...interface{}) {
	w.Println("")
	w.Println("%s", w.paint(color.FgRed, fmt.Sprintf(format, args...)))
}

// Hint prints a hint message for the user.
func (w *Writer) Hint(format string, args ...interface{}) {
	w.Println("%s", w.paint(color.Faint, fmt.Sprintf(format, args...)))
}

// paint renders s with the given attributes when color is enabled.
func (w *Writer) paint(attr color.Attribute, s string, extra ...color.Attribute) string {
	if !w.color {
		return s
	}
	c := color.New(append([]color.Attribute{attr}, extra...)...)
	c.EnableColor()
	return c.Sprint(s)
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
