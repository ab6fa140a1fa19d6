// Package logging builds the leveled loggers used by the CLI, the TUI and
// the task store.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Format selects the log line encoding.
type Format string

// Formats.
const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

// Options configures a logger.
type Options struct {
	Level      log.Level
	Format     Format
	Timestamps bool
	Caller     bool
	Prefix     string
	// File, when set, receives log output instead of the writer passed to
	// Open.
	File string
}

// DefaultOptions returns warn-level text logging without timestamps.
func DefaultOptions() Options {
	return Options{
		Level:  log.WarnLevel,
		Format: FormatText,
	}
}

// ParseLevel parses a level name.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	case "fatal":
		return log.FatalLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
}

// ParseFormat parses a format name.
func ParseFormat(format string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(format))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatLogfmt:
		return FormatLogfmt, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q (want text, json or logfmt)", format)
}

func (f Format) formatter() log.Formatter {
	switch f {
	case FormatJSON:
		return log.JSONFormatter
	case FormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Format.formatter(),
		ReportTimestamp: opts.Timestamps,
		ReportCaller:    opts.Caller,
		Prefix:          opts.Prefix,
	})
}

// Open returns a logger for opts. Output goes to opts.File when set, which
// is created or appended to, and to w otherwise. The returned closer must be
// closed when logging is done.
func Open(w io.Writer, opts Options) (*log.Logger, io.Closer, error) {
	if opts.File == "" {
		return New(w, opts), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, opts), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
