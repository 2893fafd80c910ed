// Package logger provides structured logging for reportlens.
// A process-wide default logger is configured by the CLI (--verbose);
// services receive a *log.Logger explicitly and never reach for globals.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var std = New(os.Stderr, false)

// New creates a logger writing to w. Verbose loggers emit debug messages;
// otherwise the level is info.
func New(w io.Writer, verbose bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           log.InfoLevel,
	})
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// Discard returns a logger that drops everything. Useful for testing.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// Default returns the process-wide logger.
func Default() *log.Logger {
	return std
}

// SetVerbose enables or disables debug output on the default logger.
func SetVerbose(v bool) {
	if v {
		std.SetLevel(log.DebugLevel)
	} else {
		std.SetLevel(log.InfoLevel)
	}
}

// Warn logs a warning on the default logger.
func Warn(msg string, keyvals ...any) {
	std.Warn(msg, keyvals...)
}
