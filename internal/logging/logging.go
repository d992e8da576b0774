// Package logging builds the slog loggers used by ash and provides the
// fatal-abort helper used where a failure must stop the process.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/ash/internal/config"
)

// LevelFatal sits above slog.LevelError; records at this level precede exit.
const LevelFatal = slog.Level(12)

// DefaultLevel is used when LOG_LEVEL is unset or unknown.
const DefaultLevel = slog.LevelWarn

// exit is replaced in tests.
var exit = os.Exit

// ParseLevel maps a LOG_LEVEL value to a slog level.
// Accepts debug, info, warning (or warn), error and fatal, in any case.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warning", "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	case "fatal":
		return LevelFatal, true
	}
	return DefaultLevel, false
}

// New returns a text logger writing to w.
// Every record carries the process id and a run id unique to this process,
// so lines from shells logging concurrently into one file stay separable.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelFatal {
					a.Value = slog.StringValue("FATAL")
				}
			}
			return a
		},
	})
	return slog.New(handler).With("pid", os.Getpid(), "run", runID())
}

// FromConfig builds the process logger from LOG_FILE and LOG_LEVEL.
// The returned closer releases the log file, if one was opened.
// When verbose is true the level is forced to debug.
func FromConfig(cfg config.Provider, stderr io.Writer, verbose bool) (*slog.Logger, io.Closer, error) {
	level, ok := ParseLevel(cfg.GetString(config.KeyLogLevel, ""))
	if !ok && cfg.Has(config.KeyLogLevel) {
		fmt.Fprintf(stderr, "unknown LOG_LEVEL %q, using %s\n",
			cfg.GetString(config.KeyLogLevel, ""), DefaultLevel)
	}
	if verbose {
		level = slog.LevelDebug
	}

	path := cfg.GetString(config.KeyLogFile, "")
	if path == "" {
		return New(stderr, level), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, level), f, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Fatal records msg at the fatal level and terminates the process.
func Fatal(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(context.Background(), LevelFatal, msg, args...)
	exit(1)
}

func runID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
