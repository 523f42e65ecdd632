// Package logging builds the supervisor's slog loggers and re-logs child
// process output as structured records.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process-wide logger. Logs go to stderr so they stay
// out of the way of anything the supervised service writes to stdout. The
// verbose flag forces debug level regardless of the configured level; format
// is "text" or "json" (the default, since container log collectors expect
// one JSON object per line).
func NewLogger(format, level string, verbose bool) *slog.Logger {
	logLevel := parseLevel(level)
	if verbose {
		logLevel = slog.LevelDebug
	}
	return build(os.Stderr, format, logLevel)
}

// NewLoggerWithWriter is the test seam: same construction, caller-owned sink.
func NewLoggerWithWriter(w io.Writer, format, level string) *slog.Logger {
	return build(w, format, parseLevel(level))
}

func build(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		// Source locations only when debugging; they are noise in production
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// parseLevel maps a level name to slog.Level; unknown names fall back to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault installs the logger as the slog package default.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
