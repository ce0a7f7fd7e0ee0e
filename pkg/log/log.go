// Package log configures flowbot's process-wide structured logger.
package log

import (
	"log/slog"
	"os"
	"strings"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Setup installs a text handler at the requested level as the default logger
// and returns it. Unknown levels fall back to info.
func Setup(logLevel string) *slog.Logger {
	level, ok := levels[strings.ToLower(logLevel)]
	if !ok {
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return logger
}

// WithModule returns the default logger scoped to a module name, the
// attribute every flowbot component logs under.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
