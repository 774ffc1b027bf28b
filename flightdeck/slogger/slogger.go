// Package slogger provides a shared LOG_LEVEL-aware slog initialization
// helper. Call Init() at the start of a service's main() to configure the
// global logger from the LOG_LEVEL environment variable; legacy log.Print*
// calls are bridged through slog as well.
//
// Valid LOG_LEVEL values: "debug", "info", "warn", "error". Default: "info".
package slogger

import (
	"log/slog"
	"os"
	"strings"
)

// level holds the dynamic log level so it can be adjusted at runtime.
var level *slog.LevelVar

// Init reads LOG_LEVEL, configures a global slog TextHandler on stdout, and
// sets it as the default logger.
func Init() {
	level = &slog.LevelVar{}
	level.Set(parseLevel(os.Getenv("LOG_LEVEL")))

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// Level returns the current slog.Level.
func Level() slog.Level {
	if level == nil {
		return slog.LevelInfo
	}
	return level.Level()
}

// SetLevel changes the log level at runtime. No-op before Init.
func SetLevel(l slog.Level) {
	if level != nil {
		level.Set(l)
	}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
