/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// EnvLogLevel overrides the default log level when set.
const EnvLogLevel = "LOG_LEVEL"

// ParseLevel converts a level name into a slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// SetDefaultStructuredLogger installs a default logger tagged with the
// application name and version. The level comes from LOG_LEVEL.
func SetDefaultStructuredLogger(name, version string) {
	SetDefaultLoggerWithLevel(name, version, os.Getenv(EnvLogLevel), false)
}

// SetDefaultLoggerWithLevel installs a default logger at the given level.
// Output is text on an interactive terminal and JSON otherwise, or JSON
// always when forceJSON is set.
func SetDefaultLoggerWithLevel(name, version, level string, forceJSON bool) {
	slog.SetDefault(NewLogger(os.Stderr, name, version, ParseLevel(level), forceJSON || !isTerminal(os.Stderr)))
}

// NewLogger builds a logger writing to w.
func NewLogger(w io.Writer, name, version string, level slog.Level, asJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if asJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h).With("name", name, "version", version)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
