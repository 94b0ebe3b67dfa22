package app

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// logger is shared by the helpers, loader and handlers. Init replaces it with
// one built from the configuration.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// NewLogger returns a text logger at the given level (debug, info, warn, error).
// debug forces the debug level regardless of level, which is how the widget's
// debug printing is switched on.
func NewLogger(w io.Writer, level string, debug bool) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	if debug {
		l = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: l,
	}))
}

// SetLogger replaces the package logger
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}
