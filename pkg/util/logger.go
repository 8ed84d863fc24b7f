package util

import (
	"log/slog"
	"os"

	"github.com/go-logr/logr"
)

var (
	logger      logr.Logger
	initialized bool
)

// InitLogger initializes the global logger with the specified log level
func InitLogger(verbose bool) {
	var level slog.Level
	if verbose {
		level = slog.LevelDebug
	} else {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = logr.FromSlogHandler(handler).WithName("makerun")
	slog.SetDefault(slog.New(handler))
	initialized = true
}

// GetLogger returns the global logger instance
func GetLogger() logr.Logger {
	if !initialized {
		InitLogger(false)
	}
	return logger
}

// SetLogger replaces the global logger, e.g. with logr.Discard() in tests
func SetLogger(l logr.Logger) {
	logger = l
	initialized = true
}
