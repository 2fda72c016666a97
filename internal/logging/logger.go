// Package logging configures the process-wide zap logger. The MCP server
// speaks its protocol on stdout and the TUI owns the terminal, so all logs
// go to a file (with stderr as the fallback).
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// Init builds the file-backed logger. Call once at process start; before
// Init (and after a failed Init) L() returns a no-op logger, so logging is
// always safe.
func Init(path, level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	if path != "" {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr == nil {
			cfg.OutputPaths = []string{path}
		}
	}
	cfg.ErrorOutputPaths = cfg.OutputPaths

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logger = built
	return nil
}

// L returns the process logger.
func L() *zap.Logger {
	return logger
}

// Sync flushes buffered log entries. Best effort on shutdown.
func Sync() {
	_ = logger.Sync()
}
