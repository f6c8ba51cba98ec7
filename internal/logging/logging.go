// Package logging builds the application's zap logger. The interactive app
// owns the terminal, so logs go to a file rather than stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultPath resolves the log file path:
// 1. CRITREE_LOG environment variable
// 2. $XDG_STATE_HOME/critree/critree.log
// 3. ~/.local/state/critree/critree.log
func DefaultPath() (string, error) {
	if p := os.Getenv("CRITREE_LOG"); p != "" {
		return p, nil
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "critree", "critree.log"), nil
}

// New builds a JSON file logger at path. Verbose lowers the level to debug.
func New(path string, verbose bool) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Sampling = nil
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named("critree"), nil
}

// NewOrNop is New with a silent fallback. Logging never stops the tool.
func NewOrNop(path string, verbose bool) *zap.Logger {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return zap.NewNop()
		}
		path = p
	}
	logger, err := New(path, verbose)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
