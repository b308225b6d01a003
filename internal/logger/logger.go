// Package logger holds the process-wide zap logger used by cmd/main.go.
// Components never read it directly; they receive a *zap.Logger in their constructors.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the application logger, a no-op until Init is called
var Logger = zap.NewNop()

// Init builds the application logger for the given level.
// "debug" selects a human-readable development encoder, every other level a JSON encoder.
func Init(level string) error {
	l, err := New(level)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// New builds a logger for the given level without touching the global one
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	// Progress goes to stderr so stdout stays free for script summaries
	cfg.OutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

// Sync flushes buffered log entries
func Sync() {
	_ = Logger.Sync()
}
