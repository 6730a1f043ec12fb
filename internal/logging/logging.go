// Package logging wires structured logging for orc using go.uber.org/zap,
// the logger the retrieved corpus reaches for (codenerd's cmd/nerd/main.go
// builds a zap.ProductionConfig and bumps its level for verbose runs). The
// teacher's own internal/debug package is a hand-rolled, mutex-guarded
// io.Writer logger; orc replaces it with zap so log_level from Config
// (§4.1) drives a real leveled logger instead of a boolean debug flag.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger writing console-formatted output, with the level
// derived from a Config.LogLevel string ("debug", "info", "warn", "error").
// An unrecognized level falls back to "info".
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()

	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Nop returns a logger that discards everything, for tests and library
// callers that don't want orc writing to stderr.
func Nop() *zap.Logger {
	return zap.NewNop()
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
