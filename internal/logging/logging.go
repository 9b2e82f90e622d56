// Package logging builds the zap loggers used by the CLI, the compile
// driver and the explorer server.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Off disables logging entirely
const Off = "off"

// Levels lists the accepted level names
var Levels = []string{"debug", "info", "warn", "error", Off}

// ParseLevel validates a level name
func ParseLevel(level string) (zapcore.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return l, fmt.Errorf("unknown log level %q (want one of %s)", level, strings.Join(Levels, ", "))
	}
	return l, nil
}

// New builds a logger. Development loggers write colored console output
// to stderr; production loggers write JSON. The level "off" returns a
// no-op logger.
func New(level string, development bool) (*zap.Logger, error) {
	if strings.EqualFold(strings.TrimSpace(level), Off) {
		return zap.NewNop(), nil
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Must is New for callers that cannot continue without a logger; it falls
// back to a no-op logger on error.
func Must(level string, development bool) *zap.Logger {
	logger, err := New(level, development)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
