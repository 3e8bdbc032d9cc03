package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger flavour.
type Config struct {
	Level       string
	Development bool
	// Verbose forces debug level regardless of Level.
	Verbose bool
}

// New builds a zap logger. The returned AtomicLevel can change the level at
// runtime.
func New(cfg Config) (*zap.Logger, zap.AtomicLevel, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		parsed, err := zap.ParseAtomicLevel(raw)
		if err != nil {
			return nil, zap.AtomicLevel{}, fmt.Errorf("logging: parse level %q: %w", raw, err)
		}
		level = parsed
	}
	if cfg.Verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	zcfg.Level = level

	logger, err := zcfg.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, level, nil
}
