// Package logger builds the zap loggers used by the lexdex binaries and
// carries request-scoped loggers through context.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option adjusts a logger before it is built.
type Option func(*options)

type options struct {
	level     string
	component string
}

// WithLevel overrides the environment's default level (debug, info, warn, error).
// An empty level keeps the default.
func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

// WithComponent tags every entry with the emitting binary.
func WithComponent(name string) Option {
	return func(o *options) { o.component = name }
}

// New creates a logger for env. prod writes JSON with ISO8601 timestamps,
// local and docker write colored console output, test discards everything.
func New(env string, opts ...Option) (*zap.Logger, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := baseConfig(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return zap.NewNop(), nil
	}

	if o.level != "" {
		level, err := zapcore.ParseLevel(o.level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", o.level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	buildOpts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if o.component != "" {
		buildOpts = append(buildOpts, zap.Fields(zap.String("component", o.component)))
	}

	l, err := cfg.Build(buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

// baseConfig returns nil for the test environment.
func baseConfig(env string) (*zap.Config, error) {
	switch env {
	case "prod":
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return &cfg, nil
	case "local", "dev", "docker":
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return &cfg, nil
	case "test":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
}
