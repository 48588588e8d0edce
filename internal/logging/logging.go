// Package logging builds the zap logger shared by the server, workers and CLI.
package logging

import (
    "fmt"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// New returns a development logger for non-production environments and a JSON
// production logger otherwise.
func New(env, level string) (*zap.Logger, error) {
    lvl, err := zapcore.ParseLevel(level)
    if err != nil {
        return nil, fmt.Errorf("log level %q: %w", level, err)
    }
    var cfg zap.Config
    if env == "production" {
        cfg = zap.NewProductionConfig()
    } else {
        cfg = zap.NewDevelopmentConfig()
        cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
    }
    cfg.Level = zap.NewAtomicLevelAt(lvl)
    return cfg.Build()
}

// Must is New for main packages. On bad input it returns a production logger
// that warns about the rejected config, or a no-op logger if even that fails.
func Must(env, level string) *zap.Logger {
    l, err := New(env, level)
    if err != nil {
        fallback, _ := zap.NewProduction()
        if fallback == nil {
            return zap.NewNop()
        }
        fallback.Warn("logger config rejected", zap.Error(err))
        return fallback
    }
    return l
}
