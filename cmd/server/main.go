package main

import (
    "context"
    "errors"
    "log"
    "os"
    "os/signal"
    "syscall"

    "go.uber.org/zap"

    "creditdesk/internal/app"
    "creditdesk/internal/config"
    "creditdesk/internal/logging"
)

func main() {
    cfg, err := config.Load()
    if !config.OnlyMissing(err) || errors.Is(err, config.ErrNoJWTSecret) {
        log.Fatalf("config: %v", err)
    }
    logger := logging.Must(cfg.Env, cfg.LogLevel)
    defer func() { _ = logger.Sync() }()

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    a, err := app.New(ctx, cfg, logger)
    if err != nil {
        logger.Error("startup failed", zap.Error(err))
        os.Exit(1)
    }
    defer a.Close()

    if err := a.Run(ctx); err != nil {
        logger.Error("server stopped", zap.Error(err))
        os.Exit(1)
    }
}
