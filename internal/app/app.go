// Package app wires configuration, storage, services and transport into a
// runnable server. Both cmd/server and `creditctl start-dev` use it.
package app

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "time"

    "go.uber.org/zap"
    "golang.org/x/net/http2"
    "golang.org/x/net/http2/h2c"
    "golang.org/x/sync/errgroup"

    "creditdesk/internal/adapters/memory"
    httpadapter "creditdesk/internal/adapters/http"
    pg "creditdesk/internal/adapters/postgres"
    "creditdesk/internal/config"
    "creditdesk/internal/ports"
    "creditdesk/internal/services/analytics"
    "creditdesk/internal/services/audit"
    "creditdesk/internal/services/auth"
    "creditdesk/internal/services/clients"
    "creditdesk/internal/services/disputes"
    "creditdesk/internal/services/documents"
    "creditdesk/internal/services/letters"
    "creditdesk/internal/services/notifications"
    "creditdesk/internal/services/payments"
    "creditdesk/internal/services/reports"
    "creditdesk/internal/services/settings"
    "creditdesk/internal/workers/letterrunner"
)

// Backend is the storage surface the services need. Both the Postgres and
// the in-memory adapters satisfy it.
type Backend interface {
    ports.UserRepository
    ports.TokenRepository
    ports.ClientRepository
    ports.DisputeRepository
    ports.LetterRepository
    ports.PaymentRepository
    ports.ReportRepository
    ports.DocumentRepository
    ports.NotificationRepository
    ports.AuditRepository
    ports.SettingRepository
    ports.AnalyticsRepository
    ports.JobRepository
    ports.LetterSource
}

var (
    _ Backend = (*pg.DB)(nil)
    _ Backend = (*memory.Store)(nil)
)

const pollInterval = 500 * time.Millisecond

type App struct {
    Config   config.Config
    Log      *zap.Logger
    Backend  Backend
    Services httpadapter.Services
    // Demo is set when running on the in-memory store.
    Demo bool

    closers []func()
}

// New connects to Postgres when DATABASE_URL is set and otherwise falls back
// to an in-memory store seeded with demo data.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
    if cfg.DatabaseURL == "" {
        if cfg.IsProduction() {
            return nil, config.ErrNoDatabaseURL
        }
        log.Warn("DATABASE_URL not set, running on in-memory demo data")
        a := Build(cfg, log, memory.New(), nil)
        a.Demo = true
        if err := a.SeedDemo(ctx); err != nil {
            return nil, fmt.Errorf("seed demo data: %w", err)
        }
        return a, nil
    }
    db, err := pg.Connect(ctx, cfg.DatabaseURL)
    if err != nil {
        return nil, fmt.Errorf("db connect: %w", err)
    }
    a := Build(cfg, log, db, db.Ping)
    a.closers = append(a.closers, db.Close)
    return a, nil
}

// Build assembles the services over an existing backend.
func Build(cfg config.Config, log *zap.Logger, b Backend, ping func(context.Context) error) *App {
    notifier := notifications.New(b)
    auditor := audit.New(b, log.Named("audit"))
    svc := httpadapter.Services{
        Auth: auth.New(b, b, auth.Options{
            Secret:     []byte(cfg.JWTSecret),
            AccessTTL:  cfg.AccessTokenTTL,
            RefreshTTL: cfg.RefreshTokenTTL,
        }),
        Clients:       clients.New(b, auditor),
        Disputes:      disputes.New(b, b, notifier, auditor, log.Named("disputes")),
        Letters:       letters.New(b, b, b, auditor),
        Payments:      payments.New(b, b, auditor),
        Reports:       reports.New(b, b, auditor),
        Documents:     documents.New(b, b, auditor),
        Analytics:     analytics.New(b),
        Notifications: notifier,
        Settings:      settings.New(b),
        Audit:         auditor,
        Jobs:          b,
        Processor:     letters.Generator{Source: b, Notifier: notifier, Log: log.Named("letters")},
        Ping:          ping,
    }
    return &App{Config: cfg, Log: log, Backend: b, Services: svc}
}

// Handler serves HTTP/1.1 and cleartext HTTP/2.
func (a *App) Handler() http.Handler {
    return h2c.NewHandler(httpadapter.New(a.Services, a.Log.Named("http")).Routes(), &http2.Server{})
}

// Run serves until ctx is cancelled, running the letter workers alongside.
func (a *App) Run(ctx context.Context) error {
    srv := &http.Server{
        Addr:              a.Config.ListenAddr,
        Handler:           a.Handler(),
        ReadHeaderTimeout: 10 * time.Second,
    }
    g, ctx := errgroup.WithContext(ctx)
    g.Go(func() error {
        a.Log.Info("listening", zap.String("addr", srv.Addr), zap.Bool("demo", a.Demo))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            return fmt.Errorf("server error: %w", err)
        }
        return nil
    })
    g.Go(func() error {
        <-ctx.Done()
        a.Log.Info("shutting down")
        sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
        defer cancel()
        return srv.Shutdown(sctx)
    })
    if n := a.Config.LetterWorkers; n > 0 {
        g.Go(func() error {
            letterrunner.Run(ctx, a.Backend, a.Services.Processor, a.Log.Named("letters"),
                letterrunner.Options{Concurrency: n, PollInterval: pollInterval})
            return nil
        })
    }
    return g.Wait()
}

func (a *App) Close() {
    for i := len(a.closers) - 1; i >= 0; i-- {
        a.closers[i]()
    }
}
