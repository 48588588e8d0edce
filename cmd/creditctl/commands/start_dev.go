package commands

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "os/signal"
    "syscall"
    "time"

    "github.com/sethvargo/go-retry"
    "github.com/spf13/cobra"
    "go.uber.org/zap"

    "creditdesk/internal/app"
    "creditdesk/internal/config"
    "creditdesk/internal/schema"
)

const devWorkers = 2

func startDevCmd(e *env) *cobra.Command {
    var (
        skipSeed bool
        tries    uint64
    )
    cmd := &cobra.Command{
        Use:   "start-dev",
        Short: "Prepare the database and run the API with letter workers",
        Long:  "Waits for Postgres, applies migrations, loads demo data and serves until interrupted. Without DATABASE_URL the server runs on in-memory demo data.",
        RunE: func(cmd *cobra.Command, args []string) error {
            if errors.Is(e.cfgErr, config.ErrNoJWTSecret) {
                return config.ErrNoJWTSecret
            }
            ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
            defer stop()

            cfg := e.cfg
            if cfg.LetterWorkers == 0 {
                cfg.LetterWorkers = devWorkers
            }
            if cfg.DatabaseURL != "" {
                if err := prepareDatabase(ctx, e, cfg.DatabaseURL, tries, !skipSeed); err != nil {
                    return err
                }
            }
            a, err := app.New(ctx, cfg, e.log)
            if err != nil {
                return err
            }
            defer a.Close()
            fmt.Fprintf(cmd.OutOrStdout(), "creditdesk dev server on %s (login %s / %s)\n", cfg.ListenAddr, schema.DemoEmail, schema.DemoPassword)
            return a.Run(ctx)
        },
    }
    cmd.Flags().BoolVar(&skipSeed, "no-seed", false, "skip demo data")
    cmd.Flags().Uint64Var(&tries, "db-retries", 10, "connection attempts before giving up")
    return cmd
}

// prepareDatabase waits for Postgres to accept connections, then migrates and
// optionally seeds it.
func prepareDatabase(ctx context.Context, e *env, dsn string, tries uint64, seed bool) error {
    db, err := schema.Open(schema.Postgres, dsn)
    if err != nil {
        return err
    }
    defer db.Close()

    start := time.Now()
    if err := waitForDB(ctx, db, tries, e.log); err != nil {
        return fmt.Errorf("database not reachable: %w", err)
    }
    e.log.Info("database ready", zap.Duration("waited", time.Since(start).Round(time.Millisecond)))

    applied, err := schema.Migrate(ctx, db, schema.Postgres)
    if err != nil {
        return err
    }
    e.log.Info("migrations applied", zap.Int("count", len(applied)))
    if !seed {
        return nil
    }
    res, err := schema.Seed(ctx, db, schema.Postgres)
    if err != nil {
        return err
    }
    e.log.Info("seed finished", zap.Bool("skipped", res.Skipped), zap.Any("rows", res.Rows))
    return nil
}

func waitForDB(ctx context.Context, db *sql.DB, tries uint64, log *zap.Logger) error {
    if tries == 0 {
        tries = 1
    }
    b := retry.NewExponential(250 * time.Millisecond)
    b = retry.WithCappedDuration(5*time.Second, b)
    b = retry.WithMaxRetries(tries-1, b)
    attempt := 0
    return retry.Do(ctx, b, func(ctx context.Context) error {
        attempt++
        pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
        defer cancel()
        if err := db.PingContext(pctx); err != nil {
            log.Info("waiting for database", zap.Int("attempt", attempt), zap.Error(err))
            return retry.RetryableError(err)
        }
        return nil
    })
}
