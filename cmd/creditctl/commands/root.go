package commands

import (
    "database/sql"
    "fmt"
    "os"

    "github.com/spf13/cobra"
    "go.uber.org/zap"

    "creditdesk/internal/config"
    "creditdesk/internal/logging"
    "creditdesk/internal/schema"
)

// Version is stamped at build time with -ldflags "-X creditdesk/cmd/creditctl/commands.Version=...".
var Version = "dev"

// env is the state shared by every subcommand once the root pre-run has
// loaded configuration.
type env struct {
    envFile  string
    logLevel string

    cfg    config.Config
    // cfgErr holds the unset-variable errors Load tolerated.
    cfgErr error
    log    *zap.Logger
}

func Execute() error {
    root := newRoot()
    if err := root.Execute(); err != nil {
        fmt.Fprintln(os.Stderr, "error:", err)
        return err
    }
    return nil
}

func newRoot() *cobra.Command {
    e := &env{}
    root := &cobra.Command{
        Use:           "creditctl",
        Short:         "Operational tooling for creditdesk: schema, seed data, deployment config",
        SilenceUsage:  true,
        SilenceErrors: true,
        PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
            cfg, err := config.Load(e.envFile)
            if !config.OnlyMissing(err) {
                return err
            }
            e.cfgErr = err
            if e.logLevel != "" {
                cfg.LogLevel = e.logLevel
            }
            e.cfg = cfg
            e.log, err = logging.New(cfg.Env, cfg.LogLevel)
            return err
        },
        PersistentPostRun: func(cmd *cobra.Command, args []string) {
            if e.log != nil {
                _ = e.log.Sync()
            }
        },
    }
    root.PersistentFlags().StringVar(&e.envFile, "env-file", ".env", "dotenv file loaded before the environment")
    root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "override LOG_LEVEL")

    root.AddCommand(
        migrateCmd(e),
        seedCmd(e),
        resetCmd(e),
        setupSQLiteCmd(e),
        deployConfigCmd(e),
        startDevCmd(e),
        versionCmd(),
    )
    return root
}

// dbFlags are the connection flags shared by migrate, seed and reset.
type dbFlags struct {
    dialect string
    dsn     string
}

func (f *dbFlags) register(cmd *cobra.Command) {
    cmd.Flags().StringVar(&f.dialect, "dialect", "postgres", "database dialect: postgres or sqlite")
    cmd.Flags().StringVar(&f.dsn, "dsn", "", "connection string (default DATABASE_URL, or SQLITE_PATH for sqlite)")
}

func (f *dbFlags) open(e *env) (*sql.DB, schema.Dialect, error) {
    d, err := schema.ParseDialect(f.dialect)
    if err != nil {
        return nil, "", err
    }
    dsn := f.dsn
    if dsn == "" {
        switch d {
        case schema.Postgres:
            dsn = e.cfg.DatabaseURL
        case schema.SQLite:
            dsn = e.cfg.SQLitePath
        }
    }
    if dsn == "" {
        return nil, "", fmt.Errorf("no %s connection string: set --dsn or DATABASE_URL", d)
    }
    db, err := schema.Open(d, dsn)
    if err != nil {
        return nil, "", err
    }
    e.log.Debug("database opened", zap.String("dialect", string(d)), zap.String("dsn", config.RedactDSN(dsn)))
    return db, d, nil
}

func versionCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "version",
        Short: "Print the creditctl version",
        RunE: func(cmd *cobra.Command, args []string) error {
            fmt.Fprintf(cmd.OutOrStdout(), "creditctl %s\n", Version)
            return nil
        },
    }
}
