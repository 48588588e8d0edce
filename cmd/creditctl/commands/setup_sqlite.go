package commands

import (
    "fmt"
    "os"
    "path/filepath"

    "github.com/dustin/go-humanize"
    "github.com/spf13/cobra"
    "go.uber.org/zap"

    "creditdesk/internal/schema"
)

func setupSQLiteCmd(e *env) *cobra.Command {
    var (
        path   string
        noSeed bool
    )
    cmd := &cobra.Command{
        Use:   "setup-sqlite",
        Short: "Create a local SQLite database with the full schema",
        RunE: func(cmd *cobra.Command, args []string) error {
            if path == "" {
                path = e.cfg.SQLitePath
            }
            ctx := cmd.Context()
            out := cmd.OutOrStdout()
            if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
                return fmt.Errorf("create data dir: %w", err)
            }
            db, err := schema.Open(schema.SQLite, path)
            if err != nil {
                return err
            }
            defer db.Close()

            applied, err := schema.Migrate(ctx, db, schema.SQLite)
            if err != nil {
                return err
            }
            e.log.Info("sqlite migrated", zap.String("path", path), zap.Int("applied", len(applied)))
            if !noSeed {
                res, err := schema.Seed(ctx, db, schema.SQLite)
                if err != nil {
                    return err
                }
                printSeed(cmd, res)
            }
            if err := schema.Verify(ctx, db, schema.SQLite); err != nil {
                return err
            }
            tables, err := schema.Tables(ctx, db, schema.SQLite)
            if err != nil {
                return err
            }
            for _, t := range tables {
                fmt.Fprintf(out, "  ✓ %s\n", t)
            }
            info, err := os.Stat(path)
            if err != nil {
                return err
            }
            fmt.Fprintf(out, "sqlite database ready at %s (%s, %d tables)\n", path, humanize.Bytes(uint64(info.Size())), len(tables))
            return nil
        },
    }
    cmd.Flags().StringVar(&path, "path", "", "database file (default SQLITE_PATH)")
    cmd.Flags().BoolVar(&noSeed, "no-seed", false, "skip demo data")
    return cmd
}
