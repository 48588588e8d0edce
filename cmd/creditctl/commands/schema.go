package commands

import (
    "errors"
    "fmt"
    "sort"
    "strings"

    "github.com/dustin/go-humanize"
    "github.com/spf13/cobra"
    "go.uber.org/zap"

    "creditdesk/internal/schema"
)

func migrateCmd(e *env) *cobra.Command {
    var f dbFlags
    cmd := &cobra.Command{
        Use:   "migrate",
        Short: "Apply pending schema migrations",
        RunE: func(cmd *cobra.Command, args []string) error {
            db, d, err := f.open(e)
            if err != nil {
                return err
            }
            defer db.Close()
            applied, err := schema.Migrate(cmd.Context(), db, d)
            if err != nil {
                return err
            }
            version, err := schema.Version(cmd.Context(), db, d)
            if err != nil {
                return err
            }
            e.log.Info("migrations applied", zap.Int64s("versions", applied), zap.Int64("version", version))
            fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s), schema at version %d\n", len(applied), version)
            return nil
        },
    }
    f.register(cmd)
    return cmd
}

func seedCmd(e *env) *cobra.Command {
    var f dbFlags
    cmd := &cobra.Command{
        Use:   "seed",
        Short: "Insert the demo account and sample clients",
        RunE: func(cmd *cobra.Command, args []string) error {
            db, d, err := f.open(e)
            if err != nil {
                return err
            }
            defer db.Close()
            res, err := schema.Seed(cmd.Context(), db, d)
            if err != nil {
                return err
            }
            printSeed(cmd, res)
            return nil
        },
    }
    f.register(cmd)
    return cmd
}

func resetCmd(e *env) *cobra.Command {
    var (
        f      dbFlags
        force  bool
        reseed bool
    )
    cmd := &cobra.Command{
        Use:   "reset",
        Short: "Drop every table and recreate the schema",
        Long:  "Drops all creditdesk tables and the migration history, then migrates from scratch. Destroys all data; requires --force.",
        RunE: func(cmd *cobra.Command, args []string) error {
            if !force {
                return errors.New("refusing to reset without --force")
            }
            db, d, err := f.open(e)
            if err != nil {
                return err
            }
            defer db.Close()
            ctx := cmd.Context()
            dropped, err := schema.Reset(ctx, db, d)
            if err != nil {
                return err
            }
            e.log.Warn("tables dropped", zap.Strings("tables", dropped))
            applied, err := schema.Migrate(ctx, db, d)
            if err != nil {
                return err
            }
            fmt.Fprintf(cmd.OutOrStdout(), "dropped %d table(s), applied %d migration(s)\n", len(dropped), len(applied))
            if reseed {
                res, err := schema.Seed(ctx, db, d)
                if err != nil {
                    return err
                }
                printSeed(cmd, res)
            }
            return nil
        },
    }
    f.register(cmd)
    cmd.Flags().BoolVar(&force, "force", false, "confirm that all data will be destroyed")
    cmd.Flags().BoolVar(&reseed, "reseed", false, "load demo data after recreating the schema")
    return cmd
}

func printSeed(cmd *cobra.Command, res schema.SeedResult) {
    out := cmd.OutOrStdout()
    if res.Skipped {
        fmt.Fprintf(out, "demo account %s already present, nothing seeded\n", schema.DemoEmail)
        return
    }
    tables := make([]string, 0, len(res.Rows))
    total := 0
    for t, n := range res.Rows {
        tables = append(tables, t)
        total += n
    }
    sort.Strings(tables)
    parts := make([]string, len(tables))
    for i, t := range tables {
        parts[i] = fmt.Sprintf("%s=%d", t, res.Rows[t])
    }
    fmt.Fprintf(out, "seeded %s row(s): %s\n", humanize.Comma(int64(total)), strings.Join(parts, " "))
    fmt.Fprintf(out, "login: %s / %s\n", schema.DemoEmail, schema.DemoPassword)
}
