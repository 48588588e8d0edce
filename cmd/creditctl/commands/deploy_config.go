package commands

import (
    "fmt"
    "os"
    "path/filepath"

    "github.com/dustin/go-humanize"
    "github.com/spf13/cobra"

    "creditdesk/internal/config"
)

func deployConfigCmd(e *env) *cobra.Command {
    var (
        configure bool
        outPath   string
    )
    cmd := &cobra.Command{
        Use:   "deploy-config",
        Short: "Summarize deployment settings; --configure writes the deployment document",
        RunE: func(cmd *cobra.Command, args []string) error {
            dc := config.NewDeployConfig(e.cfg)
            out := cmd.OutOrStdout()
            fmt.Fprintf(out, "environment:    %s\n", dc.Environment)
            fmt.Fprintf(out, "listen address: %s\n", dc.ListenAddr)
            fmt.Fprintf(out, "letter workers: %d\n", dc.LetterWorkers)
            fmt.Fprintf(out, "database:       %s\n", orNone(dc.Database.DSN))
            fmt.Fprintf(out, "access tokens:  %s, refresh tokens: %s\n", dc.Tokens.AccessTTL, dc.Tokens.RefreshTTL)
            for _, v := range dc.Env {
                mark := "✓"
                if !v.Present {
                    mark = "✗"
                }
                fmt.Fprintf(out, "  %s %s\n", mark, v.Name)
            }
            if err := dc.Check(); err != nil {
                return err
            }
            if !configure {
                return nil
            }
            data, err := dc.YAML()
            if err != nil {
                return err
            }
            if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
                return err
            }
            if err := os.WriteFile(outPath, data, 0o644); err != nil {
                return fmt.Errorf("write %s: %w", outPath, err)
            }
            fmt.Fprintf(out, "wrote %s (%s)\n", outPath, humanize.Bytes(uint64(len(data))))
            return nil
        },
    }
    cmd.Flags().BoolVar(&configure, "configure", false, "write the deployment document")
    cmd.Flags().StringVar(&outPath, "out", "deploy/creditdesk.yaml", "where --configure writes")
    return cmd
}

func orNone(s string) string {
    if s == "" {
        return "(not set)"
    }
    return s
}
