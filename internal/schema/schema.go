// Package schema owns the database layout: embedded goose migrations for the
// Postgres and SQLite variants, plus the reset, seed and verification steps the
// operational CLI runs.
package schema

import (
    "context"
    "database/sql"
    "embed"
    "fmt"
    "io/fs"
    "strings"

    _ "github.com/jackc/pgx/v5/stdlib"
    "github.com/pressly/goose/v3"
    "github.com/pressly/goose/v3/database"
    _ "modernc.org/sqlite"
)

//go:embed migrations
var migrations embed.FS

type Dialect string

const (
    Postgres Dialect = "postgres"
    SQLite   Dialect = "sqlite"
)

func ParseDialect(s string) (Dialect, error) {
    switch strings.ToLower(s) {
    case "postgres", "postgresql", "pg":
        return Postgres, nil
    case "sqlite", "sqlite3":
        return SQLite, nil
    }
    return "", fmt.Errorf("unknown dialect %q", s)
}

// DropOrder lists every application table, children before parents.
var DropOrder = []string{
    "refresh_tokens",
    "settings",
    "audit_logs",
    "notifications",
    "payments",
    "letter_jobs",
    "letters",
    "documents",
    "disputes",
    "credit_reports",
    "clients",
    "users",
}

const versionTable = "goose_db_version"

// Open returns a database/sql handle for the dialect. SQLite connections have
// foreign keys enforced.
func Open(d Dialect, dsn string) (*sql.DB, error) {
    switch d {
    case Postgres:
        return sql.Open("pgx", dsn)
    case SQLite:
        sep := "?"
        if strings.Contains(dsn, "?") {
            sep = "&"
        }
        return sql.Open("sqlite", dsn+sep+"_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
    }
    return nil, fmt.Errorf("unknown dialect %q", d)
}

func provider(d Dialect, db *sql.DB) (*goose.Provider, error) {
    var gd database.Dialect
    switch d {
    case Postgres:
        gd = database.DialectPostgres
    case SQLite:
        gd = database.DialectSQLite3
    default:
        return nil, fmt.Errorf("unknown dialect %q", d)
    }
    sub, err := fs.Sub(migrations, "migrations/"+string(d))
    if err != nil {
        return nil, err
    }
    return goose.NewProvider(gd, db, sub)
}

// Migrate applies pending migrations and returns the versions applied.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) ([]int64, error) {
    p, err := provider(d, db)
    if err != nil {
        return nil, fmt.Errorf("migration provider: %w", err)
    }
    results, err := p.Up(ctx)
    if err != nil {
        return nil, fmt.Errorf("migrate up: %w", err)
    }
    applied := make([]int64, 0, len(results))
    for _, r := range results {
        applied = append(applied, r.Source.Version)
    }
    return applied, nil
}

// Version reports the current schema version, 0 for an empty database.
func Version(ctx context.Context, db *sql.DB, d Dialect) (int64, error) {
    p, err := provider(d, db)
    if err != nil {
        return 0, err
    }
    return p.GetDBVersion(ctx)
}

// Reset drops every application table and the migration bookkeeping table.
func Reset(ctx context.Context, db *sql.DB, d Dialect) ([]string, error) {
    suffix := ""
    if d == Postgres {
        suffix = " CASCADE"
    }
    var dropped []string
    for _, t := range append(append([]string{}, DropOrder...), versionTable) {
        if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+t+suffix); err != nil {
            return dropped, fmt.Errorf("drop %s: %w", t, err)
        }
        dropped = append(dropped, t)
    }
    return dropped, nil
}

// Tables lists the user tables present in the database.
func Tables(ctx context.Context, db *sql.DB, d Dialect) ([]string, error) {
    var q string
    switch d {
    case Postgres:
        q = `SELECT table_name FROM information_schema.tables
             WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
             ORDER BY table_name`
    case SQLite:
        q = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
    default:
        return nil, fmt.Errorf("unknown dialect %q", d)
    }
    rows, err := db.QueryContext(ctx, q)
    if err != nil {
        return nil, fmt.Errorf("list tables: %w", err)
    }
    defer rows.Close()
    var out []string
    for rows.Next() {
        var name string
        if err := rows.Scan(&name); err != nil {
            return nil, err
        }
        out = append(out, name)
    }
    return out, rows.Err()
}

// Verify fails when any application table is missing.
func Verify(ctx context.Context, db *sql.DB, d Dialect) error {
    have, err := Tables(ctx, db, d)
    if err != nil {
        return err
    }
    present := make(map[string]bool, len(have))
    for _, t := range have {
        present[t] = true
    }
    var missing []string
    for _, t := range DropOrder {
        if !present[t] {
            missing = append(missing, t)
        }
    }
    if len(missing) > 0 {
        return fmt.Errorf("missing tables: %s", strings.Join(missing, ", "))
    }
    return nil
}
