package postgres

import (
    "context"
    "errors"
    "strconv"
    "strings"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgconn"
    "github.com/jackc/pgx/v5/pgxpool"

    "creditdesk/internal/domain"
)

type DB struct {
    Pool *pgxpool.Pool
}

func Connect(ctx context.Context, url string) (*DB, error) {
    cfg, err := pgxpool.ParseConfig(url)
    if err != nil {
        return nil, err
    }
    cfg.MaxConns = 10
    cfg.HealthCheckPeriod = 30 * time.Second
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil {
        return nil, err
    }
    if err := pool.Ping(ctx); err != nil {
        pool.Close()
        return nil, err
    }
    return &DB{Pool: pool}, nil
}

func (db *DB) Close() { db.Pool.Close() }

func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

// notFound maps pgx's empty result to the domain sentinel.
func notFound(err error) error {
    if errors.Is(err, pgx.ErrNoRows) {
        return domain.ErrNotFound
    }
    return err
}

// affected returns ErrNotFound when an update or delete matched nothing.
func affected(tag pgconn.CommandTag, err error) error {
    if err != nil {
        return err
    }
    if tag.RowsAffected() == 0 {
        return domain.ErrNotFound
    }
    return nil
}

// uniqueViolation reports a unique constraint failure (SQLSTATE 23505).
func uniqueViolation(err error) bool {
    var pgErr *pgconn.PgError
    return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// likePattern wraps s for a substring ILIKE, escaping wildcards.
func likePattern(s string) string {
    r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
    return "%" + r.Replace(s) + "%"
}

// args accumulates positional parameters for dynamically built queries.
type args []any

func (a *args) add(v any) string {
    *a = append(*a, v)
    return "$" + strconv.Itoa(len(*a))
}
