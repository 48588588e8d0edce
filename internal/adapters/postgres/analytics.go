package postgres

import (
    "context"
    "time"

    "github.com/shopspring/decimal"

    "creditdesk/internal/domain"
)

func (db *DB) CountClientsByStatus(ctx context.Context, userID string) (map[domain.ClientStatus]int, error) {
    rows, err := db.Pool.Query(ctx, `SELECT status, COUNT(*) FROM clients WHERE user_id = $1 GROUP BY status`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := map[domain.ClientStatus]int{}
    for rows.Next() {
        var s domain.ClientStatus
        var n int
        if err := rows.Scan(&s, &n); err != nil {
            return nil, err
        }
        out[s] = n
    }
    return out, rows.Err()
}

func (db *DB) CountDisputesByStatus(ctx context.Context, userID string) (map[domain.DisputeStatus]int, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT d.status, COUNT(*) FROM disputes d
        JOIN clients c ON c.id = d.client_id
        WHERE c.user_id = $1
        GROUP BY d.status
    `, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := map[domain.DisputeStatus]int{}
    for rows.Next() {
        var s domain.DisputeStatus
        var n int
        if err := rows.Scan(&s, &n); err != nil {
            return nil, err
        }
        out[s] = n
    }
    return out, rows.Err()
}

func (db *DB) SumCompletedPayments(ctx context.Context, userID string) (decimal.Decimal, error) {
    var sum string
    err := db.Pool.QueryRow(ctx, `
        SELECT COALESCE(SUM(p.amount), 0)::text FROM payments p
        JOIN clients c ON c.id = p.client_id
        WHERE c.user_id = $1 AND p.status = 'completed'
    `, userID).Scan(&sum)
    if err != nil {
        return decimal.Zero, err
    }
    return decimal.NewFromString(sum)
}

func (db *DB) AverageCreditScore(ctx context.Context, userID string) (float64, error) {
    var avg float64
    err := db.Pool.QueryRow(ctx, `
        SELECT COALESCE(AVG(credit_score), 0)::float8 FROM clients
        WHERE user_id = $1 AND credit_score IS NOT NULL
    `, userID).Scan(&avg)
    return avg, err
}

func (db *DB) CountOverdueDisputes(ctx context.Context, userID string, now time.Time) (int, error) {
    var n int
    err := db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM disputes d
        JOIN clients c ON c.id = d.client_id
        WHERE c.user_id = $1 AND d.status IN ('submitted', 'in_progress') AND d.response_due_at < $2
    `, userID, now).Scan(&n)
    return n, err
}

func (db *DB) CountLettersByStatus(ctx context.Context, userID string, status domain.LetterStatus) (int, error) {
    var n int
    err := db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM letters l
        JOIN clients c ON c.id = l.client_id
        WHERE c.user_id = $1 AND l.status = $2
    `, userID, status).Scan(&n)
    return n, err
}
