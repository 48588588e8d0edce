package postgres

import (
    "context"
    "fmt"
    "strings"
    "time"

    "creditdesk/internal/domain"
)

const disputeColumns = `d.id, d.client_id, d.bureau, d.account_name, d.account_number, d.reason, d.status, d.priority,
    d.submitted_at, d.response_due_at, d.resolved_at, d.outcome, d.created_at, d.updated_at`

func scanDispute(row interface{ Scan(...any) error }) (domain.Dispute, error) {
    var d domain.Dispute
    err := row.Scan(&d.ID, &d.ClientID, &d.Bureau, &d.AccountName, &d.AccountNumber, &d.Reason, &d.Status, &d.Priority,
        &d.SubmittedAt, &d.ResponseDueAt, &d.ResolvedAt, &d.Outcome, &d.CreatedAt, &d.UpdatedAt)
    return d, notFound(err)
}

func (db *DB) CreateDispute(ctx context.Context, d domain.Dispute) error {
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO disputes (id, client_id, bureau, account_name, account_number, reason, status, priority, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, d.ID, d.ClientID, d.Bureau, d.AccountName, d.AccountNumber, d.Reason, d.Status, d.Priority, d.CreatedAt, d.UpdatedAt)
    if err != nil {
        return fmt.Errorf("create dispute: %w", err)
    }
    return nil
}

func (db *DB) GetDispute(ctx context.Context, userID, id string) (domain.Dispute, error) {
    return scanDispute(db.Pool.QueryRow(ctx, `
        SELECT `+disputeColumns+` FROM disputes d
        JOIN clients c ON c.id = d.client_id
        WHERE d.id = $1 AND c.user_id = $2
    `, id, userID))
}

func (db *DB) ListDisputes(ctx context.Context, userID string, f domain.DisputeFilter) ([]domain.Dispute, error) {
    var a args
    where := []string{"c.user_id = " + a.add(userID)}
    if f.ClientID != "" {
        where = append(where, "d.client_id = "+a.add(f.ClientID))
    }
    if f.Status != "" {
        where = append(where, "d.status = "+a.add(string(f.Status)))
    }
    if f.Bureau != "" {
        where = append(where, "d.bureau = "+a.add(string(f.Bureau)))
    }
    return db.queryDisputes(ctx, `
        SELECT `+disputeColumns+` FROM disputes d
        JOIN clients c ON c.id = d.client_id
        WHERE `+strings.Join(where, " AND ")+`
        ORDER BY d.created_at DESC`, a...)
}

func (db *DB) ListOverdueDisputes(ctx context.Context, userID string, now time.Time) ([]domain.Dispute, error) {
    return db.queryDisputes(ctx, `
        SELECT `+disputeColumns+` FROM disputes d
        JOIN clients c ON c.id = d.client_id
        WHERE c.user_id = $1 AND d.status IN ('submitted', 'in_progress') AND d.response_due_at < $2
        ORDER BY d.response_due_at`, userID, now)
}

func (db *DB) queryDisputes(ctx context.Context, q string, params ...any) ([]domain.Dispute, error) {
    rows, err := db.Pool.Query(ctx, q, params...)
    if err != nil {
        return nil, fmt.Errorf("list disputes: %w", err)
    }
    defer rows.Close()
    out := []domain.Dispute{}
    for rows.Next() {
        d, err := scanDispute(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

func (db *DB) UpdateDispute(ctx context.Context, d domain.Dispute) error {
    return affected(db.Pool.Exec(ctx, `
        UPDATE disputes SET status=$2, priority=$3, submitted_at=$4, response_due_at=$5, resolved_at=$6,
            outcome=$7, updated_at=$8
        WHERE id=$1
    `, d.ID, d.Status, d.Priority, d.SubmittedAt, d.ResponseDueAt, d.ResolvedAt, d.Outcome, d.UpdatedAt))
}
