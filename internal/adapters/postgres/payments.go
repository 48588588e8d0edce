package postgres

import (
    "context"
    "fmt"

    "github.com/shopspring/decimal"

    "creditdesk/internal/domain"
)

// amounts travel as text so NUMERIC keeps its exact scale.
const paymentColumns = `p.id, p.client_id, p.amount::text, p.currency, p.status, p.method, p.description, p.paid_at, p.created_at`

func scanPayment(row interface{ Scan(...any) error }) (domain.Payment, error) {
    var p domain.Payment
    var amount string
    if err := row.Scan(&p.ID, &p.ClientID, &amount, &p.Currency, &p.Status, &p.Method, &p.Description, &p.PaidAt, &p.CreatedAt); err != nil {
        return p, notFound(err)
    }
    d, err := decimal.NewFromString(amount)
    if err != nil {
        return p, fmt.Errorf("payment %s amount %q: %w", p.ID, amount, err)
    }
    p.Amount = d
    return p, nil
}

func (db *DB) CreatePayment(ctx context.Context, p domain.Payment) error {
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO payments (id, client_id, amount, currency, status, method, description, paid_at, created_at)
        VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9)
    `, p.ID, p.ClientID, p.Amount.String(), p.Currency, p.Status, p.Method, p.Description, p.PaidAt, p.CreatedAt)
    if err != nil {
        return fmt.Errorf("create payment: %w", err)
    }
    return nil
}

func (db *DB) GetPayment(ctx context.Context, userID, id string) (domain.Payment, error) {
    return scanPayment(db.Pool.QueryRow(ctx, `
        SELECT `+paymentColumns+` FROM payments p
        JOIN clients c ON c.id = p.client_id
        WHERE p.id = $1 AND c.user_id = $2
    `, id, userID))
}

func (db *DB) ListPayments(ctx context.Context, userID, clientID string) ([]domain.Payment, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT `+paymentColumns+` FROM payments p
        JOIN clients c ON c.id = p.client_id
        WHERE c.user_id = $1 AND p.client_id = $2
        ORDER BY p.created_at DESC
    `, userID, clientID)
    if err != nil {
        return nil, fmt.Errorf("list payments: %w", err)
    }
    defer rows.Close()
    out := []domain.Payment{}
    for rows.Next() {
        p, err := scanPayment(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

func (db *DB) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
    return affected(db.Pool.Exec(ctx, `UPDATE payments SET status=$2 WHERE id=$1`, id, status))
}
