package postgres

import (
    "context"
    "fmt"
    "strings"

    "creditdesk/internal/domain"
)

const clientColumns = `id, user_id, first_name, last_name, email, phone, address, city, state, zip_code,
    date_of_birth, ssn_last4, status, credit_score, notes, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (domain.Client, error) {
    var c domain.Client
    err := row.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.City, &c.State, &c.ZipCode,
        &c.DateOfBirth, &c.SSNLast4, &c.Status, &c.CreditScore, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
    return c, notFound(err)
}

// ListClients applies the filter in SQL: ILIKE substring search and status
// equality, newest first.
func (db *DB) ListClients(ctx context.Context, userID string, f domain.ClientFilter) ([]domain.Client, int, error) {
    f = f.Normalize()
    var a args
    where := []string{"user_id = " + a.add(userID)}
    if f.Status != "" {
        where = append(where, "status = "+a.add(string(f.Status)))
    }
    if f.Search != "" {
        p := a.add(likePattern(f.Search))
        where = append(where, "(first_name ILIKE "+p+" OR last_name ILIKE "+p+
            " OR (first_name || ' ' || last_name) ILIKE "+p+" OR email ILIKE "+p+" OR phone ILIKE "+p+")")
    }
    cond := strings.Join(where, " AND ")

    var total int
    if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients WHERE `+cond, a...).Scan(&total); err != nil {
        return nil, 0, fmt.Errorf("count clients: %w", err)
    }

    limit := a.add(f.PageSize)
    offset := a.add(f.Offset())
    rows, err := db.Pool.Query(ctx, `SELECT `+clientColumns+` FROM clients WHERE `+cond+
        ` ORDER BY created_at DESC, id LIMIT `+limit+` OFFSET `+offset, a...)
    if err != nil {
        return nil, 0, fmt.Errorf("list clients: %w", err)
    }
    defer rows.Close()

    out := []domain.Client{}
    for rows.Next() {
        c, err := scanClient(rows)
        if err != nil {
            return nil, 0, fmt.Errorf("scan client: %w", err)
        }
        out = append(out, c)
    }
    return out, total, rows.Err()
}

func (db *DB) GetClient(ctx context.Context, userID, id string) (domain.Client, error) {
    return scanClient(db.Pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1 AND user_id = $2`, id, userID))
}

func (db *DB) CreateClient(ctx context.Context, c domain.Client) error {
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO clients (`+clientColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
    `, c.ID, c.UserID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.State, c.ZipCode,
        c.DateOfBirth, c.SSNLast4, c.Status, c.CreditScore, c.Notes, c.CreatedAt, c.UpdatedAt)
    if err != nil {
        return fmt.Errorf("create client: %w", err)
    }
    return nil
}

func (db *DB) UpdateClient(ctx context.Context, c domain.Client) error {
    return affected(db.Pool.Exec(ctx, `
        UPDATE clients SET first_name=$3, last_name=$4, email=$5, phone=$6, address=$7, city=$8, state=$9,
            zip_code=$10, date_of_birth=$11, ssn_last4=$12, status=$13, notes=$14, updated_at=$15
        WHERE id=$1 AND user_id=$2
    `, c.ID, c.UserID, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.City, c.State,
        c.ZipCode, c.DateOfBirth, c.SSNLast4, c.Status, c.Notes, c.UpdatedAt))
}

func (db *DB) DeleteClient(ctx context.Context, userID, id string) error {
    return affected(db.Pool.Exec(ctx, `DELETE FROM clients WHERE id=$1 AND user_id=$2`, id, userID))
}

func (db *DB) SetCreditScore(ctx context.Context, clientID string, score int) error {
    return affected(db.Pool.Exec(ctx, `UPDATE clients SET credit_score=$2, updated_at=now() WHERE id=$1`, clientID, score))
}
