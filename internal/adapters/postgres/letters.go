package postgres

import (
    "context"
    "fmt"
    "time"

    "github.com/google/uuid"
    "github.com/jackc/pgx/v5"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

const letterColumns = `l.id, l.client_id, l.dispute_id, l.template, l.bureau, l.subject, l.content, l.status, l.error, l.created_at, l.sent_at`

func scanLetter(row interface{ Scan(...any) error }) (domain.Letter, error) {
    var l domain.Letter
    err := row.Scan(&l.ID, &l.ClientID, &l.DisputeID, &l.Template, &l.Bureau, &l.Subject, &l.Content, &l.Status, &l.Error, &l.CreatedAt, &l.SentAt)
    return l, notFound(err)
}

// CreateLetter inserts the letter and its generation job atomically.
func (db *DB) CreateLetter(ctx context.Context, l domain.Letter) (err error) {
    tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
    if err != nil { return err }
    defer func() {
        if err != nil { _ = tx.Rollback(ctx) } else { err = tx.Commit(ctx) }
    }()
    if _, err = tx.Exec(ctx, `
        INSERT INTO letters (id, client_id, dispute_id, template, bureau, subject, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, l.ID, l.ClientID, l.DisputeID, l.Template, l.Bureau, l.Subject, l.Status, l.CreatedAt); err != nil {
        return fmt.Errorf("create letter: %w", err)
    }
    // create job row
    if _, err = tx.Exec(ctx, `INSERT INTO letter_jobs (id, letter_id) VALUES ($1, $2)`, uuid.NewString(), l.ID); err != nil {
        return fmt.Errorf("queue letter job: %w", err)
    }
    return nil
}

func (db *DB) GetLetter(ctx context.Context, userID, id string) (domain.Letter, error) {
    return scanLetter(db.Pool.QueryRow(ctx, `
        SELECT `+letterColumns+` FROM letters l
        JOIN clients c ON c.id = l.client_id
        WHERE l.id = $1 AND c.user_id = $2
    `, id, userID))
}

func (db *DB) ListLetters(ctx context.Context, userID, clientID string) ([]domain.Letter, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT `+letterColumns+` FROM letters l
        JOIN clients c ON c.id = l.client_id
        WHERE c.user_id = $1 AND l.client_id = $2
        ORDER BY l.created_at DESC
    `, userID, clientID)
    if err != nil {
        return nil, fmt.Errorf("list letters: %w", err)
    }
    defer rows.Close()
    out := []domain.Letter{}
    for rows.Next() {
        l, err := scanLetter(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, l)
    }
    return out, rows.Err()
}

func (db *DB) MarkLetterSent(ctx context.Context, userID, id string, at time.Time) error {
    return affected(db.Pool.Exec(ctx, `
        UPDATE letters SET status='sent', sent_at=$3
        WHERE id=$1 AND status='ready' AND client_id IN (SELECT id FROM clients WHERE user_id=$2)
    `, id, userID, at))
}

// LetterSource
func (db *DB) LoadLetterForRender(ctx context.Context, letterID string) (ports.LetterRender, error) {
    var out ports.LetterRender
    l, err := scanLetter(db.Pool.QueryRow(ctx, `SELECT `+letterColumns+` FROM letters l WHERE l.id = $1`, letterID))
    if err != nil {
        return out, err
    }
    out.Letter = l
    if out.Client, err = scanClient(db.Pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, l.ClientID)); err != nil {
        return out, fmt.Errorf("letter client: %w", err)
    }
    if out.Sender, err = scanUser(db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, out.Client.UserID)); err != nil {
        return out, fmt.Errorf("letter sender: %w", err)
    }
    if l.DisputeID != nil {
        d, err := scanDispute(db.Pool.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes d WHERE d.id = $1`, *l.DisputeID))
        if err != nil {
            return out, fmt.Errorf("letter dispute: %w", err)
        }
        out.Dispute = &d
    }
    return out, nil
}

func (db *DB) SaveLetterContent(ctx context.Context, letterID, content string) error {
    return affected(db.Pool.Exec(ctx, `UPDATE letters SET content=$2 WHERE id=$1`, letterID, content))
}
