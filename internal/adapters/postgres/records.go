package postgres

import (
    "context"
    "fmt"

    "creditdesk/internal/domain"
)

// ReportRepository
func (db *DB) CreateReport(ctx context.Context, r domain.CreditReport) error {
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO credit_reports (id, client_id, bureau, score, report_date, summary, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, r.ID, r.ClientID, r.Bureau, r.Score, r.ReportDate, r.Summary, r.CreatedAt)
    if err != nil {
        return fmt.Errorf("create credit report: %w", err)
    }
    return nil
}

func (db *DB) ListReports(ctx context.Context, userID, clientID string) ([]domain.CreditReport, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT r.id, r.client_id, r.bureau, r.score, r.report_date, r.summary, r.created_at
        FROM credit_reports r
        JOIN clients c ON c.id = r.client_id
        WHERE c.user_id = $1 AND r.client_id = $2
        ORDER BY r.report_date DESC, r.created_at DESC
    `, userID, clientID)
    if err != nil {
        return nil, fmt.Errorf("list credit reports: %w", err)
    }
    defer rows.Close()
    out := []domain.CreditReport{}
    for rows.Next() {
        var r domain.CreditReport
        if err := rows.Scan(&r.ID, &r.ClientID, &r.Bureau, &r.Score, &r.ReportDate, &r.Summary, &r.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, r)
    }
    return out, rows.Err()
}

// DocumentRepository
func (db *DB) CreateDocument(ctx context.Context, d domain.Document) error {
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO documents (id, client_id, file_name, file_type, file_size, storage_path, category, uploaded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, d.ID, d.ClientID, d.FileName, d.FileType, d.FileSize, d.StoragePath, d.Category, d.UploadedAt)
    if err != nil {
        return fmt.Errorf("create document: %w", err)
    }
    return nil
}

func (db *DB) ListDocuments(ctx context.Context, userID, clientID string) ([]domain.Document, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT d.id, d.client_id, d.file_name, d.file_type, d.file_size, d.storage_path, d.category, d.uploaded_at
        FROM documents d
        JOIN clients c ON c.id = d.client_id
        WHERE c.user_id = $1 AND d.client_id = $2
        ORDER BY d.uploaded_at DESC
    `, userID, clientID)
    if err != nil {
        return nil, fmt.Errorf("list documents: %w", err)
    }
    defer rows.Close()
    out := []domain.Document{}
    for rows.Next() {
        var d domain.Document
        if err := rows.Scan(&d.ID, &d.ClientID, &d.FileName, &d.FileType, &d.FileSize, &d.StoragePath, &d.Category, &d.UploadedAt); err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

func (db *DB) DeleteDocument(ctx context.Context, userID, id string) error {
    return affected(db.Pool.Exec(ctx, `
        DELETE FROM documents WHERE id=$1 AND client_id IN (SELECT id FROM clients WHERE user_id=$2)
    `, id, userID))
}
