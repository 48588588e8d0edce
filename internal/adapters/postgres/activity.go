package postgres

import (
    "context"
    "fmt"

    "creditdesk/internal/domain"
)

// NotificationRepository
func (db *DB) CreateNotification(ctx context.Context, n domain.Notification) error {
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO notifications (id, user_id, title, message, kind, is_read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, n.ID, n.UserID, n.Title, n.Message, n.Kind, n.Read, n.CreatedAt)
    return err
}

func (db *DB) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT id, user_id, title, message, kind, is_read, created_at
        FROM notifications
        WHERE user_id = $1 AND (NOT $2 OR NOT is_read)
        ORDER BY created_at DESC
        LIMIT 200
    `, userID, unreadOnly)
    if err != nil {
        return nil, fmt.Errorf("list notifications: %w", err)
    }
    defer rows.Close()
    out := []domain.Notification{}
    for rows.Next() {
        var n domain.Notification
        if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Kind, &n.Read, &n.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, n)
    }
    return out, rows.Err()
}

func (db *DB) MarkNotificationRead(ctx context.Context, userID, id string) error {
    return affected(db.Pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id=$1 AND user_id=$2`, id, userID))
}

// AuditRepository
func (db *DB) CreateAuditLog(ctx context.Context, a domain.AuditLog) error {
    var userID any
    if a.UserID != "" {
        userID = a.UserID
    }
    details := a.Details
    if details == "" {
        details = "{}"
    }
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, details, created_at)
        VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
    `, a.ID, userID, a.Action, a.EntityType, a.EntityID, details, a.CreatedAt)
    return err
}

func (db *DB) ListAuditLogs(ctx context.Context, userID string, limit int) ([]domain.AuditLog, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT id, COALESCE(user_id::text, ''), action, entity_type, entity_id, details::text, created_at
        FROM audit_logs
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, userID, limit)
    if err != nil {
        return nil, fmt.Errorf("list audit logs: %w", err)
    }
    defer rows.Close()
    out := []domain.AuditLog{}
    for rows.Next() {
        var a domain.AuditLog
        if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.EntityType, &a.EntityID, &a.Details, &a.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, a)
    }
    return out, rows.Err()
}

// SettingRepository
func (db *DB) ListSettings(ctx context.Context, userID string) ([]domain.Setting, error) {
    rows, err := db.Pool.Query(ctx, `SELECT key, value, updated_at FROM settings WHERE user_id = $1 ORDER BY key`, userID)
    if err != nil {
        return nil, fmt.Errorf("list settings: %w", err)
    }
    defer rows.Close()
    out := []domain.Setting{}
    for rows.Next() {
        var s domain.Setting
        if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    return out, rows.Err()
}

func (db *DB) PutSetting(ctx context.Context, userID string, s domain.Setting) error {
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO settings (user_id, key, value, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
    `, userID, s.Key, s.Value, s.UpdatedAt)
    return err
}
