package postgres

import (
    "context"
    "fmt"
    "strings"
    "time"

    "creditdesk/internal/domain"
)

const userColumns = `id, email, password_hash, first_name, last_name, company_name, role, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
    var u domain.User
    err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CompanyName, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
    return u, notFound(err)
}

// UserRepository
func (db *DB) CreateUser(ctx context.Context, u domain.User) error {
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, u.ID, strings.ToLower(u.Email), u.PasswordHash, u.FirstName, u.LastName, u.CompanyName, u.Role, u.Active, u.CreatedAt, u.UpdatedAt)
    if uniqueViolation(err) {
        return domain.Conflictf("email %s already registered", u.Email)
    }
    if err != nil {
        return fmt.Errorf("create user: %w", err)
    }
    return nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
    return scanUser(db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (db *DB) GetUser(ctx context.Context, id string) (domain.User, error) {
    return scanUser(db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// TokenRepository
func (db *DB) SaveRefreshToken(ctx context.Context, t domain.RefreshToken) error {
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
    return err
}

func (db *DB) GetRefreshToken(ctx context.Context, tokenHash string) (domain.RefreshToken, error) {
    var t domain.RefreshToken
    err := db.Pool.QueryRow(ctx, `
        SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
        FROM refresh_tokens WHERE token_hash = $1
    `, tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt)
    return t, notFound(err)
}

func (db *DB) RevokeRefreshToken(ctx context.Context, id string, at time.Time) error {
    return affected(db.Pool.Exec(ctx, `UPDATE refresh_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`, id, at))
}
