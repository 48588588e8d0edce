package schema

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strconv"
    "strings"
    "time"

    "github.com/google/uuid"
    "golang.org/x/crypto/bcrypt"
)

const (
    DemoEmail    = "admin@creditdesk.local"
    DemoPassword = "ChangeMe123!"
)

// SeedResult counts inserted rows per table.
type SeedResult struct {
    Skipped bool
    Rows    map[string]int
}

type seedClient struct {
    first, last, email, phone, city, state, status string
    score                                          int
}

var demoClients = []seedClient{
    {"John", "Smith", "john.smith@email.com", "(555) 123-4567", "Austin", "TX", "active", 612},
    {"Sarah", "Johnson", "sarah.j@email.com", "(555) 987-6543", "Denver", "CO", "pending", 580},
    {"Michael", "Brown", "mbrown@email.com", "(555) 456-7890", "Tampa", "FL", "completed", 701},
    {"Emily", "Davis", "emily.davis@email.com", "(555) 321-0987", "Columbus", "OH", "active", 644},
    {"David", "Wilson", "dwilson@email.com", "(555) 654-3210", "Phoenix", "AZ", "inactive", 555},
}

var demoDisputes = []struct {
    client          int
    bureau, account string
    reason, status  string
}{
    {0, "experian", "Capital One", "Account not mine", "submitted"},
    {0, "equifax", "Midland Funding", "Incorrect balance reported", "in_progress"},
    {1, "transunion", "Chase Bank", "Late payment reported in error", "draft"},
    {2, "experian", "Portfolio Recovery", "Debt paid in full", "resolved"},
    {3, "equifax", "Synchrony Bank", "Duplicate account", "rejected"},
}

// Seed inserts a demo admin account and a small book of clients. It is a no-op
// when the demo account already exists.
func Seed(ctx context.Context, db *sql.DB, d Dialect) (SeedResult, error) {
    res := SeedResult{Rows: map[string]int{}}
    var existing string
    err := db.QueryRowContext(ctx, rebind(d, `SELECT id FROM users WHERE email = ?`), DemoEmail).Scan(&existing)
    if err == nil {
        res.Skipped = true
        return res, nil
    }
    if !errors.Is(err, sql.ErrNoRows) {
        return res, fmt.Errorf("check demo user: %w", err)
    }

    hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
    if err != nil {
        return res, err
    }

    tx, err := db.BeginTx(ctx, nil)
    if err != nil {
        return res, err
    }
    defer func() {
        if err != nil { _ = tx.Rollback() }
    }()

    exec := func(table, q string, args ...any) error {
        if _, err := tx.ExecContext(ctx, rebind(d, q), args...); err != nil {
            return fmt.Errorf("seed %s: %w", table, err)
        }
        res.Rows[table]++
        return nil
    }

    now := time.Now().UTC().Truncate(time.Second)
    userID := uuid.NewString()
    if err = exec("users", `INSERT INTO users (id, email, password_hash, first_name, last_name, company_name, role, is_active, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        userID, DemoEmail, string(hash), "Demo", "Admin", "CreditDesk Demo", "admin", true, now, now); err != nil {
        return res, err
    }

    clientIDs := make([]string, len(demoClients))
    for i, c := range demoClients {
        clientIDs[i] = uuid.NewString()
        if err = exec("clients", `INSERT INTO clients (id, user_id, first_name, last_name, email, phone, city, state, status, credit_score, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
            clientIDs[i], userID, c.first, c.last, c.email, c.phone, c.city, c.state, c.status, c.score, now, now); err != nil {
            return res, err
        }
        reportDate := now.AddDate(0, -1, 0)
        if err = exec("credit_reports", `INSERT INTO credit_reports (id, client_id, bureau, score, report_date, created_at)
            VALUES (?, ?, ?, ?, ?, ?)`,
            uuid.NewString(), clientIDs[i], "experian", c.score, reportDate, now); err != nil {
            return res, err
        }
        if err = exec("payments", `INSERT INTO payments (id, client_id, amount, currency, status, method, description, paid_at, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
            uuid.NewString(), clientIDs[i], "99.00", "USD", "completed", "card", "Monthly service fee", now, now); err != nil {
            return res, err
        }
    }

    for _, dd := range demoDisputes {
        var submitted, due, resolved any
        if dd.status != "draft" {
            s := now.AddDate(0, 0, -35)
            submitted, due = s, s.AddDate(0, 0, 30)
        }
        if dd.status == "resolved" || dd.status == "rejected" {
            resolved = now.AddDate(0, 0, -3)
        }
        if err = exec("disputes", `INSERT INTO disputes (id, client_id, bureau, account_name, reason, status, priority, submitted_at, response_due_at, resolved_at, created_at, updated_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
            uuid.NewString(), clientIDs[dd.client], dd.bureau, dd.account, dd.reason, dd.status, "medium", submitted, due, resolved, now, now); err != nil {
            return res, err
        }
    }

    if err = exec("settings", `INSERT INTO settings (user_id, key, value, updated_at) VALUES (?, ?, ?, ?)`,
        userID, "company.timezone", "America/Chicago", now); err != nil {
        return res, err
    }
    if err = exec("notifications", `INSERT INTO notifications (id, user_id, title, message, kind, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
        uuid.NewString(), userID, "Welcome", "Demo data has been loaded.", "info", now); err != nil {
        return res, err
    }

    if err = tx.Commit(); err != nil {
        return res, err
    }
    return res, nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func rebind(d Dialect, q string) string {
    if d != Postgres {
        return q
    }
    var b strings.Builder
    n := 0
    for _, r := range q {
        if r == '?' {
            n++
            b.WriteByte('$')
            b.WriteString(strconv.Itoa(n))
            continue
        }
        b.WriteRune(r)
    }
    return b.String()
}

type DemoClient struct {
    FirstName, LastName, Email, Phone, City, State, Status string
    Score                                                  int
}

type DemoDispute struct {
    Client                          int
    Bureau, Account, Reason, Status string
}

// DemoBook returns the clients and disputes Seed writes so the in-memory
// demo mode shows the same data.
func DemoBook() ([]DemoClient, []DemoDispute) {
    clients := make([]DemoClient, len(demoClients))
    for i, c := range demoClients {
        clients[i] = DemoClient{c.first, c.last, c.email, c.phone, c.city, c.state, c.status, c.score}
    }
    disputes := make([]DemoDispute, len(demoDisputes))
    for i, d := range demoDisputes {
        disputes[i] = DemoDispute{d.client, d.bureau, d.account, d.reason, d.status}
    }
    return clients, disputes
}
