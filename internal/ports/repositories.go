package ports

import (
    "context"
    "time"

    "github.com/shopspring/decimal"

    "creditdesk/internal/domain"
)

// Every tenant-scoped method takes the owning user id first; implementations
// return domain.ErrNotFound for rows that exist under another tenant.

// UserRepository stores staff accounts.
type UserRepository interface {
    CreateUser(ctx context.Context, u domain.User) error
    GetUserByEmail(ctx context.Context, email string) (domain.User, error)
    GetUser(ctx context.Context, id string) (domain.User, error)
}

// TokenRepository stores hashed refresh tokens.
type TokenRepository interface {
    SaveRefreshToken(ctx context.Context, t domain.RefreshToken) error
    GetRefreshToken(ctx context.Context, tokenHash string) (domain.RefreshToken, error)
    RevokeRefreshToken(ctx context.Context, id string, at time.Time) error
}

// ClientRepository manages a tenant's clients.
type ClientRepository interface {
    ListClients(ctx context.Context, userID string, f domain.ClientFilter) ([]domain.Client, int, error)
    GetClient(ctx context.Context, userID, id string) (domain.Client, error)
    CreateClient(ctx context.Context, c domain.Client) error
    UpdateClient(ctx context.Context, c domain.Client) error
    DeleteClient(ctx context.Context, userID, id string) error
    SetCreditScore(ctx context.Context, clientID string, score int) error
}

// DisputeRepository manages disputes across a tenant's clients.
type DisputeRepository interface {
    CreateDispute(ctx context.Context, d domain.Dispute) error
    GetDispute(ctx context.Context, userID, id string) (domain.Dispute, error)
    ListDisputes(ctx context.Context, userID string, f domain.DisputeFilter) ([]domain.Dispute, error)
    UpdateDispute(ctx context.Context, d domain.Dispute) error
    ListOverdueDisputes(ctx context.Context, userID string, now time.Time) ([]domain.Dispute, error)
}

// LetterRepository stores generated letters. CreateLetter also queues the
// generation job.
type LetterRepository interface {
    CreateLetter(ctx context.Context, l domain.Letter) error
    GetLetter(ctx context.Context, userID, id string) (domain.Letter, error)
    ListLetters(ctx context.Context, userID, clientID string) ([]domain.Letter, error)
    MarkLetterSent(ctx context.Context, userID, id string, at time.Time) error
}

type PaymentRepository interface {
    CreatePayment(ctx context.Context, p domain.Payment) error
    GetPayment(ctx context.Context, userID, id string) (domain.Payment, error)
    ListPayments(ctx context.Context, userID, clientID string) ([]domain.Payment, error)
    SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error
}

type ReportRepository interface {
    CreateReport(ctx context.Context, r domain.CreditReport) error
    ListReports(ctx context.Context, userID, clientID string) ([]domain.CreditReport, error)
}

type DocumentRepository interface {
    CreateDocument(ctx context.Context, d domain.Document) error
    ListDocuments(ctx context.Context, userID, clientID string) ([]domain.Document, error)
    DeleteDocument(ctx context.Context, userID, id string) error
}

type NotificationRepository interface {
    CreateNotification(ctx context.Context, n domain.Notification) error
    ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
    MarkNotificationRead(ctx context.Context, userID, id string) error
}

type AuditRepository interface {
    CreateAuditLog(ctx context.Context, a domain.AuditLog) error
    ListAuditLogs(ctx context.Context, userID string, limit int) ([]domain.AuditLog, error)
}

type SettingRepository interface {
    ListSettings(ctx context.Context, userID string) ([]domain.Setting, error)
    PutSetting(ctx context.Context, userID string, s domain.Setting) error
}

// AnalyticsRepository answers the dashboard's aggregate queries.
type AnalyticsRepository interface {
    CountClientsByStatus(ctx context.Context, userID string) (map[domain.ClientStatus]int, error)
    CountDisputesByStatus(ctx context.Context, userID string) (map[domain.DisputeStatus]int, error)
    SumCompletedPayments(ctx context.Context, userID string) (decimal.Decimal, error)
    AverageCreditScore(ctx context.Context, userID string) (float64, error)
    CountOverdueDisputes(ctx context.Context, userID string, now time.Time) (int, error)
    CountLettersByStatus(ctx context.Context, userID string, status domain.LetterStatus) (int, error)
}
