package domain

import (
    "time"

    "github.com/shopspring/decimal"
)

// Core domain models shared by services and adapters. HTTP request/response
// shapes live with the handlers; keep these decoupled where helpful.

type Role string

const (
    RoleAdmin Role = "admin"
    RoleAgent Role = "agent"
)

// User is a staff account. Every client belongs to exactly one user, which is
// the tenant boundary for all reads and writes.
type User struct {
    ID           string    `json:"id"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    FirstName    string    `json:"firstName"`
    LastName     string    `json:"lastName"`
    CompanyName  string    `json:"companyName,omitempty"`
    Role         Role      `json:"role"`
    Active       bool      `json:"active"`
    CreatedAt    time.Time `json:"createdAt"`
    UpdatedAt    time.Time `json:"updatedAt"`
}

type Client struct {
    ID          string       `json:"id"`
    UserID      string       `json:"userId"`
    FirstName   string       `json:"firstName"`
    LastName    string       `json:"lastName"`
    Email       string       `json:"email,omitempty"`
    Phone       string       `json:"phone,omitempty"`
    Address     string       `json:"address,omitempty"`
    City        string       `json:"city,omitempty"`
    State       string       `json:"state,omitempty"`
    ZipCode     string       `json:"zipCode,omitempty"`
    DateOfBirth *time.Time   `json:"dateOfBirth,omitempty"`
    SSNLast4    string       `json:"ssnLast4,omitempty"`
    Status      ClientStatus `json:"status"`
    CreditScore *int         `json:"creditScore,omitempty"`
    Notes       string       `json:"notes,omitempty"`
    CreatedAt   time.Time    `json:"createdAt"`
    UpdatedAt   time.Time    `json:"updatedAt"`
}

func (c Client) FullName() string { return c.FirstName + " " + c.LastName }

type CreditReport struct {
    ID         string    `json:"id"`
    ClientID   string    `json:"clientId"`
    Bureau     Bureau    `json:"bureau"`
    Score      int       `json:"score"`
    ReportDate time.Time `json:"reportDate"`
    Summary    string    `json:"summary,omitempty"`
    CreatedAt  time.Time `json:"createdAt"`
}

type Dispute struct {
    ID            string          `json:"id"`
    ClientID      string          `json:"clientId"`
    Bureau        Bureau          `json:"bureau"`
    AccountName   string          `json:"accountName"`
    AccountNumber string          `json:"accountNumber,omitempty"`
    Reason        string          `json:"reason"`
    Status        DisputeStatus   `json:"status"`
    Priority      DisputePriority `json:"priority"`
    SubmittedAt   *time.Time      `json:"submittedAt,omitempty"`
    ResponseDueAt *time.Time      `json:"responseDueAt,omitempty"`
    ResolvedAt    *time.Time      `json:"resolvedAt,omitempty"`
    Outcome       string          `json:"outcome,omitempty"`
    CreatedAt     time.Time       `json:"createdAt"`
    UpdatedAt     time.Time       `json:"updatedAt"`
}

type Document struct {
    ID          string    `json:"id"`
    ClientID    string    `json:"clientId"`
    FileName    string    `json:"fileName"`
    FileType    string    `json:"fileType,omitempty"`
    FileSize    int64     `json:"fileSize"`
    StoragePath string    `json:"storagePath,omitempty"`
    Category    string    `json:"category,omitempty"`
    UploadedAt  time.Time `json:"uploadedAt"`
}

type Letter struct {
    ID        string         `json:"id"`
    ClientID  string         `json:"clientId"`
    DisputeID *string        `json:"disputeId,omitempty"`
    Template  LetterTemplate `json:"template"`
    Bureau    Bureau         `json:"bureau"`
    Subject   string         `json:"subject"`
    Content   string         `json:"content,omitempty"`
    Status    LetterStatus   `json:"status"`
    Error     string         `json:"error,omitempty"`
    CreatedAt time.Time      `json:"createdAt"`
    SentAt    *time.Time     `json:"sentAt,omitempty"`
}

type Payment struct {
    ID          string          `json:"id"`
    ClientID    string          `json:"clientId"`
    Amount      decimal.Decimal `json:"amount"`
    Currency    string          `json:"currency"`
    Status      PaymentStatus   `json:"status"`
    Method      string          `json:"method,omitempty"`
    Description string          `json:"description,omitempty"`
    PaidAt      *time.Time      `json:"paidAt,omitempty"`
    CreatedAt   time.Time       `json:"createdAt"`
}

type Notification struct {
    ID        string    `json:"id"`
    UserID    string    `json:"userId"`
    Title     string    `json:"title"`
    Message   string    `json:"message"`
    Kind      string    `json:"kind"`
    Read      bool      `json:"read"`
    CreatedAt time.Time `json:"createdAt"`
}

type AuditLog struct {
    ID         string    `json:"id"`
    UserID     string    `json:"userId,omitempty"`
    Action     string    `json:"action"`
    EntityType string    `json:"entityType"`
    EntityID   string    `json:"entityId,omitempty"`
    Details    string    `json:"details,omitempty"`
    CreatedAt  time.Time `json:"createdAt"`
}

type Setting struct {
    Key       string    `json:"key"`
    Value     string    `json:"value"`
    UpdatedAt time.Time `json:"updatedAt"`
}

type RefreshToken struct {
    ID        string
    UserID    string
    TokenHash string
    ExpiresAt time.Time
    RevokedAt *time.Time
    CreatedAt time.Time
}

// Dashboard is the aggregate returned by the analytics service.
type Dashboard struct {
    ClientsByStatus    map[ClientStatus]int  `json:"clientsByStatus"`
    DisputesByStatus   map[DisputeStatus]int `json:"disputesByStatus"`
    TotalClients       int                   `json:"totalClients"`
    TotalDisputes      int                   `json:"totalDisputes"`
    SuccessRate        float64               `json:"successRate"`
    Revenue            decimal.Decimal       `json:"revenue"`
    AverageCreditScore float64               `json:"averageCreditScore"`
    OverdueDisputes    int                   `json:"overdueDisputes"`
    LettersReady       int                   `json:"lettersReady"`
}

// Page is one slice of a filtered listing.
type Page[T any] struct {
    Items    []T `json:"items"`
    Total    int `json:"total"`
    Page     int `json:"page"`
    PageSize int `json:"pageSize"`
}
