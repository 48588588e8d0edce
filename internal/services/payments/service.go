package payments

import (
    "context"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

type Service struct {
    repo    ports.PaymentRepository
    clients ports.ClientRepository
    audit   ports.Auditor
    now     func() time.Time
}

func New(repo ports.PaymentRepository, clients ports.ClientRepository, audit ports.Auditor) *Service {
    return &Service{repo: repo, clients: clients, audit: audit, now: time.Now}
}

type Input struct {
    Amount      decimal.Decimal      `json:"amount"`
    Currency    string               `json:"currency"`
    Status      domain.PaymentStatus `json:"status"`
    Method      string               `json:"method"`
    Description string               `json:"description"`
}

// Record stores a payment for a client. Amounts are rounded to cents and the
// status defaults to completed.
func (s *Service) Record(ctx context.Context, userID, clientID string, in Input) (domain.Payment, error) {
    client, err := s.clients.GetClient(ctx, userID, clientID)
    if err != nil {
        return domain.Payment{}, err
    }
    amount := in.Amount.Round(2)
    if !amount.IsPositive() {
        return domain.Payment{}, domain.Invalidf("amount", "must be greater than zero")
    }
    cur := strings.ToUpper(strings.TrimSpace(in.Currency))
    if cur == "" {
        cur = "USD"
    }
    if len(cur) != 3 {
        return domain.Payment{}, domain.Invalidf("currency", "must be a three letter code")
    }
    status := in.Status
    if status == "" {
        status = domain.PaymentCompleted
    }
    if !status.Valid() || status == domain.PaymentRefunded {
        return domain.Payment{}, domain.Invalidf("status", "cannot record a %q payment", status)
    }
    now := s.now().UTC()
    p := domain.Payment{
        ID:          uuid.NewString(),
        ClientID:    client.ID,
        Amount:      amount,
        Currency:    cur,
        Status:      status,
        Method:      strings.TrimSpace(in.Method),
        Description: strings.TrimSpace(in.Description),
        CreatedAt:   now,
    }
    if status == domain.PaymentCompleted {
        p.PaidAt = &now
    }
    if err := s.repo.CreatePayment(ctx, p); err != nil {
        return domain.Payment{}, err
    }
    s.audit.Record(ctx, userID, "payment.record", "payment", p.ID, map[string]string{
        "client": client.ID, "amount": amount.StringFixed(2), "status": string(status),
    })
    return p, nil
}

func (s *Service) List(ctx context.Context, userID, clientID string) ([]domain.Payment, error) {
    if _, err := s.clients.GetClient(ctx, userID, clientID); err != nil {
        return nil, err
    }
    return s.repo.ListPayments(ctx, userID, clientID)
}

// Refund reverses a completed payment.
func (s *Service) Refund(ctx context.Context, userID, id string) (domain.Payment, error) {
    p, err := s.repo.GetPayment(ctx, userID, id)
    if err != nil {
        return domain.Payment{}, err
    }
    if p.Status != domain.PaymentCompleted {
        return domain.Payment{}, domain.Conflictf("payment is %s", p.Status)
    }
    if err := s.repo.SetPaymentStatus(ctx, id, domain.PaymentRefunded); err != nil {
        return domain.Payment{}, err
    }
    s.audit.Record(ctx, userID, "payment.refund", "payment", id, map[string]string{"amount": p.Amount.StringFixed(2)})
    p.Status = domain.PaymentRefunded
    return p, nil
}
