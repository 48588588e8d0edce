package disputes

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

type Service struct {
    repo     ports.DisputeRepository
    clients  ports.ClientRepository
    notifier ports.Notifier
    audit    ports.Auditor
    log      *zap.Logger
    now      func() time.Time
}

func New(repo ports.DisputeRepository, clients ports.ClientRepository, notifier ports.Notifier, audit ports.Auditor, log *zap.Logger) *Service {
    return &Service{repo: repo, clients: clients, notifier: notifier, audit: audit, log: log, now: time.Now}
}

type Input struct {
    Bureau        string                 `json:"bureau"`
    AccountName   string                 `json:"accountName"`
    AccountNumber string                 `json:"accountNumber"`
    Reason        string                 `json:"reason"`
    Priority      domain.DisputePriority `json:"priority"`
}

// Create opens a draft dispute against one bureau for a tenant's client.
func (s *Service) Create(ctx context.Context, userID, clientID string, in Input) (domain.Dispute, error) {
    client, err := s.clients.GetClient(ctx, userID, clientID)
    if err != nil {
        return domain.Dispute{}, err
    }
    bureau, err := domain.ParseBureau(in.Bureau)
    if err != nil {
        return domain.Dispute{}, err
    }
    if strings.TrimSpace(in.AccountName) == "" {
        return domain.Dispute{}, domain.Invalidf("accountName", "required")
    }
    if strings.TrimSpace(in.Reason) == "" {
        return domain.Dispute{}, domain.Invalidf("reason", "required")
    }
    priority := in.Priority
    if priority == "" {
        priority = domain.PriorityMedium
    }
    if !priority.Valid() {
        return domain.Dispute{}, domain.Invalidf("priority", "unknown priority %q", priority)
    }
    now := s.now().UTC()
    d := domain.Dispute{
        ID:            uuid.NewString(),
        ClientID:      client.ID,
        Bureau:        bureau,
        AccountName:   strings.TrimSpace(in.AccountName),
        AccountNumber: maskAccount(in.AccountNumber),
        Reason:        strings.TrimSpace(in.Reason),
        Status:        domain.DisputeDraft,
        Priority:      priority,
        CreatedAt:     now,
        UpdatedAt:     now,
    }
    if err := s.repo.CreateDispute(ctx, d); err != nil {
        return domain.Dispute{}, err
    }
    s.audit.Record(ctx, userID, "dispute.create", "dispute", d.ID, map[string]string{
        "client": client.ID, "bureau": string(bureau), "account": d.AccountName,
    })
    return d, nil
}

// maskAccount keeps only the last four characters of an account number.
func maskAccount(n string) string {
    n = strings.TrimSpace(n)
    if len(n) <= 4 {
        return n
    }
    return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}

func (s *Service) Get(ctx context.Context, userID, id string) (domain.Dispute, error) {
    return s.repo.GetDispute(ctx, userID, id)
}

// List returns disputes for one client, or for the whole tenant when
// f.ClientID is empty.
func (s *Service) List(ctx context.Context, userID string, f domain.DisputeFilter) ([]domain.Dispute, error) {
    if f.ClientID != "" {
        if _, err := s.clients.GetClient(ctx, userID, f.ClientID); err != nil {
            return nil, err
        }
    }
    if f.Status != "" && !f.Status.Valid() {
        return nil, domain.Invalidf("status", "unknown status %q", f.Status)
    }
    if f.Bureau != "" {
        b, err := domain.ParseBureau(string(f.Bureau))
        if err != nil {
            return nil, err
        }
        f.Bureau = b
    }
    return s.repo.ListDisputes(ctx, userID, f)
}

// Transition applies a lifecycle change. Reaching a terminal status notifies
// the owning user.
func (s *Service) Transition(ctx context.Context, userID, id string, to domain.DisputeStatus, outcome string) (domain.Dispute, error) {
    d, err := s.repo.GetDispute(ctx, userID, id)
    if err != nil {
        return domain.Dispute{}, err
    }
    from := d.Status
    if err := d.Transition(to, strings.TrimSpace(outcome), s.now()); err != nil {
        return domain.Dispute{}, err
    }
    if err := s.repo.UpdateDispute(ctx, d); err != nil {
        return domain.Dispute{}, err
    }
    s.audit.Record(ctx, userID, "dispute.status", "dispute", d.ID, map[string]string{
        "from": string(from), "to": string(to),
    })
    if to.Terminal() {
        title := fmt.Sprintf("Dispute %s", to)
        msg := fmt.Sprintf("%s dispute for %s was %s.", d.Bureau.DisplayName(), d.AccountName, to)
        if d.Outcome != "" {
            msg += " Outcome: " + d.Outcome
        }
        if err := s.notifier.Notify(ctx, userID, "dispute", title, msg); err != nil {
            s.log.Warn("dispute notification failed", zap.String("dispute_id", d.ID), zap.Error(err))
        }
    }
    return d, nil
}

// Overdue lists disputes whose bureau response window has lapsed.
func (s *Service) Overdue(ctx context.Context, userID string) ([]domain.Dispute, error) {
    return s.repo.ListOverdueDisputes(ctx, userID, s.now().UTC())
}
