package reports

import (
    "context"
    "strings"
    "time"

    "github.com/google/uuid"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

const (
    MinScore = 300
    MaxScore = 850
)

type Service struct {
    repo    ports.ReportRepository
    clients ports.ClientRepository
    audit   ports.Auditor
    now     func() time.Time
}

func New(repo ports.ReportRepository, clients ports.ClientRepository, audit ports.Auditor) *Service {
    return &Service{repo: repo, clients: clients, audit: audit, now: time.Now}
}

// Input is a pulled credit report. ReportDate is YYYY-MM-DD and defaults to today.
type Input struct {
    Bureau     string `json:"bureau"`
    Score      int    `json:"score"`
    ReportDate string `json:"reportDate"`
    Summary    string `json:"summary"`
}

// Add stores a report. When it is the client's most recent report its score
// becomes the client's current credit score.
func (s *Service) Add(ctx context.Context, userID, clientID string, in Input) (domain.CreditReport, error) {
    client, err := s.clients.GetClient(ctx, userID, clientID)
    if err != nil {
        return domain.CreditReport{}, err
    }
    b, err := domain.ParseBureau(in.Bureau)
    if err != nil {
        return domain.CreditReport{}, err
    }
    if in.Score < MinScore || in.Score > MaxScore {
        return domain.CreditReport{}, domain.Invalidf("score", "must be between %d and %d", MinScore, MaxScore)
    }
    now := s.now().UTC()
    date := now.Truncate(24 * time.Hour)
    if in.ReportDate != "" {
        date, err = time.Parse(time.DateOnly, in.ReportDate)
        if err != nil {
            return domain.CreditReport{}, domain.Invalidf("reportDate", "expected YYYY-MM-DD")
        }
        if date.After(now) {
            return domain.CreditReport{}, domain.Invalidf("reportDate", "in the future")
        }
    }
    r := domain.CreditReport{
        ID:         uuid.NewString(),
        ClientID:   client.ID,
        Bureau:     b,
        Score:      in.Score,
        ReportDate: date,
        Summary:    strings.TrimSpace(in.Summary),
        CreatedAt:  now,
    }
    if err := s.repo.CreateReport(ctx, r); err != nil {
        return domain.CreditReport{}, err
    }
    all, err := s.repo.ListReports(ctx, userID, client.ID)
    if err != nil {
        return domain.CreditReport{}, err
    }
    if len(all) > 0 && all[0].ID == r.ID {
        if err := s.clients.SetCreditScore(ctx, client.ID, r.Score); err != nil {
            return domain.CreditReport{}, err
        }
    }
    s.audit.Record(ctx, userID, "report.add", "credit_report", r.ID, map[string]any{
        "client": client.ID, "bureau": b, "score": r.Score,
    })
    return r, nil
}

func (s *Service) List(ctx context.Context, userID, clientID string) ([]domain.CreditReport, error) {
    if _, err := s.clients.GetClient(ctx, userID, clientID); err != nil {
        return nil, err
    }
    return s.repo.ListReports(ctx, userID, clientID)
}
