package clients

import (
    "context"
    "net/mail"
    "strings"
    "time"

    "github.com/google/uuid"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

type Service struct {
    repo  ports.ClientRepository
    audit ports.Auditor
    now   func() time.Time
}

func New(repo ports.ClientRepository, audit ports.Auditor) *Service {
    return &Service{repo: repo, audit: audit, now: time.Now}
}

// Input carries the editable client fields. DateOfBirth is YYYY-MM-DD.
type Input struct {
    FirstName   string              `json:"firstName"`
    LastName    string              `json:"lastName"`
    Email       string              `json:"email"`
    Phone       string              `json:"phone"`
    Address     string              `json:"address"`
    City        string              `json:"city"`
    State       string              `json:"state"`
    ZipCode     string              `json:"zipCode"`
    DateOfBirth string              `json:"dateOfBirth"`
    SSNLast4    string              `json:"ssnLast4"`
    Status      domain.ClientStatus `json:"status"`
    Notes       string              `json:"notes"`
}

func (in Input) apply(c *domain.Client) error {
    c.FirstName = strings.TrimSpace(in.FirstName)
    c.LastName = strings.TrimSpace(in.LastName)
    c.Email = strings.ToLower(strings.TrimSpace(in.Email))
    c.Phone = strings.TrimSpace(in.Phone)
    c.Address = strings.TrimSpace(in.Address)
    c.City = strings.TrimSpace(in.City)
    c.State = strings.ToUpper(strings.TrimSpace(in.State))
    c.ZipCode = strings.TrimSpace(in.ZipCode)
    c.SSNLast4 = strings.TrimSpace(in.SSNLast4)
    c.Notes = in.Notes
    c.Status = in.Status
    if c.Status == "" {
        c.Status = domain.ClientPending
    }

    if c.FirstName == "" {
        return domain.Invalidf("firstName", "required")
    }
    if c.LastName == "" {
        return domain.Invalidf("lastName", "required")
    }
    if c.Email != "" {
        if _, err := mail.ParseAddress(c.Email); err != nil {
            return domain.Invalidf("email", "not a valid address")
        }
    }
    if !c.Status.Valid() {
        return domain.Invalidf("status", "unknown status %q", c.Status)
    }
    if c.State != "" && !isLetters(c.State, 2) {
        return domain.Invalidf("state", "must be a two-letter code")
    }
    if c.SSNLast4 != "" && !isDigits(c.SSNLast4, 4) {
        return domain.Invalidf("ssnLast4", "must be exactly 4 digits")
    }
    c.DateOfBirth = nil
    if dob := strings.TrimSpace(in.DateOfBirth); dob != "" {
        t, err := time.Parse(time.DateOnly, dob)
        if err != nil {
            return domain.Invalidf("dateOfBirth", "expected YYYY-MM-DD")
        }
        c.DateOfBirth = &t
    }
    return nil
}

func isDigits(s string, n int) bool {
    if len(s) != n {
        return false
    }
    for _, r := range s {
        if r < '0' || r > '9' {
            return false
        }
    }
    return true
}

func isLetters(s string, n int) bool {
    if len(s) != n {
        return false
    }
    for _, r := range s {
        if r < 'A' || r > 'Z' {
            return false
        }
    }
    return true
}

func (s *Service) List(ctx context.Context, userID string, f domain.ClientFilter) (domain.Page[domain.Client], error) {
    f = f.Normalize()
    if f.Status != "" && !f.Status.Valid() {
        return domain.Page[domain.Client]{}, domain.Invalidf("status", "unknown status %q", f.Status)
    }
    items, total, err := s.repo.ListClients(ctx, userID, f)
    if err != nil {
        return domain.Page[domain.Client]{}, err
    }
    return domain.Page[domain.Client]{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (domain.Client, error) {
    return s.repo.GetClient(ctx, userID, id)
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (domain.Client, error) {
    now := s.now().UTC()
    c := domain.Client{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}
    if err := in.apply(&c); err != nil {
        return domain.Client{}, err
    }
    if err := s.repo.CreateClient(ctx, c); err != nil {
        return domain.Client{}, err
    }
    s.audit.Record(ctx, userID, "client.create", "client", c.ID, map[string]string{"name": c.FullName()})
    return c, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in Input) (domain.Client, error) {
    c, err := s.repo.GetClient(ctx, userID, id)
    if err != nil {
        return domain.Client{}, err
    }
    prev := c.Status
    if err := in.apply(&c); err != nil {
        return domain.Client{}, err
    }
    c.UpdatedAt = s.now().UTC()
    if err := s.repo.UpdateClient(ctx, c); err != nil {
        return domain.Client{}, err
    }
    details := map[string]string{"name": c.FullName()}
    if prev != c.Status {
        details["status"] = string(prev) + "->" + string(c.Status)
    }
    s.audit.Record(ctx, userID, "client.update", "client", c.ID, details)
    return c, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
    if err := s.repo.DeleteClient(ctx, userID, id); err != nil {
        return err
    }
    s.audit.Record(ctx, userID, "client.delete", "client", id, nil)
    return nil
}
