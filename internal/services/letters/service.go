package letters

import (
    "context"
    "errors"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

type Service struct {
    repo     ports.LetterRepository
    clients  ports.ClientRepository
    disputes ports.DisputeRepository
    audit    ports.Auditor
    now      func() time.Time
}

func New(repo ports.LetterRepository, clients ports.ClientRepository, disputes ports.DisputeRepository, audit ports.Auditor) *Service {
    return &Service{repo: repo, clients: clients, disputes: disputes, audit: audit, now: time.Now}
}

type Request struct {
    ClientID  string                `json:"clientId"`
    DisputeID string                `json:"disputeId"`
    Template  domain.LetterTemplate `json:"template"`
    Bureau    string                `json:"bureau"`
}

// Enqueue records a letter and queues its generation. With a dispute the
// bureau defaults to the dispute's bureau.
func (s *Service) Enqueue(ctx context.Context, userID string, req Request) (domain.Letter, error) {
    if req.Template == "" {
        req.Template = domain.TemplateDispute
    }
    if !req.Template.Valid() {
        return domain.Letter{}, domain.Invalidf("template", "unknown template %q", req.Template)
    }
    client, err := s.clients.GetClient(ctx, userID, req.ClientID)
    if err != nil {
        return domain.Letter{}, err
    }
    l := domain.Letter{
        ID:        uuid.NewString(),
        ClientID:  client.ID,
        Template:  req.Template,
        Subject:   Subject(req.Template),
        Status:    domain.LetterQueued,
        CreatedAt: s.now().UTC(),
    }
    if req.DisputeID != "" {
        d, err := s.disputes.GetDispute(ctx, userID, req.DisputeID)
        if err != nil {
            return domain.Letter{}, err
        }
        if d.ClientID != client.ID {
            return domain.Letter{}, domain.Invalidf("disputeId", "dispute belongs to another client")
        }
        l.DisputeID = &d.ID
        l.Bureau = d.Bureau
    }
    if req.Bureau != "" {
        b, err := domain.ParseBureau(req.Bureau)
        if err != nil {
            return domain.Letter{}, err
        }
        l.Bureau = b
    }
    if l.Bureau == "" {
        return domain.Letter{}, domain.Invalidf("bureau", "required without a dispute")
    }
    if err := s.repo.CreateLetter(ctx, l); err != nil {
        return domain.Letter{}, err
    }
    s.audit.Record(ctx, userID, "letter.create", "letter", l.ID, map[string]string{
        "client": client.ID, "template": string(l.Template), "bureau": string(l.Bureau),
    })
    return l, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (domain.Letter, error) {
    return s.repo.GetLetter(ctx, userID, id)
}

func (s *Service) ListByClient(ctx context.Context, userID, clientID string) ([]domain.Letter, error) {
    if _, err := s.clients.GetClient(ctx, userID, clientID); err != nil {
        return nil, err
    }
    return s.repo.ListLetters(ctx, userID, clientID)
}

// MarkSent records that a ready letter was mailed.
func (s *Service) MarkSent(ctx context.Context, userID, id string) (domain.Letter, error) {
    l, err := s.repo.GetLetter(ctx, userID, id)
    if err != nil {
        return domain.Letter{}, err
    }
    if l.Status != domain.LetterReady {
        return domain.Letter{}, domain.Conflictf("letter is %s, not ready", l.Status)
    }
    at := s.now().UTC()
    if err := s.repo.MarkLetterSent(ctx, userID, id, at); err != nil {
        return domain.Letter{}, err
    }
    s.audit.Record(ctx, userID, "letter.sent", "letter", id, nil)
    l.Status = domain.LetterSent
    l.SentAt = &at
    return l, nil
}

// Generator renders queued letters; it is the processor the background
// workers and inline generation share.
type Generator struct {
    Source   ports.LetterSource
    Notifier ports.Notifier
    Log      *zap.Logger
    Now      func() time.Time
}

func (g Generator) Process(ctx context.Context, letterID string) error {
    r, err := g.Source.LoadLetterForRender(ctx, letterID)
    if err != nil {
        return err
    }
    now := time.Now()
    if g.Now != nil {
        now = g.Now()
    }
    content, err := Render(r, now)
    if err != nil {
        return err
    }
    if err := ctx.Err(); err != nil {
        return err
    }
    if err := g.Source.SaveLetterContent(ctx, letterID, content); err != nil {
        return err
    }
    if g.Notifier != nil {
        msg := r.Letter.Subject + " for " + r.Client.FullName() + " is ready to send."
        if err := g.Notifier.Notify(ctx, r.Client.UserID, "letter", "Letter ready", msg); err != nil && !errors.Is(err, context.Canceled) && g.Log != nil {
            g.Log.Warn("letter notification failed", zap.String("letter_id", letterID), zap.Error(err))
        }
    }
    return nil
}
