// Package memory implements every repository port in process memory. The
// server uses it for demo mode when no DATABASE_URL is configured, and the
// service and handler tests use it in place of Postgres.
package memory

import (
    "context"
    "sort"
    "strings"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

type job struct {
    id       string
    letterID string
    status   string
    attempts int
    lastErr  string
}

type Store struct {
    mu sync.Mutex

    seq           int
    order         map[string]int
    users         map[string]domain.User
    tokens        map[string]domain.RefreshToken
    clients       map[string]domain.Client
    disputes      map[string]domain.Dispute
    letters       map[string]domain.Letter
    jobs          []*job
    payments      map[string]domain.Payment
    reports       map[string]domain.CreditReport
    documents     map[string]domain.Document
    notifications map[string]domain.Notification
    audit         []domain.AuditLog
    settings      map[string]map[string]domain.Setting
}

func New() *Store {
    return &Store{
        order:         map[string]int{},
        users:         map[string]domain.User{},
        tokens:        map[string]domain.RefreshToken{},
        clients:       map[string]domain.Client{},
        disputes:      map[string]domain.Dispute{},
        letters:       map[string]domain.Letter{},
        payments:      map[string]domain.Payment{},
        reports:       map[string]domain.CreditReport{},
        documents:     map[string]domain.Document{},
        notifications: map[string]domain.Notification{},
        settings:      map[string]map[string]domain.Setting{},
    }
}

func (s *Store) track(id string) {
    s.seq++
    s.order[id] = s.seq
}

// newestFirst sorts by timestamp then insertion order, both descending.
func newestFirst[T any](s *Store, items []T, id func(T) string, at func(T) time.Time) {
    sort.SliceStable(items, func(i, j int) bool {
        ai, aj := at(items[i]), at(items[j])
        if !ai.Equal(aj) {
            return ai.After(aj)
        }
        return s.order[id(items[i])] > s.order[id(items[j])]
    })
}

// owned reports whether clientID belongs to userID. Caller holds mu.
func (s *Store) owned(userID, clientID string) bool {
    c, ok := s.clients[clientID]
    return ok && c.UserID == userID
}

// UserRepository

func (s *Store) CreateUser(_ context.Context, u domain.User) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    u.Email = strings.ToLower(u.Email)
    for _, existing := range s.users {
        if existing.Email == u.Email {
            return domain.Conflictf("email %s already registered", u.Email)
        }
    }
    s.users[u.ID] = u
    s.track(u.ID)
    return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    email = strings.ToLower(email)
    for _, u := range s.users {
        if u.Email == email {
            return u, nil
        }
    }
    return domain.User{}, domain.ErrNotFound
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    u, ok := s.users[id]
    if !ok {
        return u, domain.ErrNotFound
    }
    return u, nil
}

// TokenRepository

func (s *Store) SaveRefreshToken(_ context.Context, t domain.RefreshToken) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.tokens[t.TokenHash] = t
    return nil
}

func (s *Store) GetRefreshToken(_ context.Context, tokenHash string) (domain.RefreshToken, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    t, ok := s.tokens[tokenHash]
    if !ok {
        return t, domain.ErrNotFound
    }
    return t, nil
}

func (s *Store) RevokeRefreshToken(_ context.Context, id string, at time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    for h, t := range s.tokens {
        if t.ID == id && t.RevokedAt == nil {
            t.RevokedAt = &at
            s.tokens[h] = t
            return nil
        }
    }
    return domain.ErrNotFound
}

// ClientRepository

func (s *Store) ListClients(_ context.Context, userID string, f domain.ClientFilter) ([]domain.Client, int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var mine []domain.Client
    for _, c := range s.clients {
        if c.UserID == userID {
            mine = append(mine, c)
        }
    }
    newestFirst(s, mine, func(c domain.Client) string { return c.ID }, func(c domain.Client) time.Time { return c.CreatedAt })
    page, total := f.Apply(mine)
    return page, total, nil
}

func (s *Store) GetClient(_ context.Context, userID, id string) (domain.Client, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    c, ok := s.clients[id]
    if !ok || c.UserID != userID {
        return domain.Client{}, domain.ErrNotFound
    }
    return c, nil
}

func (s *Store) CreateClient(_ context.Context, c domain.Client) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.users[c.UserID]; !ok {
        return domain.Invalidf("userId", "unknown user")
    }
    s.clients[c.ID] = c
    s.track(c.ID)
    return nil
}

func (s *Store) UpdateClient(_ context.Context, c domain.Client) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    old, ok := s.clients[c.ID]
    if !ok || old.UserID != c.UserID {
        return domain.ErrNotFound
    }
    c.CreditScore = old.CreditScore
    c.CreatedAt = old.CreatedAt
    s.clients[c.ID] = c
    return nil
}

// DeleteClient cascades to the client's children like the SQL schema does.
func (s *Store) DeleteClient(_ context.Context, userID, id string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.owned(userID, id) {
        return domain.ErrNotFound
    }
    delete(s.clients, id)
    for k, d := range s.disputes {
        if d.ClientID == id {
            delete(s.disputes, k)
        }
    }
    for k, l := range s.letters {
        if l.ClientID == id {
            delete(s.letters, k)
        }
    }
    for k, p := range s.payments {
        if p.ClientID == id {
            delete(s.payments, k)
        }
    }
    for k, r := range s.reports {
        if r.ClientID == id {
            delete(s.reports, k)
        }
    }
    for k, d := range s.documents {
        if d.ClientID == id {
            delete(s.documents, k)
        }
    }
    return nil
}

func (s *Store) SetCreditScore(_ context.Context, clientID string, score int) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    c, ok := s.clients[clientID]
    if !ok {
        return domain.ErrNotFound
    }
    c.CreditScore = &score
    s.clients[clientID] = c
    return nil
}

// DisputeRepository

func (s *Store) CreateDispute(_ context.Context, d domain.Dispute) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.clients[d.ClientID]; !ok {
        return domain.ErrNotFound
    }
    s.disputes[d.ID] = d
    s.track(d.ID)
    return nil
}

func (s *Store) GetDispute(_ context.Context, userID, id string) (domain.Dispute, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    d, ok := s.disputes[id]
    if !ok || !s.owned(userID, d.ClientID) {
        return domain.Dispute{}, domain.ErrNotFound
    }
    return d, nil
}

func (s *Store) ListDisputes(_ context.Context, userID string, f domain.DisputeFilter) ([]domain.Dispute, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := []domain.Dispute{}
    for _, d := range s.disputes {
        if !s.owned(userID, d.ClientID) {
            continue
        }
        if (f.ClientID != "" && d.ClientID != f.ClientID) || (f.Status != "" && d.Status != f.Status) || (f.Bureau != "" && d.Bureau != f.Bureau) {
            continue
        }
        out = append(out, d)
    }
    newestFirst(s, out, func(d domain.Dispute) string { return d.ID }, func(d domain.Dispute) time.Time { return d.CreatedAt })
    return out, nil
}

func (s *Store) UpdateDispute(_ context.Context, d domain.Dispute) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.disputes[d.ID]; !ok {
        return domain.ErrNotFound
    }
    s.disputes[d.ID] = d
    return nil
}

func (s *Store) ListOverdueDisputes(_ context.Context, userID string, now time.Time) ([]domain.Dispute, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := []domain.Dispute{}
    for _, d := range s.disputes {
        if s.owned(userID, d.ClientID) && d.Overdue(now) {
            out = append(out, d)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ResponseDueAt.Before(*out[j].ResponseDueAt) })
    return out, nil
}

// LetterRepository

func (s *Store) CreateLetter(_ context.Context, l domain.Letter) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.clients[l.ClientID]; !ok {
        return domain.ErrNotFound
    }
    s.letters[l.ID] = l
    s.track(l.ID)
    s.jobs = append(s.jobs, &job{id: uuid.NewString(), letterID: l.ID, status: "queued"})
    return nil
}

func (s *Store) GetLetter(_ context.Context, userID, id string) (domain.Letter, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    l, ok := s.letters[id]
    if !ok || !s.owned(userID, l.ClientID) {
        return domain.Letter{}, domain.ErrNotFound
    }
    return l, nil
}

func (s *Store) ListLetters(_ context.Context, userID, clientID string) ([]domain.Letter, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := []domain.Letter{}
    if !s.owned(userID, clientID) {
        return out, nil
    }
    for _, l := range s.letters {
        if l.ClientID == clientID {
            out = append(out, l)
        }
    }
    newestFirst(s, out, func(l domain.Letter) string { return l.ID }, func(l domain.Letter) time.Time { return l.CreatedAt })
    return out, nil
}

func (s *Store) MarkLetterSent(_ context.Context, userID, id string, at time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    l, ok := s.letters[id]
    if !ok || !s.owned(userID, l.ClientID) || l.Status != domain.LetterReady {
        return domain.ErrNotFound
    }
    l.Status = domain.LetterSent
    l.SentAt = &at
    s.letters[id] = l
    return nil
}

// LetterSource

func (s *Store) LoadLetterForRender(_ context.Context, letterID string) (ports.LetterRender, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out ports.LetterRender
    l, ok := s.letters[letterID]
    if !ok {
        return out, domain.ErrNotFound
    }
    out.Letter = l
    out.Client = s.clients[l.ClientID]
    out.Sender = s.users[out.Client.UserID]
    if l.DisputeID != nil {
        if d, ok := s.disputes[*l.DisputeID]; ok {
            out.Dispute = &d
        }
    }
    return out, nil
}

func (s *Store) SaveLetterContent(_ context.Context, letterID, content string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    l, ok := s.letters[letterID]
    if !ok {
        return domain.ErrNotFound
    }
    l.Content = content
    s.letters[letterID] = l
    return nil
}

// JobRepository

func (s *Store) setLetterStatus(letterID string, st domain.LetterStatus, reason string) {
    if l, ok := s.letters[letterID]; ok {
        l.Status = st
        l.Error = reason
        s.letters[letterID] = l
    }
}

func (s *Store) ClaimNext(_ context.Context) (ports.LetterJob, bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, j := range s.jobs {
        if j.status == "queued" {
            j.status = "running"
            j.attempts++
            s.setLetterStatus(j.letterID, domain.LetterGenerating, "")
            return ports.LetterJob{ID: j.id, LetterID: j.letterID}, true, nil
        }
    }
    return ports.LetterJob{}, false, nil
}

func (s *Store) StartJobForLetter(_ context.Context, letterID string) (string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, j := range s.jobs {
        if j.letterID == letterID && j.status == "queued" {
            j.status = "running"
            j.attempts++
            s.setLetterStatus(letterID, domain.LetterGenerating, "")
            return j.id, nil
        }
    }
    return "", domain.ErrNotFound
}

func (s *Store) finish(jobID, status string, letter domain.LetterStatus, reason string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, j := range s.jobs {
        if j.id == jobID {
            j.status = status
            j.lastErr = reason
            s.setLetterStatus(j.letterID, letter, reason)
            return nil
        }
    }
    return domain.ErrNotFound
}

func (s *Store) MarkCompleted(_ context.Context, jobID string) error {
    return s.finish(jobID, "completed", domain.LetterReady, "")
}

func (s *Store) MarkFailed(_ context.Context, jobID string, reason string) error {
    return s.finish(jobID, "failed", domain.LetterFailed, reason)
}

// JobStatus exposes a job's state for tests.
func (s *Store) JobStatus(letterID string) (status string, attempts int) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, j := range s.jobs {
        if j.letterID == letterID {
            return j.status, j.attempts
        }
    }
    return "", 0
}

// PaymentRepository

func (s *Store) CreatePayment(_ context.Context, p domain.Payment) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.clients[p.ClientID]; !ok {
        return domain.ErrNotFound
    }
    s.payments[p.ID] = p
    s.track(p.ID)
    return nil
}

func (s *Store) GetPayment(_ context.Context, userID, id string) (domain.Payment, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    p, ok := s.payments[id]
    if !ok || !s.owned(userID, p.ClientID) {
        return domain.Payment{}, domain.ErrNotFound
    }
    return p, nil
}

func (s *Store) ListPayments(_ context.Context, userID, clientID string) ([]domain.Payment, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := []domain.Payment{}
    for _, p := range s.payments {
        if p.ClientID == clientID && s.owned(userID, clientID) {
            out = append(out, p)
        }
    }
    newestFirst(s, out, func(p domain.Payment) string { return p.ID }, func(p domain.Payment) time.Time { return p.CreatedAt })
    return out, nil
}

func (s *Store) SetPaymentStatus(_ context.Context, id string, status domain.PaymentStatus) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    p, ok := s.payments[id]
    if !ok {
        return domain.ErrNotFound
    }
    p.Status = status
    s.payments[id] = p
    return nil
}

// ReportRepository

func (s *Store) CreateReport(_ context.Context, r domain.CreditReport) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.clients[r.ClientID]; !ok {
        return domain.ErrNotFound
    }
    s.reports[r.ID] = r
    s.track(r.ID)
    return nil
}

func (s *Store) ListReports(_ context.Context, userID, clientID string) ([]domain.CreditReport, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := []domain.CreditReport{}
    for _, r := range s.reports {
        if r.ClientID == clientID && s.owned(userID, clientID) {
            out = append(out, r)
        }
    }
    newestFirst(s, out, func(r domain.CreditReport) string { return r.ID }, func(r domain.CreditReport) time.Time { return r.ReportDate })
    return out, nil
}

// DocumentRepository

func (s *Store) CreateDocument(_ context.Context, d domain.Document) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.clients[d.ClientID]; !ok {
        return domain.ErrNotFound
    }
    s.documents[d.ID] = d
    s.track(d.ID)
    return nil
}

func (s *Store) ListDocuments(_ context.Context, userID, clientID string) ([]domain.Document, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := []domain.Document{}
    for _, d := range s.documents {
        if d.ClientID == clientID && s.owned(userID, clientID) {
            out = append(out, d)
        }
    }
    newestFirst(s, out, func(d domain.Document) string { return d.ID }, func(d domain.Document) time.Time { return d.UploadedAt })
    return out, nil
}

func (s *Store) DeleteDocument(_ context.Context, userID, id string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    d, ok := s.documents[id]
    if !ok || !s.owned(userID, d.ClientID) {
        return domain.ErrNotFound
    }
    delete(s.documents, id)
    return nil
}

// NotificationRepository

func (s *Store) CreateNotification(_ context.Context, n domain.Notification) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.notifications[n.ID] = n
    s.track(n.ID)
    return nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := []domain.Notification{}
    for _, n := range s.notifications {
        if n.UserID == userID && (!unreadOnly || !n.Read) {
            out = append(out, n)
        }
    }
    newestFirst(s, out, func(n domain.Notification) string { return n.ID }, func(n domain.Notification) time.Time { return n.CreatedAt })
    return out, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, userID, id string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    n, ok := s.notifications[id]
    if !ok || n.UserID != userID {
        return domain.ErrNotFound
    }
    n.Read = true
    s.notifications[id] = n
    return nil
}

// AuditRepository

func (s *Store) CreateAuditLog(_ context.Context, a domain.AuditLog) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.audit = append(s.audit, a)
    return nil
}

func (s *Store) ListAuditLogs(_ context.Context, userID string, limit int) ([]domain.AuditLog, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := []domain.AuditLog{}
    for i := len(s.audit) - 1; i >= 0 && len(out) < limit; i-- {
        if s.audit[i].UserID == userID {
            out = append(out, s.audit[i])
        }
    }
    return out, nil
}

// SettingRepository

func (s *Store) ListSettings(_ context.Context, userID string) ([]domain.Setting, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := []domain.Setting{}
    for _, st := range s.settings[userID] {
        out = append(out, st)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
    return out, nil
}

func (s *Store) PutSetting(_ context.Context, userID string, st domain.Setting) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.settings[userID] == nil {
        s.settings[userID] = map[string]domain.Setting{}
    }
    s.settings[userID][st.Key] = st
    return nil
}

// AnalyticsRepository

func (s *Store) CountClientsByStatus(_ context.Context, userID string) (map[domain.ClientStatus]int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := map[domain.ClientStatus]int{}
    for _, c := range s.clients {
        if c.UserID == userID {
            out[c.Status]++
        }
    }
    return out, nil
}

func (s *Store) CountDisputesByStatus(_ context.Context, userID string) (map[domain.DisputeStatus]int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := map[domain.DisputeStatus]int{}
    for _, d := range s.disputes {
        if s.owned(userID, d.ClientID) {
            out[d.Status]++
        }
    }
    return out, nil
}

func (s *Store) SumCompletedPayments(_ context.Context, userID string) (decimal.Decimal, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    sum := decimal.Zero
    for _, p := range s.payments {
        if p.Status == domain.PaymentCompleted && s.owned(userID, p.ClientID) {
            sum = sum.Add(p.Amount)
        }
    }
    return sum, nil
}

func (s *Store) AverageCreditScore(_ context.Context, userID string) (float64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    total, n := 0, 0
    for _, c := range s.clients {
        if c.UserID == userID && c.CreditScore != nil {
            total += *c.CreditScore
            n++
        }
    }
    if n == 0 {
        return 0, nil
    }
    return float64(total) / float64(n), nil
}

func (s *Store) CountOverdueDisputes(_ context.Context, userID string, now time.Time) (int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    n := 0
    for _, d := range s.disputes {
        if s.owned(userID, d.ClientID) && d.Overdue(now) {
            n++
        }
    }
    return n, nil
}

func (s *Store) CountLettersByStatus(_ context.Context, userID string, status domain.LetterStatus) (int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    n := 0
    for _, l := range s.letters {
        if l.Status == status && s.owned(userID, l.ClientID) {
            n++
        }
    }
    return n, nil
}
