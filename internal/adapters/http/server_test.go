package httpadapter

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zaptest/observer"
    "golang.org/x/crypto/bcrypt"

    "creditdesk/internal/adapters/memory"
    "creditdesk/internal/domain"
    "creditdesk/internal/services/analytics"
    "creditdesk/internal/services/audit"
    "creditdesk/internal/services/auth"
    "creditdesk/internal/services/clients"
    "creditdesk/internal/services/disputes"
    "creditdesk/internal/services/documents"
    "creditdesk/internal/services/letters"
    "creditdesk/internal/services/notifications"
    "creditdesk/internal/services/payments"
    "creditdesk/internal/services/reports"
    "creditdesk/internal/services/settings"
)

type harness struct {
    t     *testing.T
    srv   *httptest.Server
    store *memory.Store
    logs  *observer.ObservedLogs
    token string
}

func newHarness(t *testing.T, opts ...func(*Services)) *harness {
    t.Helper()
    store := memory.New()
    core, logs := observer.New(zap.InfoLevel)
    log := zap.New(core)
    notifier := notifications.New(store)
    auditor := audit.New(store, log)
    svc := Services{
        Auth:          auth.New(store, store, auth.Options{Secret: []byte("test-secret"), AccessTTL: time.Minute, RefreshTTL: time.Hour}),
        Clients:       clients.New(store, auditor),
        Disputes:      disputes.New(store, store, notifier, auditor, log),
        Letters:       letters.New(store, store, store, auditor),
        Payments:      payments.New(store, store, auditor),
        Reports:       reports.New(store, store, auditor),
        Documents:     documents.New(store, store, auditor),
        Analytics:     analytics.New(store),
        Notifications: notifier,
        Settings:      settings.New(store),
        Audit:         auditor,
        Jobs:          store,
        Processor:     letters.Generator{Source: store, Notifier: notifier, Log: log},
    }
    for _, o := range opts {
        o(&svc)
    }
    srv := httptest.NewServer(New(svc, log).Routes())
    t.Cleanup(srv.Close)
    h := &harness{t: t, srv: srv, store: store, logs: logs}
    h.token = h.signup("owner@example.com")
    return h
}

// signup registers an account and returns its access token.
func (h *harness) signup(email string) string {
    h.t.Helper()
    creds := map[string]string{"email": email, "password": "correct horse", "firstName": "Pat", "lastName": "Owner"}
    res := h.do(http.MethodPost, "/auth/register", "", creds, nil)
    require.Equal(h.t, http.StatusCreated, res.StatusCode)
    var tok auth.Tokens
    res = h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "correct horse"}, &tok)
    require.Equal(h.t, http.StatusOK, res.StatusCode)
    return tok.AccessToken
}

func (h *harness) do(method, path, token string, body, out any) *http.Response {
    h.t.Helper()
    var buf bytes.Buffer
    if body != nil {
        require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
    }
    req, err := http.NewRequest(method, h.srv.URL+path, &buf)
    require.NoError(h.t, err)
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    res, err := http.DefaultClient.Do(req)
    require.NoError(h.t, err)
    defer res.Body.Close()
    if out != nil {
        require.NoError(h.t, json.NewDecoder(res.Body).Decode(out))
    }
    return res
}

func (h *harness) api(method, path string, body, out any) *http.Response {
    h.t.Helper()
    return h.do(method, "/api"+path, h.token, body, out)
}

func (h *harness) createClient(first, last, status string) domain.Client {
    h.t.Helper()
    var c domain.Client
    res := h.api(http.MethodPost, "/clients", map[string]string{
        "firstName": first, "lastName": last, "status": status, "email": first + "@example.com",
    }, &c)
    require.Equal(h.t, http.StatusCreated, res.StatusCode)
    return c
}

func TestHealthz(t *testing.T) {
    h := newHarness(t)
    var body map[string]string
    res := h.do(http.MethodGet, "/healthz", "", nil, &body)
    assert.Equal(t, http.StatusOK, res.StatusCode)
    assert.Equal(t, "ok", body["status"])
    // the access log line is written after the response is flushed
    assert.Eventually(t, func() bool { return h.logs.FilterMessage("request").Len() > 0 }, time.Second, 10*time.Millisecond)
}

func TestAuthFlow(t *testing.T) {
    h := newHarness(t)

    res := h.do(http.MethodGet, "/api/clients", "", nil, nil)
    assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
    res = h.do(http.MethodGet, "/api/clients", "not-a-jwt", nil, nil)
    assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

    var e errorBody
    res = h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "owner@example.com", "password": "wrong"}, &e)
    assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
    assert.Equal(t, "unauthorized", e.Error)

    res = h.do(http.MethodPost, "/auth/register", "", map[string]string{
        "email": "OWNER@example.com", "password": "correct horse", "firstName": "A", "lastName": "B",
    }, nil)
    assert.Equal(t, http.StatusConflict, res.StatusCode)

    var tok auth.Tokens
    h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "owner@example.com", "password": "correct horse"}, &tok)
    var next auth.Tokens
    res = h.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": tok.RefreshToken}, &next)
    require.Equal(t, http.StatusOK, res.StatusCode)
    assert.NotEqual(t, tok.RefreshToken, next.RefreshToken)

    res = h.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": tok.RefreshToken}, nil)
    assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

    res = h.do(http.MethodPost, "/auth/logout", "", map[string]string{"refreshToken": next.RefreshToken}, nil)
    assert.Equal(t, http.StatusNoContent, res.StatusCode)
    res = h.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": next.RefreshToken}, nil)
    assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestClientListing(t *testing.T) {
    h := newHarness(t)
    h.createClient("John", "Smith", "active")
    h.createClient("Jane", "Smithers", "pending")
    h.createClient("Maria", "Garcia", "active")
    for i := 0; i < 12; i++ {
        h.createClient(fmt.Sprintf("Bulk%02d", i), "Client", "inactive")
    }

    var page domain.Page[domain.Client]
    res := h.api(http.MethodGet, "/clients?search=smith&status=active", nil, &page)
    require.Equal(t, http.StatusOK, res.StatusCode)
    require.Equal(t, 1, page.Total)
    assert.Equal(t, "John", page.Items[0].FirstName)

    h.api(http.MethodGet, "/clients?search=SMITH", nil, &page)
    assert.Equal(t, 2, page.Total)

    h.api(http.MethodGet, "/clients?status=inactive&page=2", nil, &page)
    assert.Equal(t, 12, page.Total)
    assert.Len(t, page.Items, 2)
    assert.Equal(t, 10, page.PageSize)

    res = h.api(http.MethodGet, "/clients?page=abc", nil, nil)
    assert.Equal(t, http.StatusBadRequest, res.StatusCode)

    // another tenant sees nothing
    other := h.signup("other@example.com")
    h.do(http.MethodGet, "/api/clients", other, nil, &page)
    assert.Equal(t, 0, page.Total)
}

func TestClientCRUD(t *testing.T) {
    h := newHarness(t)
    c := h.createClient("John", "Smith", "")
    assert.Equal(t, domain.ClientPending, c.Status)

    var e errorBody
    res := h.api(http.MethodPost, "/clients", map[string]string{"firstName": "NoLast"}, &e)
    assert.Equal(t, http.StatusBadRequest, res.StatusCode)
    assert.Contains(t, e.Error, "lastName")

    res = h.api(http.MethodPost, "/clients", map[string]any{"firstName": "A", "lastName": "B", "bogus": 1}, nil)
    assert.Equal(t, http.StatusBadRequest, res.StatusCode)

    res = h.api(http.MethodGet, "/clients/not-a-uuid", nil, nil)
    assert.Equal(t, http.StatusBadRequest, res.StatusCode)

    var got domain.Client
    res = h.api(http.MethodPut, "/clients/"+c.ID, map[string]string{"firstName": "John", "lastName": "Smith", "status": "active", "state": "tx"}, &got)
    require.Equal(t, http.StatusOK, res.StatusCode)
    assert.Equal(t, domain.ClientActive, got.Status)
    assert.Equal(t, "TX", got.State)

    other := h.signup("other@example.com")
    res = h.do(http.MethodGet, "/api/clients/"+c.ID, other, nil, nil)
    assert.Equal(t, http.StatusNotFound, res.StatusCode)

    res = h.api(http.MethodDelete, "/clients/"+c.ID, nil, nil)
    assert.Equal(t, http.StatusNoContent, res.StatusCode)
    res = h.api(http.MethodGet, "/clients/"+c.ID, nil, nil)
    assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestDisputeLettersAndDashboard(t *testing.T) {
    h := newHarness(t)
    c := h.createClient("Maria", "Garcia", "active")

    var d domain.Dispute
    res := h.api(http.MethodPost, "/clients/"+c.ID+"/disputes", map[string]string{
        "bureau": "experian", "accountName": "Capital One", "accountNumber": "1234567890", "reason": "Not mine",
    }, &d)
    require.Equal(t, http.StatusCreated, res.StatusCode)

    res = h.api(http.MethodPatch, "/disputes/"+d.ID+"/status", map[string]string{"status": "resolved"}, nil)
    assert.Equal(t, http.StatusConflict, res.StatusCode)
    res = h.api(http.MethodPatch, "/disputes/"+d.ID+"/status", map[string]string{"status": "submitted"}, &d)
    require.Equal(t, http.StatusOK, res.StatusCode)
    require.NotNil(t, d.ResponseDueAt)

    var list []domain.Dispute
    h.api(http.MethodGet, "/disputes?status=submitted&bureau=experian", nil, &list)
    assert.Len(t, list, 1)
    h.api(http.MethodGet, "/disputes?bureau=equifax", nil, &list)
    assert.Empty(t, list)
    res = h.api(http.MethodGet, "/disputes?status=lost", nil, nil)
    assert.Equal(t, http.StatusBadRequest, res.StatusCode)

    var l domain.Letter
    res = h.api(http.MethodPost, "/letters", map[string]string{"clientId": c.ID, "disputeId": d.ID}, &l)
    require.Equal(t, http.StatusAccepted, res.StatusCode)
    assert.Equal(t, domain.LetterQueued, l.Status)

    res = h.api(http.MethodPost, "/letters?wait=true&timeout=5", map[string]string{"clientId": c.ID, "disputeId": d.ID, "template": "method_of_verification"}, &l)
    require.Equal(t, http.StatusOK, res.StatusCode)
    assert.Equal(t, domain.LetterReady, l.Status)
    assert.Contains(t, l.Content, "Capital One")

    res = h.api(http.MethodPost, "/letters/"+l.ID+"/sent", nil, &l)
    require.Equal(t, http.StatusOK, res.StatusCode)
    assert.Equal(t, domain.LetterSent, l.Status)

    var clientLetters []domain.Letter
    h.api(http.MethodGet, "/clients/"+c.ID+"/letters", nil, &clientLetters)
    assert.Len(t, clientLetters, 2)

    var p domain.Payment
    res = h.api(http.MethodPost, "/clients/"+c.ID+"/payments", map[string]any{"amount": "149.00", "method": "card"}, &p)
    require.Equal(t, http.StatusCreated, res.StatusCode)
    res = h.api(http.MethodPost, "/clients/"+c.ID+"/reports", map[string]any{"bureau": "experian", "score": 640}, nil)
    require.Equal(t, http.StatusCreated, res.StatusCode)

    var dash domain.Dashboard
    res = h.api(http.MethodGet, "/analytics/dashboard", nil, &dash)
    require.Equal(t, http.StatusOK, res.StatusCode)
    assert.Equal(t, 1, dash.TotalClients)
    assert.Equal(t, 1, dash.TotalDisputes)
    assert.Equal(t, "149", dash.Revenue.String())
    assert.Equal(t, 640.0, dash.AverageCreditScore)

    res = h.api(http.MethodPost, "/payments/"+p.ID+"/refund", nil, &p)
    require.Equal(t, http.StatusOK, res.StatusCode)
    assert.Equal(t, domain.PaymentRefunded, p.Status)
}

// stuckProcessor never finishes on its own.
type stuckProcessor struct{}

func (stuckProcessor) Process(ctx context.Context, _ string) error {
    <-ctx.Done()
    return ctx.Err()
}

func TestInlineLetterTimeout(t *testing.T) {
    h := newHarness(t, func(s *Services) { s.Processor = stuckProcessor{} })
    c := h.createClient("Ann", "Lee", "active")

    var e errorBody
    start := time.Now()
    res := h.api(http.MethodPost, "/letters?wait=true&timeout=1", map[string]string{"clientId": c.ID, "template": "goodwill", "bureau": "transunion"}, &e)
    assert.Equal(t, http.StatusGatewayTimeout, res.StatusCode)
    assert.Contains(t, e.Error, "deadline exceeded")
    assert.Less(t, time.Since(start), 5*time.Second)

    var clientLetters []domain.Letter
    h.api(http.MethodGet, "/clients/"+c.ID+"/letters", nil, &clientLetters)
    require.Len(t, clientLetters, 1)
    assert.Equal(t, domain.LetterFailed, clientLetters[0].Status)
    status, _ := h.store.JobStatus(clientLetters[0].ID)
    assert.Equal(t, "failed", status)
}

func TestNotificationsSettingsAudit(t *testing.T) {
    h := newHarness(t)
    c := h.createClient("Ann", "Lee", "active")
    var d domain.Dispute
    h.api(http.MethodPost, "/clients/"+c.ID+"/disputes", map[string]string{"bureau": "equifax", "accountName": "Midland", "reason": "Paid"}, &d)
    h.api(http.MethodPatch, "/disputes/"+d.ID+"/status", map[string]string{"status": "submitted"}, nil)
    h.api(http.MethodPatch, "/disputes/"+d.ID+"/status", map[string]string{"status": "rejected", "outcome": "verified"}, nil)

    var notes []domain.Notification
    h.api(http.MethodGet, "/notifications?unread=true", nil, &notes)
    require.Len(t, notes, 1)
    res := h.api(http.MethodPost, "/notifications/"+notes[0].ID+"/read", nil, nil)
    assert.Equal(t, http.StatusNoContent, res.StatusCode)
    h.api(http.MethodGet, "/notifications?unread=true", nil, &notes)
    assert.Empty(t, notes)

    var st domain.Setting
    res = h.api(http.MethodPut, "/settings/company_name", map[string]string{"value": "Summit Credit"}, &st)
    require.Equal(t, http.StatusOK, res.StatusCode)
    var all []domain.Setting
    h.api(http.MethodGet, "/settings", nil, &all)
    require.Len(t, all, 1)
    assert.Equal(t, "Summit Credit", all[0].Value)

    var logs []domain.AuditLog
    res = h.api(http.MethodGet, "/audit-logs?limit=2", nil, &logs)
    require.Equal(t, http.StatusOK, res.StatusCode)
    assert.Len(t, logs, 2)
}

func TestAuditLogsRequireAdmin(t *testing.T) {
    h := newHarness(t)
    hash, err := bcrypt.GenerateFromPassword([]byte("agent password"), bcrypt.MinCost)
    require.NoError(t, err)
    require.NoError(t, h.store.CreateUser(context.Background(), domain.User{
        ID: "9b2f4a4e-0d7c-4d7e-8f43-1c2d3e4f5a6b", Email: "agent@example.com",
        PasswordHash: string(hash), Role: domain.RoleAgent, Active: true,
    }))
    var tok auth.Tokens
    res := h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "agent@example.com", "password": "agent password"}, &tok)
    require.Equal(t, http.StatusOK, res.StatusCode)

    res = h.do(http.MethodGet, "/api/audit-logs", tok.AccessToken, nil, nil)
    assert.Equal(t, http.StatusForbidden, res.StatusCode)
    res = h.do(http.MethodGet, "/api/clients", tok.AccessToken, nil, nil)
    assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestStatusFor(t *testing.T) {
    cases := map[error]int{
        domain.Invalidf("f", "bad"):               http.StatusBadRequest,
        domain.ErrUnauthorized:                    http.StatusUnauthorized,
        domain.ErrForbidden:                       http.StatusForbidden,
        fmt.Errorf("load: %w", domain.ErrNotFound): http.StatusNotFound,
        domain.Conflictf("dup"):                   http.StatusConflict,
        context.DeadlineExceeded:                  http.StatusGatewayTimeout,
        errors.New("db down"):                     http.StatusInternalServerError,
    }
    for err, want := range cases {
        assert.Equal(t, want, statusFor(err), err.Error())
    }
}

func TestInternalErrorsAreHidden(t *testing.T) {
    core, logs := observer.New(zap.InfoLevel)
    s := New(Services{}, zap.New(core))
    rec := httptest.NewRecorder()
    s.fail(rec, httptest.NewRequest(http.MethodGet, "/api/clients", nil), errors.New("dial tcp 10.0.0.5:5432: connection refused"))

    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
    entries := logs.FilterMessage("request failed").All()
    require.Len(t, entries, 1)
    assert.Equal(t, "/api/clients", entries[0].ContextMap()["path"])
}
