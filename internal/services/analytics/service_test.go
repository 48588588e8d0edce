package analytics

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/google/go-cmp/cmp"
    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "creditdesk/internal/adapters/memory"
    "creditdesk/internal/domain"
)

func TestSuccessRate(t *testing.T) {
    assert.Equal(t, 0.0, SuccessRate(nil))
    assert.Equal(t, 66.7, SuccessRate(map[domain.DisputeStatus]int{
        domain.DisputeResolved: 2, domain.DisputeRejected: 1, domain.DisputeSubmitted: 9,
    }))
    assert.Equal(t, 100.0, SuccessRate(map[domain.DisputeStatus]int{domain.DisputeResolved: 4}))
}

func TestDashboard(t *testing.T) {
    ctx := context.Background()
    store := memory.New()
    now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
    past := now.AddDate(0, 0, -40)
    due := past.Add(domain.ResponseWindow)
    score := func(n int) *int { return &n }

    require.NoError(t, store.CreateUser(ctx, domain.User{ID: "owner", Email: "owner@example.com"}))
    require.NoError(t, store.CreateUser(ctx, domain.User{ID: "rival", Email: "rival@example.com"}))
    for _, c := range []domain.Client{
        {ID: "c1", UserID: "owner", Status: domain.ClientActive, CreditScore: score(600)},
        {ID: "c2", UserID: "owner", Status: domain.ClientActive, CreditScore: score(651)},
        {ID: "c3", UserID: "owner", Status: domain.ClientPending},
        {ID: "x1", UserID: "rival", Status: domain.ClientActive, CreditScore: score(800)},
    } {
        require.NoError(t, store.CreateClient(ctx, c))
    }
    for _, d := range []domain.Dispute{
        {ID: "d1", ClientID: "c1", Status: domain.DisputeResolved},
        {ID: "d2", ClientID: "c1", Status: domain.DisputeRejected},
        {ID: "d3", ClientID: "c2", Status: domain.DisputeSubmitted, SubmittedAt: &past, ResponseDueAt: &due},
        {ID: "d4", ClientID: "x1", Status: domain.DisputeResolved},
    } {
        require.NoError(t, store.CreateDispute(ctx, d))
    }
    for _, p := range []domain.Payment{
        {ID: "p1", ClientID: "c1", Amount: decimal.RequireFromString("99.50"), Status: domain.PaymentCompleted},
        {ID: "p2", ClientID: "c2", Amount: decimal.RequireFromString("49.99"), Status: domain.PaymentCompleted},
        {ID: "p3", ClientID: "c2", Amount: decimal.RequireFromString("10"), Status: domain.PaymentRefunded},
        {ID: "p4", ClientID: "x1", Amount: decimal.RequireFromString("500"), Status: domain.PaymentCompleted},
    } {
        require.NoError(t, store.CreatePayment(ctx, p))
    }

    svc := New(store)
    svc.now = func() time.Time { return now }
    got, err := svc.Dashboard(ctx, "owner")
    require.NoError(t, err)

    want := domain.Dashboard{
        ClientsByStatus:    map[domain.ClientStatus]int{domain.ClientActive: 2, domain.ClientPending: 1},
        DisputesByStatus:   map[domain.DisputeStatus]int{domain.DisputeResolved: 1, domain.DisputeRejected: 1, domain.DisputeSubmitted: 1},
        TotalClients:       3,
        TotalDisputes:      3,
        SuccessRate:        50,
        Revenue:            decimal.RequireFromString("149.49"),
        AverageCreditScore: 625.5,
        OverdueDisputes:    1,
    }
    opt := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
    if diff := cmp.Diff(want, got, opt); diff != "" {
        t.Errorf("dashboard mismatch (-want +got):\n%s", diff)
    }
}

type failing struct{ *memory.Store }

func (failing) AverageCreditScore(context.Context, string) (float64, error) {
    return 0, errors.New("boom")
}

func TestDashboardError(t *testing.T) {
    svc := New(failing{memory.New()})
    _, err := svc.Dashboard(context.Background(), "owner")
    assert.EqualError(t, err, "boom")
}
