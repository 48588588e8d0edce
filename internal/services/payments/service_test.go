package payments

import (
    "context"
    "errors"
    "testing"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "creditdesk/internal/adapters/memory"
    "creditdesk/internal/domain"
    "creditdesk/internal/services/audit"
)

func setup(t *testing.T) (*memory.Store, *Service) {
    t.Helper()
    store := memory.New()
    ctx := context.Background()
    require.NoError(t, store.CreateUser(ctx, domain.User{ID: "owner", Email: "owner@example.com"}))
    require.NoError(t, store.CreateClient(ctx, domain.Client{ID: "c1", UserID: "owner", FirstName: "A", LastName: "B"}))
    return store, New(store, store, audit.New(store, zap.NewNop()))
}

func TestRecordPayment(t *testing.T) {
    store, svc := setup(t)
    ctx := context.Background()

    p, err := svc.Record(ctx, "owner", "c1", Input{Amount: decimal.RequireFromString("99.995"), Method: "card"})
    require.NoError(t, err)
    assert.Equal(t, "100.00", p.Amount.StringFixed(2))
    assert.Equal(t, "USD", p.Currency)
    assert.Equal(t, domain.PaymentCompleted, p.Status)
    require.NotNil(t, p.PaidAt)

    pending, err := svc.Record(ctx, "owner", "c1", Input{Amount: decimal.NewFromInt(50), Status: domain.PaymentPending})
    require.NoError(t, err)
    assert.Nil(t, pending.PaidAt)

    for name, in := range map[string]Input{
        "zero":     {Amount: decimal.Zero},
        "negative": {Amount: decimal.NewFromInt(-5)},
        "currency": {Amount: decimal.NewFromInt(5), Currency: "dollars"},
        "refunded": {Amount: decimal.NewFromInt(5), Status: domain.PaymentRefunded},
    } {
        _, err := svc.Record(ctx, "owner", "c1", in)
        assert.True(t, errors.Is(err, domain.ErrInvalid), name)
    }
    _, err = svc.Record(ctx, "rival", "c1", Input{Amount: decimal.NewFromInt(5)})
    assert.True(t, errors.Is(err, domain.ErrNotFound))

    list, err := svc.List(ctx, "owner", "c1")
    require.NoError(t, err)
    assert.Len(t, list, 2)

    sum, err := store.SumCompletedPayments(ctx, "owner")
    require.NoError(t, err)
    assert.True(t, sum.Equal(decimal.NewFromInt(100)))
}

func TestRefund(t *testing.T) {
    store, svc := setup(t)
    ctx := context.Background()

    p, err := svc.Record(ctx, "owner", "c1", Input{Amount: decimal.NewFromInt(120)})
    require.NoError(t, err)

    _, err = svc.Refund(ctx, "rival", p.ID)
    assert.True(t, errors.Is(err, domain.ErrNotFound))

    r, err := svc.Refund(ctx, "owner", p.ID)
    require.NoError(t, err)
    assert.Equal(t, domain.PaymentRefunded, r.Status)

    _, err = svc.Refund(ctx, "owner", p.ID)
    assert.True(t, errors.Is(err, domain.ErrConflict))

    sum, err := store.SumCompletedPayments(ctx, "owner")
    require.NoError(t, err)
    assert.True(t, sum.IsZero())
}
