package letters

import (
    "context"
    "errors"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "creditdesk/internal/adapters/memory"
    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
    "creditdesk/internal/services/audit"
    "creditdesk/internal/services/notifications"
)

func seed(t *testing.T) (*memory.Store, *Service) {
    t.Helper()
    ctx := context.Background()
    store := memory.New()
    require.NoError(t, store.CreateUser(ctx, domain.User{ID: "owner", Email: "owner@example.com", CompanyName: "Summit Credit"}))
    require.NoError(t, store.CreateUser(ctx, domain.User{ID: "rival", Email: "rival@example.com"}))
    require.NoError(t, store.CreateClient(ctx, domain.Client{
        ID: "c1", UserID: "owner", FirstName: "Maria", LastName: "Garcia",
        Address: "12 Elm St", City: "Austin", State: "TX", ZipCode: "78701", SSNLast4: "4321",
    }))
    require.NoError(t, store.CreateClient(ctx, domain.Client{ID: "c2", UserID: "owner", FirstName: "Other", LastName: "Client"}))
    require.NoError(t, store.CreateDispute(ctx, domain.Dispute{
        ID: "d1", ClientID: "c1", Bureau: domain.BureauTransUnion, AccountName: "Midland Credit",
        AccountNumber: "****9876", Reason: "Account paid in full", Status: domain.DisputeDraft,
    }))
    return store, New(store, store, store, audit.New(store, zap.NewNop()))
}

func TestEnqueue(t *testing.T) {
    store, svc := seed(t)
    ctx := context.Background()

    l, err := svc.Enqueue(ctx, "owner", Request{ClientID: "c1", DisputeID: "d1"})
    require.NoError(t, err)
    assert.Equal(t, domain.TemplateDispute, l.Template)
    assert.Equal(t, domain.BureauTransUnion, l.Bureau)
    assert.Equal(t, domain.LetterQueued, l.Status)
    assert.Equal(t, Subject(domain.TemplateDispute), l.Subject)
    status, _ := store.JobStatus(l.ID)
    assert.Equal(t, "queued", status)

    l, err = svc.Enqueue(ctx, "owner", Request{ClientID: "c1", DisputeID: "d1", Bureau: "equifax", Template: domain.TemplateGoodwill})
    require.NoError(t, err)
    assert.Equal(t, domain.BureauEquifax, l.Bureau)

    cases := []struct {
        name string
        req  Request
        want error
    }{
        {"unknown template", Request{ClientID: "c1", Bureau: "experian", Template: "threat"}, domain.ErrInvalid},
        {"no bureau", Request{ClientID: "c1"}, domain.ErrInvalid},
        {"dispute of other client", Request{ClientID: "c2", DisputeID: "d1"}, domain.ErrInvalid},
        {"missing client", Request{ClientID: "nope", Bureau: "experian"}, domain.ErrNotFound},
        {"missing dispute", Request{ClientID: "c1", DisputeID: "nope"}, domain.ErrNotFound},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            _, err := svc.Enqueue(ctx, "owner", tc.req)
            assert.True(t, errors.Is(err, tc.want), "got %v", err)
        })
    }

    _, err = svc.Enqueue(ctx, "rival", Request{ClientID: "c1", Bureau: "experian"})
    assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGeneratorAndMarkSent(t *testing.T) {
    store, svc := seed(t)
    ctx := context.Background()
    l, err := svc.Enqueue(ctx, "owner", Request{ClientID: "c1", DisputeID: "d1"})
    require.NoError(t, err)

    _, err = svc.MarkSent(ctx, "owner", l.ID)
    assert.True(t, errors.Is(err, domain.ErrConflict))

    jobID, err := store.StartJobForLetter(ctx, l.ID)
    require.NoError(t, err)
    gen := Generator{Source: store, Notifier: notifications.New(store), Log: zap.NewNop(),
        Now: func() time.Time { return time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC) }}
    require.NoError(t, gen.Process(ctx, l.ID))
    require.NoError(t, store.MarkCompleted(ctx, jobID))

    got, err := svc.Get(ctx, "owner", l.ID)
    require.NoError(t, err)
    assert.Equal(t, domain.LetterReady, got.Status)
    assert.Contains(t, got.Content, "March 4, 2026")
    assert.Contains(t, got.Content, "TransUnion LLC Consumer Dispute Center")
    assert.Contains(t, got.Content, "Midland Credit")
    assert.Contains(t, got.Content, "Austin, TX 78701")
    assert.Contains(t, got.Content, "Summit Credit")

    notes, err := store.ListNotifications(ctx, "owner", true)
    require.NoError(t, err)
    require.Len(t, notes, 1)
    assert.Equal(t, "letter", notes[0].Kind)

    sent, err := svc.MarkSent(ctx, "owner", l.ID)
    require.NoError(t, err)
    assert.Equal(t, domain.LetterSent, sent.Status)
    require.NotNil(t, sent.SentAt)

    list, err := svc.ListByClient(ctx, "owner", "c1")
    require.NoError(t, err)
    require.Len(t, list, 1)
    _, err = svc.ListByClient(ctx, "rival", "c1")
    assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRenderTemplates(t *testing.T) {
    now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
    client := domain.Client{FirstName: "Ann", LastName: "Lee"}
    for _, tmpl := range []domain.LetterTemplate{
        domain.TemplateDispute, domain.TemplateGoodwill, domain.TemplateDebtValidation, domain.TemplateMethodOfVerification,
    } {
        t.Run(string(tmpl), func(t *testing.T) {
            out, err := Render(ports.LetterRender{
                Letter: domain.Letter{Template: tmpl, Bureau: domain.BureauExperian, Subject: Subject(tmpl)},
                Client: client,
            }, now)
            require.NoError(t, err)
            assert.True(t, strings.HasPrefix(out, "Ann Lee\n"))
            assert.Contains(t, out, "P.O. Box 4500")
            assert.Contains(t, out, "RE: "+Subject(tmpl))
            assert.Contains(t, out, "the account referenced above")
            assert.NotContains(t, out, "<no value>")
        })
    }

    _, err := Render(ports.LetterRender{Letter: domain.Letter{Template: "bogus"}}, now)
    assert.True(t, errors.Is(err, domain.ErrInvalid))
}
