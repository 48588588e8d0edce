package documents

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "creditdesk/internal/adapters/memory"
    "creditdesk/internal/domain"
    "creditdesk/internal/services/audit"
)

func TestDocuments(t *testing.T) {
    ctx := context.Background()
    store := memory.New()
    require.NoError(t, store.CreateUser(ctx, domain.User{ID: "owner", Email: "owner@example.com"}))
    require.NoError(t, store.CreateClient(ctx, domain.Client{ID: "c1", UserID: "owner", FirstName: "A", LastName: "B"}))
    svc := New(store, store, audit.New(store, zap.NewNop()))

    d, err := svc.Create(ctx, "owner", "c1", Input{FileName: "Drivers-License.PDF", FileSize: 2048, Category: "ID"})
    require.NoError(t, err)
    assert.Equal(t, "pdf", d.FileType)
    assert.Equal(t, "id", d.Category)
    assert.Equal(t, "clients/c1/"+d.ID+".PDF", d.StoragePath)

    for name, in := range map[string]Input{
        "no name":   {FileSize: 1},
        "path":      {FileName: "../etc/passwd"},
        "negative":  {FileName: "a.pdf", FileSize: -1},
        "category":  {FileName: "a.pdf", Category: "selfie"},
    } {
        _, err := svc.Create(ctx, "owner", "c1", in)
        assert.True(t, errors.Is(err, domain.ErrInvalid), name)
    }

    list, err := svc.List(ctx, "owner", "c1")
    require.NoError(t, err)
    require.Len(t, list, 1)

    assert.True(t, errors.Is(svc.Delete(ctx, "rival", d.ID), domain.ErrNotFound))
    require.NoError(t, svc.Delete(ctx, "owner", d.ID))
    assert.True(t, errors.Is(svc.Delete(ctx, "owner", d.ID), domain.ErrNotFound))

    list, err = svc.List(ctx, "owner", "c1")
    require.NoError(t, err)
    assert.Empty(t, list)
}
