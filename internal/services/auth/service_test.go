package auth

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "creditdesk/internal/adapters/memory"
    "creditdesk/internal/domain"
)

func newService(t *testing.T) (*Service, *memory.Store) {
    t.Helper()
    store := memory.New()
    return New(store, store, Options{Secret: []byte("test-secret")}), store
}

func register(t *testing.T, s *Service) domain.User {
    t.Helper()
    u, err := s.Register(context.Background(), RegisterInput{
        Email: " Owner@Example.com ", Password: "hunter2hunter2", FirstName: "Olive", LastName: "Owner",
    })
    require.NoError(t, err)
    return u
}

func TestRegisterValidates(t *testing.T) {
    s, _ := newService(t)
    ctx := context.Background()

    _, err := s.Register(ctx, RegisterInput{Email: "nope", Password: "longenough"})
    assert.True(t, errors.Is(err, domain.ErrInvalid))
    _, err = s.Register(ctx, RegisterInput{Email: "a@b.com", Password: "short"})
    assert.True(t, errors.Is(err, domain.ErrInvalid))

    u := register(t, s)
    assert.Equal(t, "owner@example.com", u.Email)
    assert.Equal(t, domain.RoleAdmin, u.Role)
    assert.NotEqual(t, "hunter2hunter2", u.PasswordHash)

    _, err = s.Register(ctx, RegisterInput{Email: "owner@example.com", Password: "another-password"})
    assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestLoginAndParse(t *testing.T) {
    s, _ := newService(t)
    u := register(t, s)
    ctx := context.Background()

    _, err := s.Login(ctx, "owner@example.com", "wrong-password")
    assert.True(t, errors.Is(err, domain.ErrUnauthorized))
    _, err = s.Login(ctx, "ghost@example.com", "hunter2hunter2")
    assert.True(t, errors.Is(err, domain.ErrUnauthorized))

    tok, err := s.Login(ctx, "OWNER@example.com", "hunter2hunter2")
    require.NoError(t, err)
    assert.NotEmpty(t, tok.RefreshToken)

    p, err := s.ParseAccessToken(tok.AccessToken)
    require.NoError(t, err)
    assert.Equal(t, u.ID, p.UserID)
    assert.Equal(t, domain.RoleAdmin, p.Role)

    other := New(memory.New(), memory.New(), Options{Secret: []byte("other-secret")})
    _, err = other.ParseAccessToken(tok.AccessToken)
    assert.True(t, errors.Is(err, domain.ErrUnauthorized))
    _, err = s.ParseAccessToken("garbage")
    assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefreshRotatesToken(t *testing.T) {
    s, _ := newService(t)
    register(t, s)
    ctx := context.Background()

    first, err := s.Login(ctx, "owner@example.com", "hunter2hunter2")
    require.NoError(t, err)
    second, err := s.Refresh(ctx, first.RefreshToken)
    require.NoError(t, err)
    assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

    // the old token is spent
    _, err = s.Refresh(ctx, first.RefreshToken)
    assert.True(t, errors.Is(err, domain.ErrUnauthorized))

    require.NoError(t, s.Logout(ctx, second.RefreshToken))
    _, err = s.Refresh(ctx, second.RefreshToken)
    assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefreshTokenExpires(t *testing.T) {
    s, _ := newService(t)
    register(t, s)
    ctx := context.Background()

    tok, err := s.Login(ctx, "owner@example.com", "hunter2hunter2")
    require.NoError(t, err)

    s.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
    _, err = s.Refresh(ctx, tok.RefreshToken)
    assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestExpiredAccessTokenRejected(t *testing.T) {
    s, _ := newService(t)
    register(t, s)
    s.now = func() time.Time { return time.Now().Add(-time.Hour) }
    tok, err := s.Login(context.Background(), "owner@example.com", "hunter2hunter2")
    require.NoError(t, err)
    _, err = s.ParseAccessToken(tok.AccessToken)
    assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
