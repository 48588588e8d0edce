package app

import (
    "context"
    "encoding/json"
    "net"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zaptest"

    "creditdesk/internal/adapters/memory"
    "creditdesk/internal/config"
    "creditdesk/internal/domain"
    "creditdesk/internal/schema"
    "creditdesk/internal/services/auth"
)

func testConfig() config.Config {
    return config.Config{
        Env:             "test",
        ListenAddr:      "127.0.0.1:0",
        JWTSecret:       "test-secret",
        AccessTokenTTL:  time.Minute,
        RefreshTokenTTL: time.Hour,
    }
}

func TestNewFallsBackToDemoMode(t *testing.T) {
    ctx := context.Background()
    a, err := New(ctx, testConfig(), zaptest.NewLogger(t))
    require.NoError(t, err)
    defer a.Close()
    assert.True(t, a.Demo)

    // seeding twice is harmless
    require.NoError(t, a.SeedDemo(ctx))

    u, err := a.Backend.GetUserByEmail(ctx, schema.DemoEmail)
    require.NoError(t, err)
    page, err := a.Services.Clients.List(ctx, u.ID, domain.ClientFilter{})
    require.NoError(t, err)
    book, demoDisputes := schema.DemoBook()
    assert.Equal(t, len(book), page.Total)

    counts, err := a.Backend.CountDisputesByStatus(ctx, u.ID)
    require.NoError(t, err)
    total := 0
    for _, n := range counts {
        total += n
    }
    assert.Equal(t, len(demoDisputes), total)
    assert.Equal(t, 1, counts[domain.DisputeInProgress])
}

func TestNewRequiresDatabaseInProduction(t *testing.T) {
    cfg := testConfig()
    cfg.Env = "production"
    _, err := New(context.Background(), cfg, zap.NewNop())
    assert.ErrorIs(t, err, config.ErrNoDatabaseURL)
}

func TestHandlerServesDemoLogin(t *testing.T) {
    ctx := context.Background()
    a := Build(testConfig(), zap.NewNop(), memory.New(), nil)
    require.NoError(t, a.SeedDemo(ctx))
    srv := httptest.NewServer(a.Handler())
    defer srv.Close()

    body := `{"email":"` + schema.DemoEmail + `","password":"` + schema.DemoPassword + `"}`
    res, err := http.Post(srv.URL+"/auth/login", "application/json", strings.NewReader(body))
    require.NoError(t, err)
    defer res.Body.Close()
    require.Equal(t, http.StatusOK, res.StatusCode)
    var tok auth.Tokens
    require.NoError(t, json.NewDecoder(res.Body).Decode(&tok))
    assert.Equal(t, domain.RoleAdmin, tok.User.Role)
}

func TestRunStopsOnCancel(t *testing.T) {
    l, err := net.Listen("tcp", "127.0.0.1:0")
    require.NoError(t, err)
    addr := l.Addr().String()
    require.NoError(t, l.Close())

    cfg := testConfig()
    cfg.ListenAddr = addr
    cfg.LetterWorkers = 2
    a := Build(cfg, zaptest.NewLogger(t), memory.New(), nil)

    ctx, cancel := context.WithCancel(context.Background())
    errCh := make(chan error, 1)
    go func() { errCh <- a.Run(ctx) }()

    require.Eventually(t, func() bool {
        res, err := http.Get("http://" + addr + "/healthz")
        if err != nil {
            return false
        }
        res.Body.Close()
        return res.StatusCode == http.StatusOK
    }, 2*time.Second, 20*time.Millisecond)

    cancel()
    select {
    case err := <-errCh:
        assert.NoError(t, err)
    case <-time.After(5 * time.Second):
        t.Fatal("Run did not return after cancel")
    }
}
