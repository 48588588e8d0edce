package commands

import (
    "bytes"
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "gopkg.in/yaml.v3"

    "creditdesk/internal/config"
    "creditdesk/internal/schema"
)

// run executes creditctl with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
    t.Helper()
    root := newRoot()
    var out bytes.Buffer
    root.SetOut(&out)
    root.SetErr(&out)
    root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"}, args...))
    err := root.Execute()
    return out.String(), err
}

func unset(t *testing.T, keys ...string) {
    t.Helper()
    for _, k := range keys {
        t.Setenv(k, "")
        require.NoError(t, os.Unsetenv(k))
    }
}

func TestSetupSQLite(t *testing.T) {
    unset(t, "DATABASE_URL")
    path := filepath.Join(t.TempDir(), "nested", "dir", "creditdesk.db")

    out, err := run(t, "setup-sqlite", "--path", path)
    require.NoError(t, err)
    for _, table := range schema.DropOrder {
        assert.Contains(t, out, "✓ "+table)
    }
    assert.Contains(t, out, "sqlite database ready at "+path)
    assert.Contains(t, out, "login: "+schema.DemoEmail)
    assert.FileExists(t, path)

    // a second run keeps the data and skips seeding
    out, err = run(t, "setup-sqlite", "--path", path)
    require.NoError(t, err)
    assert.Contains(t, out, "already present")
}

func TestResetRequiresForce(t *testing.T) {
    unset(t, "DATABASE_URL")
    path := filepath.Join(t.TempDir(), "reset.db")
    _, err := run(t, "setup-sqlite", "--path", path, "--no-seed")
    require.NoError(t, err)

    _, err = run(t, "reset", "--dialect", "sqlite", "--dsn", path)
    assert.EqualError(t, err, "refusing to reset without --force")

    out, err := run(t, "reset", "--force", "--reseed", "--dialect", "sqlite", "--dsn", path)
    require.NoError(t, err)
    assert.Contains(t, out, "applied 1 migration(s)")
    assert.Contains(t, out, "seeded")
}

func TestMigrateAndSeedSQLite(t *testing.T) {
    unset(t, "DATABASE_URL")
    path := filepath.Join(t.TempDir(), "m.db")

    out, err := run(t, "migrate", "--dialect", "sqlite", "--dsn", path)
    require.NoError(t, err)
    assert.Contains(t, out, "schema at version 1")

    out, err = run(t, "seed", "--dialect", "sqlite", "--dsn", path)
    require.NoError(t, err)
    assert.Contains(t, out, "users=1")

    _, err = run(t, "migrate", "--dialect", "oracle", "--dsn", path)
    assert.Error(t, err)
}

func TestMigrateNeedsConnectionString(t *testing.T) {
    unset(t, "DATABASE_URL")
    _, err := run(t, "migrate")
    assert.ErrorContains(t, err, "no postgres connection string")
}

func TestDeployConfig(t *testing.T) {
    unset(t, "DATABASE_URL", "JWT_SECRET", "LISTEN_ADDR", "APP_ENV")

    out, err := run(t, "deploy-config")
    assert.ErrorContains(t, err, "DATABASE_URL")
    assert.Contains(t, out, "✗ JWT_SECRET")

    t.Setenv("DATABASE_URL", "postgres://app:s3cret@db:5432/creditdesk")
    t.Setenv("JWT_SECRET", "prod-secret")
    t.Setenv("LISTEN_ADDR", ":9090")
    t.Setenv("APP_ENV", "production")
    dest := filepath.Join(t.TempDir(), "deploy", "creditdesk.yaml")

    out, err = run(t, "deploy-config", "--configure", "--out", dest)
    require.NoError(t, err)
    assert.Contains(t, out, "wrote "+dest)
    assert.NotContains(t, out, "s3cret")

    raw, err := os.ReadFile(dest)
    require.NoError(t, err)
    var dc config.DeployConfig
    require.NoError(t, yaml.Unmarshal(raw, &dc))
    assert.Equal(t, "production", dc.Environment)
    assert.Equal(t, ":9090", dc.ListenAddr)
    assert.Equal(t, "postgres://app:xxxxx@db:5432/creditdesk", dc.Database.DSN)
    assert.Empty(t, dc.Missing())
}

func TestProductionWithoutSecret(t *testing.T) {
    unset(t, "DATABASE_URL", "JWT_SECRET", "LISTEN_ADDR")
    t.Setenv("APP_ENV", "production")

    out, err := run(t, "deploy-config")
    assert.ErrorContains(t, err, "JWT_SECRET")
    assert.Contains(t, out, "environment:    production")
    assert.Contains(t, out, "✗ JWT_SECRET")
    assert.Contains(t, out, "✓ APP_ENV")

    path := filepath.Join(t.TempDir(), "prod.db")
    out, err = run(t, "migrate", "--dialect", "sqlite", "--dsn", path)
    require.NoError(t, err)
    assert.Contains(t, out, "schema at version 1")

    _, err = run(t, "start-dev")
    assert.ErrorIs(t, err, config.ErrNoJWTSecret)
}

func TestVersion(t *testing.T) {
    out, err := run(t, "version")
    require.NoError(t, err)
    assert.Equal(t, "creditctl dev\n", out)
}
