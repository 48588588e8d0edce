package config

import (
    "errors"
    "fmt"
    "os"
    "time"

    "github.com/joho/godotenv"
)

type Config struct {
    Env             string
    ListenAddr      string
    DatabaseURL     string
    LetterWorkers   int
    JWTSecret       string
    AccessTokenTTL  time.Duration
    RefreshTokenTTL time.Duration
    LogLevel        string
    SQLitePath      string
}

// ErrNoDatabaseURL is returned by Load when DATABASE_URL is unset. The rest of
// the config is still usable, so callers decide whether it is fatal.
var ErrNoDatabaseURL = errors.New("DATABASE_URL not set")

// ErrNoJWTSecret is returned by Load in production when JWT_SECRET is unset.
// Only processes that issue tokens should treat it as fatal.
var ErrNoJWTSecret = errors.New("JWT_SECRET is required in production")

const devJWTSecret = "dev-insecure-secret"

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// Load reads .env files (never overriding the real environment) and then the
// process environment.
func Load(envFiles ...string) (Config, error) {
    if len(envFiles) == 0 {
        envFiles = []string{".env"}
    }
    for _, f := range envFiles {
        if _, err := os.Stat(f); err != nil {
            continue
        }
        if err := godotenv.Load(f); err != nil {
            return Config{}, fmt.Errorf("load %s: %w", f, err)
        }
    }

    cfg := Config{
        Env:             getenv("APP_ENV", "development"),
        ListenAddr:      getenv("LISTEN_ADDR", ":8080"),
        DatabaseURL:     os.Getenv("DATABASE_URL"),
        LetterWorkers:   getenvInt("LETTER_WORKERS", 0),
        JWTSecret:       os.Getenv("JWT_SECRET"),
        AccessTokenTTL:  getenvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
        RefreshTokenTTL: getenvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
        LogLevel:        getenv("LOG_LEVEL", "info"),
        SQLitePath:      getenv("SQLITE_PATH", "data/creditdesk.db"),
    }
    var missing []error
    if cfg.JWTSecret == "" {
        if cfg.IsProduction() {
            missing = append(missing, ErrNoJWTSecret)
        } else {
            cfg.JWTSecret = devJWTSecret
        }
    }
    if cfg.DatabaseURL == "" {
        // Not fatal for early local runs; warn via error value so callers can decide.
        missing = append(missing, ErrNoDatabaseURL)
    }
    return cfg, errors.Join(missing...)
}

// OnlyMissing reports whether err is nothing but the unset-variable errors Load
// tolerates, so the config it returned is still usable by tooling.
func OnlyMissing(err error) bool {
    if err == nil {
        return true
    }
    var errs []error
    if j, ok := err.(interface{ Unwrap() []error }); ok {
        errs = j.Unwrap()
    } else {
        errs = []error{err}
    }
    for _, e := range errs {
        if e != ErrNoDatabaseURL && e != ErrNoJWTSecret {
            return false
        }
    }
    return true
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func getenvInt(key string, def int) int {
    if v := os.Getenv(key); v != "" {
        var out int
        _, err := fmt.Sscanf(v, "%d", &out)
        if err == nil { return out }
    }
    return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
    if v := os.Getenv(key); v != "" {
        if d, err := time.ParseDuration(v); err == nil && d > 0 {
            return d
        }
    }
    return def
}
