package config

import (
    "fmt"
    "net/url"
    "os"
    "regexp"
    "strings"

    "gopkg.in/yaml.v3"
)

// RequiredEnv lists the variables a production deployment must provide.
var RequiredEnv = []string{"DATABASE_URL", "JWT_SECRET", "LISTEN_ADDR", "APP_ENV"}

type EnvVar struct {
    Name    string `yaml:"name"`
    Present bool   `yaml:"present"`
}

type DeployDatabase struct {
    DSN    string `yaml:"dsn"`
    Driver string `yaml:"driver"`
}

type DeployTokens struct {
    AccessTTL  string `yaml:"access_ttl"`
    RefreshTTL string `yaml:"refresh_ttl"`
}

// DeployConfig is the document written by `creditctl deploy-config --configure`.
type DeployConfig struct {
    App           string         `yaml:"app"`
    Environment   string         `yaml:"environment"`
    ListenAddr    string         `yaml:"listen_addr"`
    LetterWorkers int            `yaml:"letter_workers"`
    LogLevel      string         `yaml:"log_level"`
    Database      DeployDatabase `yaml:"database"`
    Tokens        DeployTokens   `yaml:"tokens"`
    Env           []EnvVar       `yaml:"env"`
}

func NewDeployConfig(cfg Config) DeployConfig {
    dc := DeployConfig{
        App:           "creditdesk",
        Environment:   cfg.Env,
        ListenAddr:    cfg.ListenAddr,
        LetterWorkers: cfg.LetterWorkers,
        LogLevel:      cfg.LogLevel,
        Database:      DeployDatabase{DSN: RedactDSN(cfg.DatabaseURL), Driver: "postgres"},
        Tokens: DeployTokens{
            AccessTTL:  cfg.AccessTokenTTL.String(),
            RefreshTTL: cfg.RefreshTokenTTL.String(),
        },
    }
    for _, name := range RequiredEnv {
        dc.Env = append(dc.Env, EnvVar{Name: name, Present: os.Getenv(name) != ""})
    }
    return dc
}

// Missing returns the required variables that are not set.
func (d DeployConfig) Missing() []string {
    var out []string
    for _, v := range d.Env {
        if !v.Present {
            out = append(out, v.Name)
        }
    }
    return out
}

// Check fails when any required variable is absent.
func (d DeployConfig) Check() error {
    if m := d.Missing(); len(m) > 0 {
        return fmt.Errorf("missing required environment variables: %v", m)
    }
    return nil
}

func (d DeployConfig) YAML() ([]byte, error) {
    return yaml.Marshal(d)
}

const redacted = "xxxxx"

// kvPassword matches the password of a keyword/value DSN, quoted or bare.
var kvPassword = regexp.MustCompile(`(?i)(\bpassword\s*=\s*)('(?:[^'\\]|\\.)*'|\S+)`)

// RedactDSN hides the password of a connection string, in URL form
// (postgres://user:pw@host/db?password=pw) or keyword/value form
// (host=db user=app password=pw).
func RedactDSN(dsn string) string {
    if dsn == "" {
        return ""
    }
    u, err := url.Parse(dsn)
    if err != nil {
        // unparseable URL: keep only the scheme
        if i := strings.Index(dsn, "://"); i > 0 {
            return dsn[:i+3] + redacted
        }
    }
    if err != nil || u.Scheme == "" {
        return kvPassword.ReplaceAllString(dsn, "${1}"+redacted)
    }
    if u.User != nil {
        if _, ok := u.User.Password(); ok {
            u.User = url.UserPassword(u.User.Username(), redacted)
        }
    }
    if q := u.Query(); q.Has("password") {
        q.Set("password", redacted)
        u.RawQuery = q.Encode()
    }
    return u.String()
}
