// Package auth registers staff accounts and issues access and refresh tokens.
package auth

import (
    "context"
    "crypto/rand"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "fmt"
    "net/mail"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v4"
    "github.com/google/uuid"
    "golang.org/x/crypto/bcrypt"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

const (
    MinPasswordLength = 8
    issuer            = "creditdesk"
)

type Options struct {
    Secret     []byte
    AccessTTL  time.Duration
    RefreshTTL time.Duration
}

type Service struct {
    users  ports.UserRepository
    tokens ports.TokenRepository
    opts   Options
    now    func() time.Time
}

func New(users ports.UserRepository, tokens ports.TokenRepository, opts Options) *Service {
    if opts.AccessTTL <= 0 {
        opts.AccessTTL = 15 * time.Minute
    }
    if opts.RefreshTTL <= 0 {
        opts.RefreshTTL = 30 * 24 * time.Hour
    }
    return &Service{users: users, tokens: tokens, opts: opts, now: time.Now}
}

// Principal is the authenticated caller carried on request contexts.
type Principal struct {
    UserID string
    Role   domain.Role
}

type Claims struct {
    Role domain.Role `json:"role"`
    jwt.RegisteredClaims
}

type Tokens struct {
    AccessToken  string      `json:"accessToken"`
    RefreshToken string      `json:"refreshToken"`
    ExpiresAt    time.Time   `json:"expiresAt"`
    User         domain.User `json:"user"`
}

type RegisterInput struct {
    Email       string `json:"email"`
    Password    string `json:"password"`
    FirstName   string `json:"firstName"`
    LastName    string `json:"lastName"`
    CompanyName string `json:"companyName"`
}

// Register creates a new tenant account; the registering user administers it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
    email := strings.ToLower(strings.TrimSpace(in.Email))
    if _, err := mail.ParseAddress(email); err != nil {
        return domain.User{}, domain.Invalidf("email", "not a valid address")
    }
    if len(in.Password) < MinPasswordLength {
        return domain.User{}, domain.Invalidf("password", "must be at least %d characters", MinPasswordLength)
    }
    hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
    if err != nil {
        return domain.User{}, fmt.Errorf("hash password: %w", err)
    }
    now := s.now().UTC()
    u := domain.User{
        ID:           uuid.NewString(),
        Email:        email,
        PasswordHash: string(hash),
        FirstName:    strings.TrimSpace(in.FirstName),
        LastName:     strings.TrimSpace(in.LastName),
        CompanyName:  strings.TrimSpace(in.CompanyName),
        Role:         domain.RoleAdmin,
        Active:       true,
        CreatedAt:    now,
        UpdatedAt:    now,
    }
    if err := s.users.CreateUser(ctx, u); err != nil {
        return domain.User{}, err
    }
    return u, nil
}

// Login checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Tokens, error) {
    u, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
    if errors.Is(err, domain.ErrNotFound) {
        return Tokens{}, domain.ErrUnauthorized
    }
    if err != nil {
        return Tokens{}, err
    }
    if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
        return Tokens{}, domain.ErrUnauthorized
    }
    if !u.Active {
        return Tokens{}, domain.ErrForbidden
    }
    return s.issue(ctx, u)
}

// Refresh exchanges a live refresh token for a new pair; the presented token
// is revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
    rt, err := s.lookup(ctx, refreshToken)
    if err != nil {
        return Tokens{}, err
    }
    u, err := s.users.GetUser(ctx, rt.UserID)
    if err != nil {
        return Tokens{}, err
    }
    if !u.Active {
        return Tokens{}, domain.ErrForbidden
    }
    if err := s.tokens.RevokeRefreshToken(ctx, rt.ID, s.now().UTC()); err != nil {
        return Tokens{}, err
    }
    return s.issue(ctx, u)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
    rt, err := s.lookup(ctx, refreshToken)
    if err != nil {
        return err
    }
    return s.tokens.RevokeRefreshToken(ctx, rt.ID, s.now().UTC())
}

func (s *Service) lookup(ctx context.Context, refreshToken string) (domain.RefreshToken, error) {
    rt, err := s.tokens.GetRefreshToken(ctx, hashToken(refreshToken))
    if errors.Is(err, domain.ErrNotFound) {
        return rt, domain.ErrUnauthorized
    }
    if err != nil {
        return rt, err
    }
    if rt.RevokedAt != nil || !s.now().Before(rt.ExpiresAt) {
        return rt, domain.ErrUnauthorized
    }
    return rt, nil
}

func (s *Service) issue(ctx context.Context, u domain.User) (Tokens, error) {
    now := s.now().UTC()
    exp := now.Add(s.opts.AccessTTL)
    claims := Claims{
        Role: u.Role,
        RegisteredClaims: jwt.RegisteredClaims{
            Issuer:    issuer,
            Subject:   u.ID,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
            ID:        uuid.NewString(),
        },
    }
    access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
    if err != nil {
        return Tokens{}, fmt.Errorf("sign access token: %w", err)
    }

    raw := make([]byte, 32)
    if _, err := rand.Read(raw); err != nil {
        return Tokens{}, err
    }
    refresh := hex.EncodeToString(raw)
    if err := s.tokens.SaveRefreshToken(ctx, domain.RefreshToken{
        ID:        uuid.NewString(),
        UserID:    u.ID,
        TokenHash: hashToken(refresh),
        ExpiresAt: now.Add(s.opts.RefreshTTL),
        CreatedAt: now,
    }); err != nil {
        return Tokens{}, fmt.Errorf("save refresh token: %w", err)
    }
    return Tokens{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp, User: u}, nil
}

// ParseAccessToken validates signature, issuer and expiry.
func (s *Service) ParseAccessToken(token string) (Principal, error) {
    var claims Claims
    parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
        }
        return s.opts.Secret, nil
    })
    if err != nil || !parsed.Valid {
        return Principal{}, domain.ErrUnauthorized
    }
    if !claims.VerifyIssuer(issuer, true) || claims.Subject == "" {
        return Principal{}, domain.ErrUnauthorized
    }
    return Principal{UserID: claims.Subject, Role: claims.Role}, nil
}

func hashToken(t string) string {
    sum := sha256.Sum256([]byte(t))
    return hex.EncodeToString(sum[:])
}
