package settings

import (
    "context"
    "strings"
    "time"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

const (
    maxKeyLength   = 64
    maxValueLength = 4096
)

type Service struct {
    repo ports.SettingRepository
}

func New(repo ports.SettingRepository) *Service { return &Service{repo: repo} }

func (s *Service) List(ctx context.Context, userID string) ([]domain.Setting, error) {
    return s.repo.ListSettings(ctx, userID)
}

func (s *Service) Put(ctx context.Context, userID, key, value string) (domain.Setting, error) {
    key = strings.TrimSpace(key)
    if key == "" || len(key) > maxKeyLength {
        return domain.Setting{}, domain.Invalidf("key", "must be 1-%d characters", maxKeyLength)
    }
    if len(value) > maxValueLength {
        return domain.Setting{}, domain.Invalidf("value", "longer than %d bytes", maxValueLength)
    }
    st := domain.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
    if err := s.repo.PutSetting(ctx, userID, st); err != nil {
        return domain.Setting{}, err
    }
    return st, nil
}
