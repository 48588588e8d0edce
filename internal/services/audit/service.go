package audit

import (
    "context"
    "encoding/json"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

const (
    defaultLimit = 50
    maxLimit     = 500
)

type Service struct {
    repo ports.AuditRepository
    log  *zap.Logger
}

func New(repo ports.AuditRepository, log *zap.Logger) *Service {
    return &Service{repo: repo, log: log}
}

// Record stores an audit entry. Failures are logged, never returned: a lost
// audit row must not undo the change it describes.
func (s *Service) Record(ctx context.Context, userID, action, entityType, entityID string, details any) {
    entry := domain.AuditLog{
        ID:         uuid.NewString(),
        UserID:     userID,
        Action:     action,
        EntityType: entityType,
        EntityID:   entityID,
        CreatedAt:  time.Now().UTC(),
    }
    if details != nil {
        b, err := json.Marshal(details)
        if err != nil {
            s.log.Warn("audit details not serializable", zap.String("action", action), zap.Error(err))
        } else {
            entry.Details = string(b)
        }
    }
    if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
        s.log.Error("audit write failed",
            zap.String("action", action),
            zap.String("entity", entityType),
            zap.String("entity_id", entityID),
            zap.Error(err))
    }
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]domain.AuditLog, error) {
    if limit <= 0 {
        limit = defaultLimit
    }
    if limit > maxLimit {
        limit = maxLimit
    }
    return s.repo.ListAuditLogs(ctx, userID, limit)
}
