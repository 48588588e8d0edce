package notifications

import (
    "context"
    "time"

    "github.com/google/uuid"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

type Service struct {
    repo ports.NotificationRepository
}

func New(repo ports.NotificationRepository) *Service { return &Service{repo: repo} }

func (s *Service) Notify(ctx context.Context, userID, kind, title, message string) error {
    if kind == "" {
        kind = "info"
    }
    return s.repo.CreateNotification(ctx, domain.Notification{
        ID:        uuid.NewString(),
        UserID:    userID,
        Title:     title,
        Message:   message,
        Kind:      kind,
        CreatedAt: time.Now().UTC(),
    })
}

func (s *Service) List(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
    return s.repo.ListNotifications(ctx, userID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
    return s.repo.MarkNotificationRead(ctx, userID, id)
}
