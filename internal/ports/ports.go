package ports

import (
    "context"

    "creditdesk/internal/domain"
)

// LetterRender bundles a letter with the records its template reads.
type LetterRender struct {
    Letter  domain.Letter
    Client  domain.Client
    Dispute *domain.Dispute
    Sender  domain.User
}

// Notifier delivers in-app notifications to a user.
type Notifier interface {
    Notify(ctx context.Context, userID, kind, title, message string) error
}

// Auditor records who changed what.
type Auditor interface {
    Record(ctx context.Context, userID, action, entityType, entityID string, details any)
}
