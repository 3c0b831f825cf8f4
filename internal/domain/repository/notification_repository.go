package repository

import (
	"context"
	"sparkos/internal/domain/entity"

	"github.com/google/uuid"
)

// NotificationRepository stores pending toasts per user
type NotificationRepository interface {
	// Push appends a toast, dropping the oldest ones past the store's cap
	Push(ctx context.Context, n *entity.Notification) error

	// Drain returns and removes all pending toasts of a user, oldest first
	Drain(ctx context.Context, userID uuid.UUID) ([]*entity.Notification, error)
}
