package service

import (
	"context"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/event"

	"github.com/google/uuid"
)

// NotificationService turns domain events into user-facing toasts
type NotificationService interface {
	// HandleEvent renders an event and stores the toast for its owner
	HandleEvent(ctx context.Context, e event.Event) error

	// Drain returns and removes the pending toasts of a user, oldest first
	Drain(ctx context.Context, userID uuid.UUID) ([]*entity.Notification, error)
}
