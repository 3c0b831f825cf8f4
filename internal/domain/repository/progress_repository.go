package repository

import (
	"context"
	"sparkos/internal/domain/entity"

	"github.com/google/uuid"
)

// ProgressRepository defines the interface for user progress persistence
type ProgressRepository interface {
	// Get retrieves the progress row of a user. Returns entity.ErrNotFound if
	// the user has never earned XP.
	Get(ctx context.Context, userID uuid.UUID) (*entity.UserProgress, error)

	// GetForUpdate is Get with a row lock held until the unit of work ends
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*entity.UserProgress, error)

	// Upsert creates or replaces the progress row
	Upsert(ctx context.Context, progress *entity.UserProgress) error
}
