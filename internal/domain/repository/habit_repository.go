package repository

import (
	"context"
	"sparkos/internal/domain/entity"
	"time"

	"github.com/google/uuid"
)

// HabitRepository defines the interface for habit persistence
type HabitRepository interface {
	// Create creates a new habit
	Create(ctx context.Context, habit *entity.Habit) error

	// GetByIDAndUserID retrieves a habit by ID and user ID (for authorization)
	GetByIDAndUserID(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)

	// GetByIDForUpdate retrieves a habit and locks it until the surrounding
	// unit of work ends
	GetByIDForUpdate(ctx context.Context, habitID uuid.UUID) (*entity.Habit, error)

	// GetByUserID retrieves all habits for a user
	GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.Habit, error)

	// ListActive retrieves all active habits (scheduler input)
	ListActive(ctx context.Context) ([]*entity.Habit, error)

	// Update updates title and description
	Update(ctx context.Context, habit *entity.Habit) error

	// UpdateStreak stores the streak snapshot of a habit
	UpdateStreak(ctx context.Context, habitID uuid.UUID, streak entity.StreakState) error

	// Deactivate soft deletes a habit (sets is_active = false) as of at
	Deactivate(ctx context.Context, habitID uuid.UUID, at time.Time) error
}
