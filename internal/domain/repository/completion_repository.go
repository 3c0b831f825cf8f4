package repository

import (
	"context"
	"sparkos/internal/domain/entity"
	"time"

	"github.com/google/uuid"
)

// CompletionRepository defines the interface for completion log persistence
type CompletionRepository interface {
	// Create inserts a completion. Returns entity.ErrAlreadyRecorded when the
	// habit already has a completion for the same period.
	Create(ctx context.Context, completion *entity.Completion) error

	// ListDates returns the calendar days of all completions of a habit, oldest first
	ListDates(ctx context.Context, habitID uuid.UUID) ([]time.Time, error)

	// GetByHabitID retrieves completions for a habit with pagination, newest first
	GetByHabitID(ctx context.Context, habitID uuid.UUID, limit, offset int32) ([]*entity.Completion, error)

	// CountByHabitID returns the total count of completions for a habit
	CountByHabitID(ctx context.Context, habitID uuid.UUID) (int32, error)

	// ExistsForDate checks if a completion exists for a habit on a specific calendar day
	ExistsForDate(ctx context.Context, habitID uuid.UUID, date time.Time) (bool, error)

	// CountByUserAndDates returns, per calendar day in [from, to] keyed
	// YYYY-MM-DD, how many completions the user recorded. Days without
	// completions are absent.
	CountByUserAndDates(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[string]int32, error)
}
