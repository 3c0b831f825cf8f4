package service

import (
	"context"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/event"
	"time"

	"github.com/google/uuid"
)

// CompletionResult is the outcome of an accepted completion
type CompletionResult struct {
	Completion *entity.Completion
	Habit      *entity.Habit
	Progress   entity.ProgressView
	Events     []event.Event
}

// RolloverResult is the outcome of a rollover evaluation
type RolloverResult struct {
	Habit  *entity.Habit
	Streak entity.StreakState
	// Applied is false when the boundary had already been evaluated or the
	// habit is inactive
	Applied bool
	Events  []event.Event
}

// HabitService defines the interface for the habit/streak engine
type HabitService interface {
	// CreateHabit creates a new habit owned by userID
	CreateHabit(ctx context.Context, userID uuid.UUID, title string, description *string,
		cadence entity.Cadence, timezone string) (*entity.Habit, error)

	// GetHabit retrieves a habit by ID
	GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error)

	// ListHabits retrieves all habits for a user
	ListHabits(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.Habit, int32, error)

	// UpdateHabit updates title and description. Cadence and timezone are immutable.
	UpdateHabit(ctx context.Context, habitID, userID uuid.UUID, title, description *string) (*entity.Habit, error)

	// DeactivateHabit freezes a habit, preserving its history
	DeactivateHabit(ctx context.Context, habitID, userID uuid.UUID) error

	// RecordCompletion records a completion for date (today in the habit's
	// timezone when nil), recomputes the streak and awards XP
	RecordCompletion(ctx context.Context, habitID, userID uuid.UUID, date *time.Time) (*CompletionResult, error)

	// EvaluateRollover breaks the streak when the period before asOf's period
	// has no completion. Idempotent per (habit, asOf period).
	EvaluateRollover(ctx context.Context, habitID uuid.UUID, asOf time.Time) (*RolloverResult, error)

	// ActiveHabits lists every active habit, for the rollover scheduler
	ActiveHabits(ctx context.Context) ([]*entity.Habit, error)

	// GetHabitHistory retrieves completion history for a habit
	GetHabitHistory(ctx context.Context, habitID, userID uuid.UUID, limit, offset int32) ([]*entity.Completion, int32, error)

	// GetHabitStats retrieves statistics for a habit
	GetHabitStats(ctx context.Context, habitID, userID uuid.UUID) (*entity.HabitStats, error)
}
