package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RolloverRepository records which (habit, period) boundaries were evaluated
type RolloverRepository interface {
	// TryMark records the evaluation of habitID for the period starting at
	// periodStart. Returns false if it was already recorded.
	TryMark(ctx context.Context, habitID uuid.UUID, periodStart time.Time, broken bool) (bool, error)
}
