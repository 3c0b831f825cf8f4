package entity

import (
	"time"

	"github.com/google/uuid"
)

// Completion represents a single completion of a habit for one qualifying period
type Completion struct {
	ID      uuid.UUID
	HabitID uuid.UUID
	UserID  uuid.UUID

	// Date is the owner-local calendar day the completion is for (UTC midnight)
	Date time.Time
	// PeriodStart is the first day of the cadence period containing Date.
	// (HabitID, PeriodStart) is unique.
	PeriodStart time.Time

	// XPAwarded is the experience granted for this completion
	XPAwarded int64

	RecordedAt time.Time
}

// StreakState is the derived streak view of a habit
type StreakState struct {
	Current           int32      `json:"current"`
	Longest           int32      `json:"longest"`
	LastQualifyingDay *time.Time `json:"last_qualifying_day,omitempty"`
}

// HabitStats represents habit statistics
type HabitStats struct {
	Streak           StreakState
	TotalCompletions int32
	ElapsedPeriods   int32
	CompletionRate   float64
	FirstCompletion  *time.Time
	LastCompletion   *time.Time
}
