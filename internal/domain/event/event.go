// Package event defines the domain events returned by engine operations.
// Delivery is the caller's concern.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies an event variant
type Type string

const (
	TypeStreakExtended Type = "streak_extended"
	TypeStreakBroken   Type = "streak_broken"
	TypeXPAwarded      Type = "xp_awarded"
	TypeLevelUp        Type = "level_up"
)

// Event is one of StreakExtended, StreakBroken, XPAwarded or LevelUp
type Event interface {
	Type() Type
	Owner() uuid.UUID
	At() time.Time
}

// StreakExtended is emitted when a completion grows or starts a streak
type StreakExtended struct {
	HabitID    uuid.UUID
	UserID     uuid.UUID
	Streak     int32
	Longest    int32
	Date       time.Time
	OccurredAt time.Time
}

// StreakBroken is emitted when a rollover finds a missed period
type StreakBroken struct {
	HabitID        uuid.UUID
	UserID         uuid.UUID
	PreviousStreak int32
	Longest        int32
	// MissedPeriod is the start of the period that had no completion
	MissedPeriod time.Time
	OccurredAt   time.Time
}

// XPAwarded is emitted for every accepted completion
type XPAwarded struct {
	HabitID    uuid.UUID
	UserID     uuid.UUID
	Amount     int64
	TotalXP    int64
	OccurredAt time.Time
}

// LevelUp is emitted when total XP crosses a level threshold
type LevelUp struct {
	UserID     uuid.UUID
	FromLevel  int32
	ToLevel    int32
	TotalXP    int64
	OccurredAt time.Time
}

func (e StreakExtended) Type() Type       { return TypeStreakExtended }
func (e StreakExtended) Owner() uuid.UUID { return e.UserID }
func (e StreakExtended) At() time.Time    { return e.OccurredAt }

func (e StreakBroken) Type() Type       { return TypeStreakBroken }
func (e StreakBroken) Owner() uuid.UUID { return e.UserID }
func (e StreakBroken) At() time.Time    { return e.OccurredAt }

func (e XPAwarded) Type() Type       { return TypeXPAwarded }
func (e XPAwarded) Owner() uuid.UUID { return e.UserID }
func (e XPAwarded) At() time.Time    { return e.OccurredAt }

func (e LevelUp) Type() Type       { return TypeLevelUp }
func (e LevelUp) Owner() uuid.UUID { return e.UserID }
func (e LevelUp) At() time.Time    { return e.OccurredAt }
