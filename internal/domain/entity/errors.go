package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for unknown habits and for habits the caller does not own
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRecorded is returned when the habit already has a completion for the period
	ErrAlreadyRecorded = errors.New("completion already recorded for this period")

	// ErrInvalidDate is returned for future-dated or out-of-lifetime completions
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidHabit is returned when habit fields fail validation
	ErrInvalidHabit = errors.New("invalid habit")

	// ErrHabitInactive is returned when completing a deactivated habit
	ErrHabitInactive = fmt.Errorf("%w: habit is inactive", ErrNotFound)
)
