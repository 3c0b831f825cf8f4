package entity

import (
	"fmt"
	"time"
	_ "time/tzdata" // owners' zones must resolve on hosts without zoneinfo

	"github.com/google/uuid"
)

// Cadence represents the qualifying period of a habit
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// ParseCadence parses a cadence string
func ParseCadence(s string) (Cadence, error) {
	switch c := Cadence(s); c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown cadence %q", ErrInvalidHabit, s)
	}
}

// Habit represents a user's habit
type Habit struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// Basic info
	Title       string
	Description *string

	Cadence Cadence

	// IANA timezone name of the owner, e.g. "Europe/Berlin"
	Timezone string

	// Streak snapshot, recomputed by the engine on every write
	CurrentStreak     int32
	LongestStreak     int32
	LastQualifyingDay *time.Time // calendar day, UTC midnight

	// Metadata
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeactivatedAt *time.Time
}

// Location returns the habit's time zone
func (h *Habit) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", h.Timezone, err)
	}
	return loc, nil
}

// LocalDate returns the calendar day of t in the habit's timezone
func (h *Habit) LocalDate(t time.Time) (time.Time, error) {
	loc, err := h.Location()
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t.In(loc)), nil
}

// CreatedDate returns the calendar day the habit was created on, owner-local
func (h *Habit) CreatedDate() (time.Time, error) {
	return h.LocalDate(h.CreatedAt)
}

// Streak returns the stored streak snapshot
func (h *Habit) Streak() StreakState {
	return StreakState{
		Current:           h.CurrentStreak,
		Longest:           h.LongestStreak,
		LastQualifyingDay: h.LastQualifyingDay,
	}
}

// ApplyStreak stores a streak snapshot on the habit
func (h *Habit) ApplyStreak(s StreakState) {
	h.CurrentStreak = s.Current
	h.LongestStreak = s.Longest
	h.LastQualifyingDay = s.LastQualifyingDay
}

// DateOf truncates t to its calendar day and re-expresses it as UTC midnight.
// Calendar days are carried as UTC midnights throughout the domain.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "YYYY-MM-DD" calendar day
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDate, s)
	}
	return d, nil
}

// DateLayout is the wire format of calendar days
const DateLayout = "2006-01-02"
