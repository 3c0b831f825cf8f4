package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserProgress holds a user's accumulated experience. Level is never stored
// independently: it is recomputed from TotalXP on every read and write.
type UserProgress struct {
	UserID    uuid.UUID
	TotalXP   int64
	Level     int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProgressView is UserProgress enriched with level-bar information
type ProgressView struct {
	UserID             uuid.UUID `json:"user_id"`
	TotalXP            int64     `json:"total_xp"`
	Level              int32     `json:"level"`
	LevelThreshold     int64     `json:"level_threshold"`
	NextLevelThreshold *int64    `json:"next_level_threshold,omitempty"`
	PercentToNext      float64   `json:"percent_to_next"`
}

// Dashboard aggregates the data behind the habits dashboard
type Dashboard struct {
	ActiveHabits        int32           `json:"active_habits"`
	CompletedToday      int32           `json:"completed_today"`
	CompletionsLastWeek []DailyCount    `json:"completions_last_week"`
	MostConsistentHabit *HabitHighlight `json:"most_consistent_habit,omitempty"`
	Progress            ProgressView    `json:"progress"`
}

// DailyCount is one bar of the weekly completion chart
type DailyCount struct {
	Date  string `json:"date"`
	Count int32  `json:"count"`
}

// HabitHighlight names a habit and its best streak
type HabitHighlight struct {
	HabitID       uuid.UUID `json:"habit_id"`
	Title         string    `json:"title"`
	LongestStreak int32     `json:"longest_streak"`
}
