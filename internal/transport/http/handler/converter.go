package handler

import (
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/event"
	"time"
)

type habitResponse struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Description       *string `json:"description,omitempty"`
	Cadence           string  `json:"cadence"`
	Timezone          string  `json:"timezone"`
	CurrentStreak     int32   `json:"current_streak"`
	LongestStreak     int32   `json:"longest_streak"`
	LastQualifyingDay *string `json:"last_qualifying_day,omitempty"`
	IsActive          bool    `json:"is_active"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
	DeactivatedAt     *string `json:"deactivated_at,omitempty"`
}

type completionResponse struct {
	ID          string `json:"id"`
	HabitID     string `json:"habit_id"`
	Date        string `json:"date"`
	PeriodStart string `json:"period_start"`
	XPAwarded   int64  `json:"xp_awarded"`
	RecordedAt  string `json:"recorded_at"`
}

type streakResponse struct {
	Current           int32   `json:"current"`
	Longest           int32   `json:"longest"`
	LastQualifyingDay *string `json:"last_qualifying_day,omitempty"`
}

type statsResponse struct {
	Streak           streakResponse `json:"streak"`
	TotalCompletions int32          `json:"total_completions"`
	ElapsedPeriods   int32          `json:"elapsed_periods"`
	CompletionRate   float64        `json:"completion_rate"`
	FirstCompletion  *string        `json:"first_completion,omitempty"`
	LastCompletion   *string        `json:"last_completion,omitempty"`
}

type eventResponse struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

func habitToResponse(h *entity.Habit) habitResponse {
	return habitResponse{
		ID:                h.ID.String(),
		Title:             h.Title,
		Description:       h.Description,
		Cadence:           string(h.Cadence),
		Timezone:          h.Timezone,
		CurrentStreak:     h.CurrentStreak,
		LongestStreak:     h.LongestStreak,
		LastQualifyingDay: formatDate(h.LastQualifyingDay),
		IsActive:          h.IsActive,
		CreatedAt:         h.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         h.UpdatedAt.UTC().Format(time.RFC3339),
		DeactivatedAt:     formatTime(h.DeactivatedAt),
	}
}

func habitsToResponse(habits []*entity.Habit) []habitResponse {
	out := make([]habitResponse, 0, len(habits))
	for _, h := range habits {
		out = append(out, habitToResponse(h))
	}
	return out
}

func completionToResponse(c *entity.Completion) completionResponse {
	return completionResponse{
		ID:          c.ID.String(),
		HabitID:     c.HabitID.String(),
		Date:        c.Date.Format(entity.DateLayout),
		PeriodStart: c.PeriodStart.Format(entity.DateLayout),
		XPAwarded:   c.XPAwarded,
		RecordedAt:  c.RecordedAt.UTC().Format(time.RFC3339),
	}
}

func completionsToResponse(completions []*entity.Completion) []completionResponse {
	out := make([]completionResponse, 0, len(completions))
	for _, c := range completions {
		out = append(out, completionToResponse(c))
	}
	return out
}

func streakToResponse(s entity.StreakState) streakResponse {
	return streakResponse{
		Current:           s.Current,
		Longest:           s.Longest,
		LastQualifyingDay: formatDate(s.LastQualifyingDay),
	}
}

func statsToResponse(s *entity.HabitStats) statsResponse {
	return statsResponse{
		Streak:           streakToResponse(s.Streak),
		TotalCompletions: s.TotalCompletions,
		ElapsedPeriods:   s.ElapsedPeriods,
		CompletionRate:   s.CompletionRate,
		FirstCompletion:  formatDate(s.FirstCompletion),
		LastCompletion:   formatDate(s.LastCompletion),
	}
}

func eventsToResponse(events []event.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		payload, err := event.Payload(e)
		if err != nil {
			continue
		}
		out = append(out, eventResponse{Type: string(e.Type()), Payload: payload})
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(entity.DateLayout)
	return &s
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
