package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/event"
	"sparkos/internal/domain/gamification"
	"sparkos/internal/domain/period"
	"sparkos/internal/domain/repository"
	"sparkos/internal/domain/service"
	"sparkos/internal/domain/streak"
	"sparkos/pkg/clock"
	"sparkos/pkg/metrics"
	"sparkos/pkg/validation"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type habitService struct {
	habitRepo      repository.HabitRepository
	completionRepo repository.CompletionRepository
	tx             repository.Transactor
	policy         gamification.Policy
	clock          clock.Clock
	logger         *zap.Logger
}

// NewHabitService creates the habit/streak engine
func NewHabitService(
	habitRepo repository.HabitRepository,
	completionRepo repository.CompletionRepository,
	tx repository.Transactor,
	policy gamification.Policy,
	clk clock.Clock,
	logger *zap.Logger,
) service.HabitService {
	return &habitService{
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		tx:             tx,
		policy:         policy,
		clock:          clk,
		logger:         logger,
	}
}

func (s *habitService) CreateHabit(ctx context.Context, userID uuid.UUID, title string, description *string,
	cadence entity.Cadence, timezone string) (*entity.Habit, error) {

	if err := validation.ValidateTitle(title); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidHabit, err)
	}
	if err := validation.ValidateDescription(description); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidHabit, err)
	}
	if _, err := entity.ParseCadence(string(cadence)); err != nil {
		return nil, err
	}
	if err := validation.ValidateTimezone(timezone); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidHabit, err)
	}

	now := s.clock.Now()
	habit := &entity.Habit{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Cadence:     cadence,
		Timezone:    timezone,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.habitRepo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return habit, nil
}

func (s *habitService) GetHabit(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	return s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
}

func (s *habitService) ListHabits(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.Habit, int32, error) {
	habits, err := s.habitRepo.GetByUserID(ctx, userID, activeOnly)
	if err != nil {
		return nil, 0, err
	}

	return habits, int32(len(habits)), nil
}

func (s *habitService) UpdateHabit(ctx context.Context, habitID, userID uuid.UUID, title, description *string) (*entity.Habit, error) {
	habit, err := s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	if title != nil {
		if err := validation.ValidateTitle(*title); err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrInvalidHabit, err)
		}
		habit.Title = strings.TrimSpace(*title)
	}

	if description != nil {
		if err := validation.ValidateDescription(description); err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrInvalidHabit, err)
		}
		habit.Description = description
	}

	habit.UpdatedAt = s.clock.Now()

	if err := s.habitRepo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	return habit, nil
}

func (s *habitService) DeactivateHabit(ctx context.Context, habitID, userID uuid.UUID) error {
	// Verify ownership
	habit, err := s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return err
	}

	if !habit.IsActive {
		return nil
	}

	return s.habitRepo.Deactivate(ctx, habitID, s.clock.Now())
}

func (s *habitService) RecordCompletion(ctx context.Context, habitID, userID uuid.UUID, date *time.Time) (*service.CompletionResult, error) {
	var result *service.CompletionResult
	cadence := "unknown"

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		habit, err := repos.Habits.GetByIDForUpdate(ctx, habitID)
		if err != nil {
			return err
		}
		if habit.UserID != userID {
			return entity.ErrNotFound
		}
		cadence = string(habit.Cadence)
		if !habit.IsActive {
			return entity.ErrHabitInactive
		}

		now := s.clock.Now()
		today, err := habit.LocalDate(now)
		if err != nil {
			return err
		}

		day := today
		if date != nil {
			day = entity.DateOf(*date)
		}
		if day.After(today) {
			return fmt.Errorf("%w: %s is in the future", entity.ErrInvalidDate, day.Format(entity.DateLayout))
		}
		created, err := habit.CreatedDate()
		if err != nil {
			return err
		}
		if day.Before(created) {
			return fmt.Errorf("%w: %s is before the habit was created", entity.ErrInvalidDate, day.Format(entity.DateLayout))
		}

		dates, err := repos.Completions.ListDates(ctx, habit.ID)
		if err != nil {
			return fmt.Errorf("failed to list completions: %w", err)
		}
		target := period.Of(habit.Cadence, day)
		for _, d := range dates {
			if target.Contains(d) {
				return fmt.Errorf("%w: %s", entity.ErrAlreadyRecorded, target)
			}
		}

		prev := habit.Streak()
		all := append(dates, day)
		state := streak.Compute(habit.Cadence, all, today)
		// the bonus follows the run the completion lands in, not the current one
		reward := s.policy.Reward(streak.RunLength(habit.Cadence, all, day))

		completion := &entity.Completion{
			ID:          uuid.New(),
			HabitID:     habit.ID,
			UserID:      userID,
			Date:        day,
			PeriodStart: target.Start,
			XPAwarded:   reward,
			RecordedAt:  now,
		}
		if err := repos.Completions.Create(ctx, completion); err != nil {
			if errors.Is(err, entity.ErrAlreadyRecorded) {
				return err
			}
			return fmt.Errorf("failed to create completion: %w", err)
		}

		if err := repos.Habits.UpdateStreak(ctx, habit.ID, state); err != nil {
			return fmt.Errorf("failed to update streak: %w", err)
		}
		habit.ApplyStreak(state)
		habit.UpdatedAt = now

		progress, fromLevel, err := s.addXP(ctx, repos.Progress, userID, reward, now)
		if err != nil {
			return err
		}

		var events []event.Event
		extendsRun := state.LastQualifyingDay != nil && state.LastQualifyingDay.Equal(day)
		if state.Current > 0 && (extendsRun || state.Current > prev.Current) {
			events = append(events, event.StreakExtended{
				HabitID:    habit.ID,
				UserID:     userID,
				Streak:     state.Current,
				Longest:    state.Longest,
				Date:       day,
				OccurredAt: now,
			})
		}
		events = append(events, event.XPAwarded{
			HabitID:    habit.ID,
			UserID:     userID,
			Amount:     reward,
			TotalXP:    progress.TotalXP,
			OccurredAt: now,
		})
		if progress.Level > fromLevel {
			events = append(events, event.LevelUp{
				UserID:     userID,
				FromLevel:  fromLevel,
				ToLevel:    progress.Level,
				TotalXP:    progress.TotalXP,
				OccurredAt: now,
			})
		}

		result = &service.CompletionResult{
			Completion: completion,
			Habit:      habit,
			Progress:   progressView(s.policy, progress),
			Events:     events,
		}
		return nil
	})

	metrics.IncrementCompletion(cadence, completionResult(err))
	if err != nil {
		return nil, err
	}

	metrics.AddXP(result.Completion.XPAwarded)
	for _, e := range result.Events {
		if e.Type() == event.TypeLevelUp {
			metrics.IncrementLevelUp()
		}
	}

	s.logger.Info("completion recorded",
		zap.String("habit_id", habitID.String()),
		zap.String("user_id", userID.String()),
		zap.String("date", result.Completion.Date.Format(entity.DateLayout)),
		zap.Int32("streak", result.Habit.CurrentStreak),
		zap.Int64("xp", result.Completion.XPAwarded),
	)

	return result, nil
}

// addXP grants amount to the user and returns the new progress and the level
// held before the grant
func (s *habitService) addXP(ctx context.Context, repo repository.ProgressRepository, userID uuid.UUID,
	amount int64, now time.Time) (*entity.UserProgress, int32, error) {

	progress, err := repo.GetForUpdate(ctx, userID)
	if errors.Is(err, entity.ErrNotFound) {
		progress = &entity.UserProgress{UserID: userID, CreatedAt: now}
	} else if err != nil {
		return nil, 0, fmt.Errorf("failed to get progress: %w", err)
	}

	fromLevel := s.policy.ComputeLevel(progress.TotalXP)
	progress.TotalXP += amount
	progress.Level = s.policy.ComputeLevel(progress.TotalXP)
	progress.UpdatedAt = now

	if err := repo.Upsert(ctx, progress); err != nil {
		return nil, 0, fmt.Errorf("failed to update progress: %w", err)
	}

	return progress, fromLevel, nil
}

func (s *habitService) EvaluateRollover(ctx context.Context, habitID uuid.UUID, asOf time.Time) (*service.RolloverResult, error) {
	var result *service.RolloverResult

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		habit, err := repos.Habits.GetByIDForUpdate(ctx, habitID)
		if err != nil {
			return err
		}

		prev := habit.Streak()
		result = &service.RolloverResult{Habit: habit, Streak: prev}

		// Deactivated habits keep their streak frozen
		if !habit.IsActive {
			return nil
		}

		today, err := habit.LocalDate(s.clock.Now())
		if err != nil {
			return err
		}
		day := entity.DateOf(asOf)
		if day.After(today) {
			return fmt.Errorf("%w: rollover for %s is in the future", entity.ErrInvalidDate, day.Format(entity.DateLayout))
		}
		boundary := period.Of(habit.Cadence, day)
		broken := streak.Missed(habit.Cadence, prev, day)

		marked, err := repos.Rollovers.TryMark(ctx, habit.ID, boundary.Start, broken)
		if err != nil {
			return fmt.Errorf("failed to mark rollover: %w", err)
		}
		if !marked {
			return nil
		}
		result.Applied = true

		if !broken {
			return nil
		}

		next := entity.StreakState{
			Current:           0,
			Longest:           prev.Longest,
			LastQualifyingDay: prev.LastQualifyingDay,
		}
		if err := repos.Habits.UpdateStreak(ctx, habit.ID, next); err != nil {
			return fmt.Errorf("failed to reset streak: %w", err)
		}
		habit.ApplyStreak(next)
		result.Streak = next

		result.Events = []event.Event{event.StreakBroken{
			HabitID:        habit.ID,
			UserID:         habit.UserID,
			PreviousStreak: prev.Current,
			Longest:        prev.Longest,
			MissedPeriod:   period.Of(habit.Cadence, *prev.LastQualifyingDay).Next().Start,
			OccurredAt:     s.clock.Now(),
		}}
		return nil
	})
	if err != nil {
		metrics.IncrementRollover("error")
		return nil, err
	}

	switch {
	case len(result.Events) > 0:
		metrics.IncrementRollover("broken")
		s.logger.Info("streak broken",
			zap.String("habit_id", habitID.String()),
			zap.String("as_of", asOf.Format(entity.DateLayout)),
		)
	case result.Applied:
		metrics.IncrementRollover("kept")
	default:
		metrics.IncrementRollover("skipped")
	}

	return result, nil
}

func (s *habitService) ActiveHabits(ctx context.Context) ([]*entity.Habit, error) {
	habits, err := s.habitRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active habits: %w", err)
	}
	return habits, nil
}

func (s *habitService) GetHabitHistory(ctx context.Context, habitID, userID uuid.UUID, limit, offset int32) ([]*entity.Completion, int32, error) {
	// Verify ownership
	_, err := s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return nil, 0, err
	}

	limit, offset = validation.NormalizePage(limit, offset)

	completions, err := s.completionRepo.GetByHabitID(ctx, habitID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	count, err := s.completionRepo.CountByHabitID(ctx, habitID)
	if err != nil {
		return nil, 0, err
	}

	return completions, count, nil
}

func (s *habitService) GetHabitStats(ctx context.Context, habitID, userID uuid.UUID) (*entity.HabitStats, error) {
	habit, err := s.habitRepo.GetByIDAndUserID(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	dates, err := s.completionRepo.ListDates(ctx, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}

	today, err := habit.LocalDate(s.clock.Now())
	if err != nil {
		return nil, err
	}
	end := today
	state := streak.Compute(habit.Cadence, dates, today)
	if !habit.IsActive {
		// frozen at deactivation
		state = habit.Streak()
		if habit.DeactivatedAt != nil {
			if end, err = habit.LocalDate(*habit.DeactivatedAt); err != nil {
				return nil, err
			}
		}
	}

	created, err := habit.CreatedDate()
	if err != nil {
		return nil, err
	}

	stats := &entity.HabitStats{
		Streak:           state,
		TotalCompletions: int32(len(dates)),
		ElapsedPeriods:   period.Elapsed(habit.Cadence, created, end),
	}
	if stats.ElapsedPeriods > 0 {
		rate := float64(stats.TotalCompletions) / float64(stats.ElapsedPeriods) * 100
		stats.CompletionRate = math.Min(100, math.Round(rate*100)/100)
	}
	if len(dates) > 0 {
		first, last := dates[0], dates[len(dates)-1]
		stats.FirstCompletion = &first
		stats.LastCompletion = &last
	}

	return stats, nil
}

func completionResult(err error) string {
	switch {
	case err == nil:
		return "recorded"
	case errors.Is(err, entity.ErrAlreadyRecorded):
		return "already_recorded"
	case errors.Is(err, entity.ErrInvalidDate):
		return "invalid_date"
	case errors.Is(err, entity.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
