package service

import (
	"context"
	"errors"
	"fmt"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/gamification"
	"sparkos/internal/domain/repository"
	"sparkos/internal/domain/service"
	"sparkos/pkg/clock"
	"time"

	"github.com/google/uuid"
)

// chartDays is the width of the dashboard completion chart
const chartDays = 7

type progressService struct {
	progressRepo   repository.ProgressRepository
	habitRepo      repository.HabitRepository
	completionRepo repository.CompletionRepository
	policy         gamification.Policy
	clock          clock.Clock
}

// NewProgressService creates a new progress service
func NewProgressService(
	progressRepo repository.ProgressRepository,
	habitRepo repository.HabitRepository,
	completionRepo repository.CompletionRepository,
	policy gamification.Policy,
	clk clock.Clock,
) service.ProgressService {
	return &progressService{
		progressRepo:   progressRepo,
		habitRepo:      habitRepo,
		completionRepo: completionRepo,
		policy:         policy,
		clock:          clk,
	}
}

func (s *progressService) ComputeLevel(totalXP int64) int32 {
	return s.policy.ComputeLevel(totalXP)
}

func (s *progressService) GetProgress(ctx context.Context, userID uuid.UUID) (*entity.ProgressView, error) {
	progress, err := s.progressRepo.Get(ctx, userID)
	if errors.Is(err, entity.ErrNotFound) {
		progress = &entity.UserProgress{UserID: userID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	view := progressView(s.policy, progress)
	return &view, nil
}

func (s *progressService) GetDashboard(ctx context.Context, userID uuid.UUID, loc *time.Location) (*entity.Dashboard, error) {
	if loc == nil {
		loc = time.UTC
	}
	now := s.clock.Now()

	habits, err := s.habitRepo.GetByUserID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	dashboard := &entity.Dashboard{ActiveHabits: int32(len(habits))}

	for _, habit := range habits {
		today, err := habit.LocalDate(now)
		if err != nil {
			return nil, err
		}
		done, err := s.completionRepo.ExistsForDate(ctx, habit.ID, today)
		if err != nil {
			return nil, fmt.Errorf("failed to check completion: %w", err)
		}
		if done {
			dashboard.CompletedToday++
		}

		if habit.LongestStreak > 0 && (dashboard.MostConsistentHabit == nil ||
			habit.LongestStreak > dashboard.MostConsistentHabit.LongestStreak) {
			dashboard.MostConsistentHabit = &entity.HabitHighlight{
				HabitID:       habit.ID,
				Title:         habit.Title,
				LongestStreak: habit.LongestStreak,
			}
		}
	}

	to := entity.DateOf(now.In(loc))
	from := to.AddDate(0, 0, -(chartDays - 1))
	counts, err := s.completionRepo.CountByUserAndDates(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count completions: %w", err)
	}
	dashboard.CompletionsLastWeek = make([]entity.DailyCount, 0, chartDays)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(entity.DateLayout)
		dashboard.CompletionsLastWeek = append(dashboard.CompletionsLastWeek, entity.DailyCount{
			Date:  key,
			Count: counts[key],
		})
	}

	progress, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	dashboard.Progress = *progress

	return dashboard, nil
}

// progressView derives the level bar from a progress row. The stored level is
// ignored in favour of recomputation.
func progressView(policy gamification.Policy, p *entity.UserProgress) entity.ProgressView {
	level := policy.ComputeLevel(p.TotalXP)
	threshold, _ := policy.Threshold(level)

	view := entity.ProgressView{
		UserID:         p.UserID,
		TotalXP:        p.TotalXP,
		Level:          level,
		LevelThreshold: threshold,
		PercentToNext:  policy.PercentToNext(p.TotalXP),
	}
	if next, ok := policy.Threshold(level + 1); ok {
		view.NextLevelThreshold = &next
	}
	return view
}
