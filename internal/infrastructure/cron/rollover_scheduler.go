package cron

import (
	"context"
	"fmt"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/service"
	"sparkos/pkg/clock"
	"sparkos/pkg/metrics"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RolloverScheduler periodically evaluates period boundaries of all active
// habits and breaks streaks whose previous period was missed
type RolloverScheduler struct {
	habitService service.HabitService
	publisher    service.EventPublisher
	locker       service.Locker
	clock        clock.Clock
	logger       *zap.Logger
	cron         *cron.Cron
	interval     time.Duration
	lockTTL      time.Duration
}

// NewRolloverScheduler creates a new rollover scheduler
func NewRolloverScheduler(
	habitService service.HabitService,
	publisher service.EventPublisher,
	locker service.Locker,
	clk clock.Clock,
	logger *zap.Logger,
	checkInterval time.Duration,
	lockTTL time.Duration,
) *RolloverScheduler {
	return &RolloverScheduler{
		habitService: habitService,
		publisher:    publisher,
		locker:       locker,
		clock:        clk,
		logger:       logger,
		cron:         cron.New(),
		interval:     checkInterval,
		lockTTL:      lockTTL,
	}
}

// Start schedules the rollover check
func (s *RolloverScheduler) Start() error {
	cronExpr := fmt.Sprintf("@every %s", s.interval.String())

	_, err := s.cron.AddFunc(cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("rollover scheduler started", zap.Duration("interval", s.interval))

	return nil
}

// Stop waits for a running check to finish
func (s *RolloverScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("rollover scheduler stopped")
}

// RunOnce evaluates every active habit at the current instant
func (s *RolloverScheduler) RunOnce(ctx context.Context) {
	habits, err := s.habitService.ActiveHabits(ctx)
	if err != nil {
		s.logger.Error("failed to list active habits", zap.Error(err))
		return
	}

	now := s.clock.Now()
	var broken int
	for _, h := range habits {
		if ctx.Err() != nil {
			return
		}
		if s.evaluate(ctx, h, now) {
			broken++
		}
	}

	s.logger.Info("rollover check completed",
		zap.Int("habits", len(habits)),
		zap.Int("broken", broken),
	)
}

// evaluate runs one habit's rollover under its lock and reports whether the streak broke
func (s *RolloverScheduler) evaluate(ctx context.Context, h *entity.Habit, now time.Time) bool {
	log := s.logger.With(zap.String("habit_id", h.ID.String()))

	asOf, err := h.LocalDate(now)
	if err != nil {
		log.Error("invalid habit timezone", zap.String("timezone", h.Timezone), zap.Error(err))
		return false
	}

	unlock, ok, err := s.locker.TryLock(ctx, h.ID.String(), s.lockTTL)
	if err != nil {
		log.Error("failed to acquire rollover lock", zap.Error(err))
		metrics.IncrementRollover("error")
		return false
	}
	if !ok {
		metrics.IncrementRollover("locked")
		return false
	}
	defer unlock()

	result, err := s.habitService.EvaluateRollover(ctx, h.ID, asOf)
	if err != nil {
		log.Error("failed to evaluate rollover", zap.Error(err))
		return false
	}

	if len(result.Events) > 0 {
		if err := s.publisher.Publish(ctx, result.Events...); err != nil {
			log.Warn("failed to publish rollover events", zap.Error(err))
		}
	}

	return result.Applied && len(result.Events) > 0
}
