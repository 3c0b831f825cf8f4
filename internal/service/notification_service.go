package service

import (
	"context"
	"fmt"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/event"
	"sparkos/internal/domain/repository"
	"sparkos/internal/domain/service"
	"sparkos/pkg/clock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type notificationService struct {
	repo   repository.NotificationRepository
	clock  clock.Clock
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo repository.NotificationRepository, clk clock.Clock, logger *zap.Logger) service.NotificationService {
	return &notificationService{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

func (s *notificationService) HandleEvent(ctx context.Context, e event.Event) error {
	n, err := render(e)
	if err != nil {
		return err
	}
	n.ID = uuid.New()
	n.UserID = e.Owner()
	n.EventType = string(e.Type())
	n.CreatedAt = s.clock.Now()

	if err := s.repo.Push(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	s.logger.Debug("notification stored",
		zap.String("user_id", n.UserID.String()),
		zap.String("event", n.EventType),
	)
	return nil
}

func (s *notificationService) Drain(ctx context.Context, userID uuid.UUID) ([]*entity.Notification, error) {
	notifications, err := s.repo.Drain(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to drain notifications: %w", err)
	}
	return notifications, nil
}

// render builds the toast text for an event
func render(e event.Event) (*entity.Notification, error) {
	switch ev := e.(type) {
	case event.StreakExtended:
		if ev.Streak == 1 {
			return &entity.Notification{
				Kind:    entity.NotificationKindSuccess,
				Title:   "New streak started",
				Message: "Keep it going tomorrow!",
			}, nil
		}
		return &entity.Notification{
			Kind:    entity.NotificationKindSuccess,
			Title:   "Streak extended",
			Message: fmt.Sprintf("You're on a %d streak!", ev.Streak),
		}, nil
	case event.StreakBroken:
		return &entity.Notification{
			Kind:    entity.NotificationKindWarning,
			Title:   "Streak lost",
			Message: fmt.Sprintf("Your %d streak ended. Best so far: %d.", ev.PreviousStreak, ev.Longest),
		}, nil
	case event.XPAwarded:
		return &entity.Notification{
			Kind:    entity.NotificationKindInfo,
			Title:   fmt.Sprintf("+%d XP", ev.Amount),
			Message: fmt.Sprintf("Total: %d XP", ev.TotalXP),
		}, nil
	case event.LevelUp:
		return &entity.Notification{
			Kind:    entity.NotificationKindSuccess,
			Title:   "Level up!",
			Message: fmt.Sprintf("You reached level %d", ev.ToLevel),
		}, nil
	default:
		return nil, fmt.Errorf("unknown event type %T", e)
	}
}
