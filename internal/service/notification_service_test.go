package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/event"
	"sparkos/internal/infrastructure/memory"
	"sparkos/pkg/clock"
)

func TestNotificationService_HandleAndDrain(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(day1)
	svc := NewNotificationService(memory.NewNotificationRepository(50), clk, zap.NewNop())
	userID, habitID := uuid.New(), uuid.New()

	events := []event.Event{
		event.StreakExtended{HabitID: habitID, UserID: userID, Streak: 1, Longest: 1},
		event.StreakExtended{HabitID: habitID, UserID: userID, Streak: 5, Longest: 5},
		event.XPAwarded{HabitID: habitID, UserID: userID, Amount: 14, TotalXP: 114},
		event.LevelUp{UserID: userID, FromLevel: 1, ToLevel: 2, TotalXP: 114},
		event.StreakBroken{HabitID: habitID, UserID: userID, PreviousStreak: 5, Longest: 7},
	}
	for _, e := range events {
		require.NoError(t, svc.HandleEvent(ctx, e))
	}

	got, err := svc.Drain(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.Equal(t, "New streak started", got[0].Title)
	assert.Equal(t, "You're on a 5 streak!", got[1].Message)
	assert.Equal(t, "+14 XP", got[2].Title)
	assert.Equal(t, entity.NotificationKindInfo, got[2].Kind)
	assert.Equal(t, "You reached level 2", got[3].Message)
	assert.Equal(t, entity.NotificationKindWarning, got[4].Kind)
	assert.Equal(t, string(event.TypeStreakBroken), got[4].EventType)
	for _, n := range got {
		assert.Equal(t, userID, n.UserID)
		assert.Equal(t, day1, n.CreatedAt)
		assert.NotEqual(t, uuid.Nil, n.ID)
	}

	again, err := svc.Drain(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestNotificationRepository_Cap(t *testing.T) {
	ctx := context.Background()
	svc := NewNotificationService(memory.NewNotificationRepository(2), clock.NewFixed(time.Now()), zap.NewNop())
	userID := uuid.New()

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, svc.HandleEvent(ctx, event.XPAwarded{UserID: userID, Amount: i}))
	}

	got, err := svc.Drain(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "+2 XP", got[0].Title)
	assert.Equal(t, "+3 XP", got[1].Title)
}
