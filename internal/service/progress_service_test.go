package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/gamification"
)

func TestGetProgress_NoRow(t *testing.T) {
	f := newFixture(t, gamification.DefaultPolicy())

	p, err := f.progress.GetProgress(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.TotalXP)
	assert.Equal(t, int32(1), p.Level)
	assert.Equal(t, int64(0), p.LevelThreshold)
	require.NotNil(t, p.NextLevelThreshold)
	assert.Equal(t, int64(100), *p.NextLevelThreshold)
	assert.Zero(t, p.PercentToNext)
}

func TestComputeLevel_DelegatesToPolicy(t *testing.T) {
	f := newFixture(t, gamification.DefaultPolicy())
	assert.Equal(t, int32(1), f.progress.ComputeLevel(99))
	assert.Equal(t, int32(2), f.progress.ComputeLevel(100))
}

func TestGetDashboard(t *testing.T) {
	f := newFixture(t, gamification.DefaultPolicy())
	ctx := context.Background()

	reading := f.createHabit(t, entity.CadenceDaily, "UTC")
	walking, err := f.habits.CreateHabit(ctx, f.userID, "Walk", nil, entity.CadenceDaily, "UTC")
	require.NoError(t, err)
	retired, err := f.habits.CreateHabit(ctx, f.userID, "Retired", nil, entity.CadenceDaily, "UTC")
	require.NoError(t, err)

	// reading: days 1-3, walking: day 3 only
	for i := 0; i < 3; i++ {
		_, err := f.habits.RecordCompletion(ctx, reading.ID, f.userID, nil)
		require.NoError(t, err)
		if i < 2 {
			f.clock.Advance(dayLen)
		}
	}
	_, err = f.habits.RecordCompletion(ctx, walking.ID, f.userID, nil)
	require.NoError(t, err)
	require.NoError(t, f.habits.DeactivateHabit(ctx, retired.ID, f.userID))

	d, err := f.progress.GetDashboard(ctx, f.userID, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, int32(2), d.ActiveHabits)
	assert.Equal(t, int32(2), d.CompletedToday)

	require.Len(t, d.CompletionsLastWeek, 7)
	assert.Equal(t, "2024-02-26", d.CompletionsLastWeek[0].Date)
	assert.Equal(t, "2024-03-03", d.CompletionsLastWeek[6].Date)
	assert.Equal(t, int32(1), d.CompletionsLastWeek[4].Count)
	assert.Equal(t, int32(1), d.CompletionsLastWeek[5].Count)
	assert.Equal(t, int32(2), d.CompletionsLastWeek[6].Count)
	assert.Equal(t, int32(0), d.CompletionsLastWeek[0].Count)

	require.NotNil(t, d.MostConsistentHabit)
	assert.Equal(t, reading.ID, d.MostConsistentHabit.HabitID)
	assert.Equal(t, int32(3), d.MostConsistentHabit.LongestStreak)

	assert.Equal(t, int64(10+11+12+10), d.Progress.TotalXP)
	assert.InDelta(t, 43.0, d.Progress.PercentToNext, 0.001)
}

func TestGetDashboard_Empty(t *testing.T) {
	f := newFixture(t, gamification.DefaultPolicy())

	d, err := f.progress.GetDashboard(context.Background(), f.userID, nil)
	require.NoError(t, err)
	assert.Zero(t, d.ActiveHabits)
	assert.Nil(t, d.MostConsistentHabit)
	assert.Len(t, d.CompletionsLastWeek, 7)
	assert.Equal(t, int32(1), d.Progress.Level)
}
