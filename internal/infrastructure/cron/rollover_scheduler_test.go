package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/event"
	"sparkos/internal/domain/gamification"
	"sparkos/internal/infrastructure/memory"
	"sparkos/internal/service"
	"sparkos/pkg/clock"
)

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) handle(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Type
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}

func TestRolloverScheduler_RunOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repositories()
	clk := clock.NewFixed(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	habits := service.NewHabitService(repos.Habits, repos.Completions, store,
		gamification.DefaultPolicy(), clk, zap.NewNop())

	rec := &recorder{}
	lock := memory.NewRolloverLock()
	scheduler := NewRolloverScheduler(habits, memory.NewEventBus(rec.handle), lock,
		clk, zap.NewNop(), time.Minute, time.Minute)

	userID := uuid.New()
	kept, err := habits.CreateHabit(ctx, userID, "Stretch", nil, entity.CadenceDaily, "UTC")
	require.NoError(t, err)
	lapsed, err := habits.CreateHabit(ctx, userID, "Journal", nil, entity.CadenceDaily, "UTC")
	require.NoError(t, err)

	_, err = habits.RecordCompletion(ctx, lapsed.ID, userID, nil)
	require.NoError(t, err)

	// day 2: yesterday was completed, nothing breaks
	clk.Advance(24 * time.Hour)
	_, err = habits.RecordCompletion(ctx, kept.ID, userID, nil)
	require.NoError(t, err)
	scheduler.RunOnce(ctx)
	assert.Empty(t, rec.types())

	// day 3: lapsed missed day 2
	clk.Advance(24 * time.Hour)
	_, err = habits.RecordCompletion(ctx, kept.ID, userID, nil)
	require.NoError(t, err)
	scheduler.RunOnce(ctx)
	assert.Equal(t, []event.Type{event.TypeStreakBroken}, rec.types())

	got, err := habits.GetHabit(ctx, lapsed.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), got.CurrentStreak)
	assert.Equal(t, int32(1), got.LongestStreak)

	got, err = habits.GetHabit(ctx, kept.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), got.CurrentStreak)

	// a second tick on the same boundary is a no-op
	scheduler.RunOnce(ctx)
	assert.Len(t, rec.types(), 1)
}

func TestRolloverScheduler_SkipsLockedHabit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repositories()
	clk := clock.NewFixed(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	habits := service.NewHabitService(repos.Habits, repos.Completions, store,
		gamification.DefaultPolicy(), clk, zap.NewNop())

	rec := &recorder{}
	lock := memory.NewRolloverLock()
	scheduler := NewRolloverScheduler(habits, memory.NewEventBus(rec.handle), lock,
		clk, zap.NewNop(), time.Minute, time.Hour)

	userID := uuid.New()
	h, err := habits.CreateHabit(ctx, userID, "Run", nil, entity.CadenceDaily, "UTC")
	require.NoError(t, err)
	_, err = habits.RecordCompletion(ctx, h.ID, userID, nil)
	require.NoError(t, err)
	clk.Advance(48 * time.Hour)

	unlock, ok, err := lock.TryLock(ctx, h.ID.String(), time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	scheduler.RunOnce(ctx)
	assert.Empty(t, rec.types(), "another instance holds the habit")

	unlock()
	scheduler.RunOnce(ctx)
	assert.Equal(t, []event.Type{event.TypeStreakBroken}, rec.types())
}
