package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"
)

// openTestDB connects to SPARKOS_TEST_DATABASE_URL, skipping when unset
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("SPARKOS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SPARKOS_TEST_DATABASE_URL not set, skipping integration test")
	}

	require.NoError(t, Migrate(dsn, zap.NewNop()))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func newTestHabit(userID uuid.UUID) *entity.Habit {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &entity.Habit{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "Stretch",
		Cadence:   entity.CadenceDaily,
		Timezone:  "Europe/Berlin",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestHabitRepository_Integration(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	repo := NewHabitRepository(pool)
	userID := uuid.New()

	habit := newTestHabit(userID)
	require.NoError(t, repo.Create(ctx, habit))

	got, err := repo.GetByIDAndUserID(ctx, habit.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, habit.Title, got.Title)
	assert.Equal(t, entity.CadenceDaily, got.Cadence)
	assert.True(t, got.CreatedAt.Equal(habit.CreatedAt))

	_, err = repo.GetByIDAndUserID(ctx, habit.ID, uuid.New())
	assert.ErrorIs(t, err, entity.ErrNotFound)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateStreak(ctx, habit.ID, entity.StreakState{Current: 2, Longest: 4, LastQualifyingDay: &day}))

	got, err = repo.GetByIDAndUserID(ctx, habit.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), got.CurrentStreak)
	assert.Equal(t, int32(4), got.LongestStreak)
	require.NotNil(t, got.LastQualifyingDay)
	assert.True(t, day.Equal(*got.LastQualifyingDay))

	require.NoError(t, repo.Deactivate(ctx, habit.ID, time.Now().UTC()))
	active, err := repo.GetByUserID(ctx, userID, true)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestUnitOfWork_Integration(t *testing.T) {
	pool := openTestDB(t)
	ctx := context.Background()
	uow := NewUnitOfWork(pool)
	habits := NewHabitRepository(pool)
	completions := NewCompletionRepository(pool)
	progress := NewProgressRepository(pool)
	userID := uuid.New()

	habit := newTestHabit(userID)
	require.NoError(t, habits.Create(ctx, habit))

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	completion := &entity.Completion{
		ID: uuid.New(), HabitID: habit.ID, UserID: userID,
		Date: day, PeriodStart: day, XPAwarded: 10, RecordedAt: time.Now().UTC(),
	}

	err := uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Completions.Create(ctx, completion); err != nil {
			return err
		}
		p, err := repos.Progress.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		p.TotalXP += 10
		p.UpdatedAt = time.Now().UTC()
		return repos.Progress.Upsert(ctx, p)
	})
	require.NoError(t, err)

	// duplicate period rolls back every write of the unit
	err = uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		p, err := repos.Progress.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		p.TotalXP += 10
		if err := repos.Progress.Upsert(ctx, p); err != nil {
			return err
		}
		dup := *completion
		dup.ID = uuid.New()
		return repos.Completions.Create(ctx, &dup)
	})
	assert.ErrorIs(t, err, entity.ErrAlreadyRecorded)

	p, err := progress.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.TotalXP)

	dates, err := completions.ListDates(ctx, habit.ID)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day}, dates)

	counts, err := completions.CountByUserAndDates(ctx, userID, day.AddDate(0, 0, -6), day)
	require.NoError(t, err)
	assert.Equal(t, map[string]int32{"2024-03-01": 1}, counts)

	err = uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		first, err := repos.Rollovers.TryMark(ctx, habit.ID, day, false)
		require.NoError(t, err)
		assert.True(t, first)
		second, err := repos.Rollovers.TryMark(ctx, habit.ID, day, false)
		require.NoError(t, err)
		assert.False(t, second)
		return nil
	})
	require.NoError(t, err)
}
