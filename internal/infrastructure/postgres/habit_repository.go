package postgres

import (
	"context"
	"errors"
	"fmt"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const habitColumns = `
	id, user_id, title, description, cadence, timezone,
	current_streak, longest_streak, last_qualifying_day,
	is_active, created_at, updated_at, deactivated_at
`

type habitRepository struct {
	db DBTX
}

// NewHabitRepository creates a new PostgreSQL habit repository
func NewHabitRepository(pool *pgxpool.Pool) repository.HabitRepository {
	return &habitRepository{db: pool}
}

func scanHabit(row pgx.Row) (*entity.Habit, error) {
	habit := &entity.Habit{}
	err := row.Scan(
		&habit.ID, &habit.UserID, &habit.Title, &habit.Description, &habit.Cadence, &habit.Timezone,
		&habit.CurrentStreak, &habit.LongestStreak, &habit.LastQualifyingDay,
		&habit.IsActive, &habit.CreatedAt, &habit.UpdatedAt, &habit.DeactivatedAt,
	)
	if err != nil {
		return nil, err
	}
	return habit, nil
}

func (r *habitRepository) Create(ctx context.Context, habit *entity.Habit) error {
	query := `
		INSERT INTO habits (` + habitColumns + `) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12, $13
		)
	`

	_, err := r.db.Exec(ctx, query,
		habit.ID, habit.UserID, habit.Title, habit.Description, habit.Cadence, habit.Timezone,
		habit.CurrentStreak, habit.LongestStreak, habit.LastQualifyingDay,
		habit.IsActive, habit.CreatedAt, habit.UpdatedAt, habit.DeactivatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}

	return nil
}

func (r *habitRepository) GetByIDAndUserID(ctx context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2`

	habit, err := scanHabit(r.db.QueryRow(ctx, query, habitID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return habit, nil
}

func (r *habitRepository) GetByIDForUpdate(ctx context.Context, habitID uuid.UUID) (*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 FOR UPDATE`

	habit, err := scanHabit(r.db.QueryRow(ctx, query, habitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock habit: %w", err)
	}

	return habit, nil
}

func (r *habitRepository) GetByUserID(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1`

	if activeOnly {
		query += " AND is_active = true"
	}

	query += " ORDER BY created_at DESC"

	return r.list(ctx, query, userID)
}

func (r *habitRepository) ListActive(ctx context.Context) ([]*entity.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE is_active = true ORDER BY created_at DESC`

	return r.list(ctx, query)
}

func (r *habitRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Habit, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}
	defer rows.Close()

	var habits []*entity.Habit
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, habit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}

	return habits, nil
}

func (r *habitRepository) Update(ctx context.Context, habit *entity.Habit) error {
	query := `
		UPDATE habits
		SET title = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, habit.ID, habit.Title, habit.Description, habit.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return nil
}

func (r *habitRepository) UpdateStreak(ctx context.Context, habitID uuid.UUID, streak entity.StreakState) error {
	query := `
		UPDATE habits
		SET current_streak = $2,
		    longest_streak = $3,
		    last_qualifying_day = $4,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, habitID, streak.Current, streak.Longest, streak.LastQualifyingDay)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return nil
}

func (r *habitRepository) Deactivate(ctx context.Context, habitID uuid.UUID, at time.Time) error {
	query := `
		UPDATE habits
		SET is_active = false, deactivated_at = $2, updated_at = $2
		WHERE id = $1 AND is_active = true
	`

	_, err := r.db.Exec(ctx, query, habitID, at)
	if err != nil {
		return fmt.Errorf("failed to deactivate habit: %w", err)
	}

	return nil
}
