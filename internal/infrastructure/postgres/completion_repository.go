package postgres

import (
	"context"
	"fmt"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type completionRepository struct {
	db DBTX
}

// NewCompletionRepository creates a new PostgreSQL completion repository
func NewCompletionRepository(pool *pgxpool.Pool) repository.CompletionRepository {
	return &completionRepository{db: pool}
}

func (r *completionRepository) Create(ctx context.Context, completion *entity.Completion) error {
	query := `
		INSERT INTO habit_completions (
			id, habit_id, user_id, completion_date, period_start, xp_awarded, recorded_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := r.db.Exec(ctx, query,
		completion.ID,
		completion.HabitID,
		completion.UserID,
		completion.Date,
		completion.PeriodStart,
		completion.XPAwarded,
		completion.RecordedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: period starting %s", entity.ErrAlreadyRecorded, completion.PeriodStart.Format(entity.DateLayout))
		}
		return fmt.Errorf("failed to create completion: %w", err)
	}

	return nil
}

func (r *completionRepository) ListDates(ctx context.Context, habitID uuid.UUID) ([]time.Time, error) {
	query := `
		SELECT completion_date
		FROM habit_completions
		WHERE habit_id = $1
		ORDER BY completion_date
	`

	rows, err := r.db.Query(ctx, query, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completion dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan completion date: %w", err)
		}
		dates = append(dates, entity.DateOf(d))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completion dates: %w", err)
	}

	return dates, nil
}

func (r *completionRepository) GetByHabitID(ctx context.Context, habitID uuid.UUID, limit, offset int32) ([]*entity.Completion, error) {
	query := `
		SELECT
			id, habit_id, user_id, completion_date, period_start, xp_awarded, recorded_at
		FROM habit_completions
		WHERE habit_id = $1
		ORDER BY completion_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, habitID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get completions: %w", err)
	}
	defer rows.Close()

	var completions []*entity.Completion
	for rows.Next() {
		completion := &entity.Completion{}
		err := rows.Scan(
			&completion.ID,
			&completion.HabitID,
			&completion.UserID,
			&completion.Date,
			&completion.PeriodStart,
			&completion.XPAwarded,
			&completion.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completion.Date = entity.DateOf(completion.Date)
		completion.PeriodStart = entity.DateOf(completion.PeriodStart)
		completions = append(completions, completion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completions: %w", err)
	}

	return completions, nil
}

func (r *completionRepository) CountByHabitID(ctx context.Context, habitID uuid.UUID) (int32, error) {
	query := `
		SELECT COUNT(*) FROM habit_completions WHERE habit_id = $1
	`

	var count int32
	err := r.db.QueryRow(ctx, query, habitID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}

	return count, nil
}

func (r *completionRepository) ExistsForDate(ctx context.Context, habitID uuid.UUID, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM habit_completions
			WHERE habit_id = $1 AND completion_date = $2
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, habitID, entity.DateOf(date)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check completion existence: %w", err)
	}

	return exists, nil
}

func (r *completionRepository) CountByUserAndDates(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[string]int32, error) {
	query := `
		SELECT completion_date, COUNT(*)
		FROM habit_completions
		WHERE user_id = $1 AND completion_date BETWEEN $2 AND $3
		GROUP BY completion_date
	`

	rows, err := r.db.Query(ctx, query, userID, entity.DateOf(from), entity.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("failed to count completions by date: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int32)
	for rows.Next() {
		var d time.Time
		var n int32
		if err := rows.Scan(&d, &n); err != nil {
			return nil, fmt.Errorf("failed to scan completion count: %w", err)
		}
		counts[d.Format(entity.DateLayout)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completion counts: %w", err)
	}

	return counts, nil
}
