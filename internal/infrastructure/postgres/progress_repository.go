package postgres

import (
	"context"
	"errors"
	"fmt"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type progressRepository struct {
	db DBTX
}

// NewProgressRepository creates a new PostgreSQL user progress repository
func NewProgressRepository(pool *pgxpool.Pool) repository.ProgressRepository {
	return &progressRepository{db: pool}
}

func (r *progressRepository) Get(ctx context.Context, userID uuid.UUID) (*entity.UserProgress, error) {
	query := `
		SELECT user_id, total_xp, level, created_at, updated_at
		FROM user_progress
		WHERE user_id = $1
	`

	return r.get(ctx, query, userID)
}

// GetForUpdate makes sure the row exists before locking it, so concurrent
// first grants for a user serialize on the same row
func (r *progressRepository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*entity.UserProgress, error) {
	ensure := `
		INSERT INTO user_progress (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, ensure, userID); err != nil {
		return nil, fmt.Errorf("failed to create progress: %w", err)
	}

	query := `
		SELECT user_id, total_xp, level, created_at, updated_at
		FROM user_progress
		WHERE user_id = $1
		FOR UPDATE
	`

	return r.get(ctx, query, userID)
}

func (r *progressRepository) get(ctx context.Context, query string, userID uuid.UUID) (*entity.UserProgress, error) {
	progress := &entity.UserProgress{}
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&progress.UserID,
		&progress.TotalXP,
		&progress.Level,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return progress, nil
}

func (r *progressRepository) Upsert(ctx context.Context, progress *entity.UserProgress) error {
	query := `
		INSERT INTO user_progress (user_id, total_xp, level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET total_xp = EXCLUDED.total_xp,
		    level = EXCLUDED.level,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query, progress.UserID, progress.TotalXP, progress.Level, progress.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	return nil
}
