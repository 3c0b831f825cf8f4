package postgres

import (
	"context"
	"fmt"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"
	"time"

	"github.com/google/uuid"
)

// rolloverRepository is only reachable through a unit of work
type rolloverRepository struct {
	db DBTX
}

var _ repository.RolloverRepository = (*rolloverRepository)(nil)

func (r *rolloverRepository) TryMark(ctx context.Context, habitID uuid.UUID, periodStart time.Time, broken bool) (bool, error) {
	query := `
		INSERT INTO habit_rollovers (habit_id, period_start, broken)
		VALUES ($1, $2, $3)
		ON CONFLICT (habit_id, period_start) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query, habitID, entity.DateOf(periodStart), broken)
	if err != nil {
		return false, fmt.Errorf("failed to mark rollover: %w", err)
	}

	return result.RowsAffected() == 1, nil
}
