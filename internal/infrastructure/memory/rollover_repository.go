package memory

import (
	"context"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"
	"time"

	"github.com/google/uuid"
)

type rolloverRepository struct {
	store *Store
	inTx  bool
}

var _ repository.RolloverRepository = (*rolloverRepository)(nil)

func (r *rolloverRepository) TryMark(_ context.Context, habitID uuid.UUID, periodStart time.Time, broken bool) (bool, error) {
	defer r.store.lock(r.inTx)()

	key := rolloverKey{habitID: habitID, periodStart: entity.DateOf(periodStart)}
	if _, ok := r.store.d.rollovers[key]; ok {
		return false, nil
	}
	r.store.d.rollovers[key] = broken
	return true, nil
}
