package memory

import (
	"context"
	"fmt"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"
	"sort"
	"time"

	"github.com/google/uuid"
)

type completionRepository struct {
	store *Store
	inTx  bool
}

var _ repository.CompletionRepository = (*completionRepository)(nil)

func (r *completionRepository) Create(_ context.Context, completion *entity.Completion) error {
	defer r.store.lock(r.inTx)()

	log := r.store.d.completions[completion.HabitID]
	for _, c := range log {
		if c.PeriodStart.Equal(completion.PeriodStart) {
			return fmt.Errorf("%w: period starting %s", entity.ErrAlreadyRecorded, c.PeriodStart.Format(entity.DateLayout))
		}
	}

	c := *completion
	log = append(log, &c)
	sort.SliceStable(log, func(i, j int) bool { return log[i].Date.Before(log[j].Date) })
	r.store.d.completions[completion.HabitID] = log
	return nil
}

func (r *completionRepository) ListDates(_ context.Context, habitID uuid.UUID) ([]time.Time, error) {
	defer r.store.lock(r.inTx)()

	log := r.store.d.completions[habitID]
	dates := make([]time.Time, 0, len(log))
	for _, c := range log {
		dates = append(dates, c.Date)
	}
	return dates, nil
}

func (r *completionRepository) GetByHabitID(_ context.Context, habitID uuid.UUID, limit, offset int32) ([]*entity.Completion, error) {
	defer r.store.lock(r.inTx)()

	log := r.store.d.completions[habitID]
	var out []*entity.Completion
	for i := len(log) - 1 - int(offset); i >= 0 && len(out) < int(limit); i-- {
		c := *log[i]
		out = append(out, &c)
	}
	return out, nil
}

func (r *completionRepository) CountByHabitID(_ context.Context, habitID uuid.UUID) (int32, error) {
	defer r.store.lock(r.inTx)()

	return int32(len(r.store.d.completions[habitID])), nil
}

func (r *completionRepository) ExistsForDate(_ context.Context, habitID uuid.UUID, date time.Time) (bool, error) {
	defer r.store.lock(r.inTx)()

	date = entity.DateOf(date)
	for _, c := range r.store.d.completions[habitID] {
		if c.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *completionRepository) CountByUserAndDates(_ context.Context, userID uuid.UUID, from, to time.Time) (map[string]int32, error) {
	defer r.store.lock(r.inTx)()

	from, to = entity.DateOf(from), entity.DateOf(to)
	counts := make(map[string]int32)
	for _, log := range r.store.d.completions {
		for _, c := range log {
			if c.UserID != userID || c.Date.Before(from) || c.Date.After(to) {
				continue
			}
			counts[c.Date.Format(entity.DateLayout)]++
		}
	}
	return counts, nil
}
