package memory

import (
	"context"
	"sort"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"
	"time"

	"github.com/google/uuid"
)

type habitRepository struct {
	store *Store
	inTx  bool
}

var _ repository.HabitRepository = (*habitRepository)(nil)

func cloneHabit(h *entity.Habit) *entity.Habit {
	c := *h
	if h.Description != nil {
		d := *h.Description
		c.Description = &d
	}
	if h.LastQualifyingDay != nil {
		d := *h.LastQualifyingDay
		c.LastQualifyingDay = &d
	}
	if h.DeactivatedAt != nil {
		d := *h.DeactivatedAt
		c.DeactivatedAt = &d
	}
	return &c
}

func (r *habitRepository) Create(_ context.Context, habit *entity.Habit) error {
	defer r.store.lock(r.inTx)()

	r.store.d.habits[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *habitRepository) get(habitID uuid.UUID) (*entity.Habit, error) {
	h, ok := r.store.d.habits[habitID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return cloneHabit(h), nil
}

func (r *habitRepository) GetByIDAndUserID(_ context.Context, habitID, userID uuid.UUID) (*entity.Habit, error) {
	defer r.store.lock(r.inTx)()

	h, err := r.get(habitID)
	if err != nil {
		return nil, err
	}
	if h.UserID != userID {
		return nil, entity.ErrNotFound
	}
	return h, nil
}

func (r *habitRepository) GetByIDForUpdate(_ context.Context, habitID uuid.UUID) (*entity.Habit, error) {
	defer r.store.lock(r.inTx)()

	return r.get(habitID)
}

func (r *habitRepository) GetByUserID(_ context.Context, userID uuid.UUID, activeOnly bool) ([]*entity.Habit, error) {
	defer r.store.lock(r.inTx)()

	var habits []*entity.Habit
	for _, h := range r.store.d.habits {
		if h.UserID != userID || (activeOnly && !h.IsActive) {
			continue
		}
		habits = append(habits, cloneHabit(h))
	}
	sortNewestFirst(habits)
	return habits, nil
}

func (r *habitRepository) ListActive(_ context.Context) ([]*entity.Habit, error) {
	defer r.store.lock(r.inTx)()

	var habits []*entity.Habit
	for _, h := range r.store.d.habits {
		if h.IsActive {
			habits = append(habits, cloneHabit(h))
		}
	}
	sortNewestFirst(habits)
	return habits, nil
}

func (r *habitRepository) Update(_ context.Context, habit *entity.Habit) error {
	defer r.store.lock(r.inTx)()

	h, err := r.get(habit.ID)
	if err != nil {
		return err
	}
	h.Title = habit.Title
	h.Description = habit.Description
	h.UpdatedAt = habit.UpdatedAt
	r.store.d.habits[h.ID] = cloneHabit(h)
	return nil
}

func (r *habitRepository) UpdateStreak(_ context.Context, habitID uuid.UUID, streak entity.StreakState) error {
	defer r.store.lock(r.inTx)()

	h, err := r.get(habitID)
	if err != nil {
		return err
	}
	h.ApplyStreak(streak)
	h.UpdatedAt = time.Now().UTC()
	r.store.d.habits[h.ID] = cloneHabit(h)
	return nil
}

func (r *habitRepository) Deactivate(_ context.Context, habitID uuid.UUID, at time.Time) error {
	defer r.store.lock(r.inTx)()

	h, err := r.get(habitID)
	if err != nil {
		return err
	}
	h.IsActive = false
	h.DeactivatedAt = &at
	h.UpdatedAt = at
	r.store.d.habits[h.ID] = h
	return nil
}

func sortNewestFirst(habits []*entity.Habit) {
	sort.Slice(habits, func(i, j int) bool {
		if habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].ID.String() < habits[j].ID.String()
		}
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})
}
