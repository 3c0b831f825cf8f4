package memory

import (
	"context"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"

	"github.com/google/uuid"
)

type progressRepository struct {
	store *Store
	inTx  bool
}

var _ repository.ProgressRepository = (*progressRepository)(nil)

func (r *progressRepository) Get(_ context.Context, userID uuid.UUID) (*entity.UserProgress, error) {
	defer r.store.lock(r.inTx)()

	p, ok := r.store.d.progress[userID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r *progressRepository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*entity.UserProgress, error) {
	return r.Get(ctx, userID)
}

func (r *progressRepository) Upsert(_ context.Context, progress *entity.UserProgress) error {
	defer r.store.lock(r.inTx)()

	c := *progress
	if existing, ok := r.store.d.progress[progress.UserID]; ok {
		c.CreatedAt = existing.CreatedAt
	}
	r.store.d.progress[progress.UserID] = &c
	return nil
}
