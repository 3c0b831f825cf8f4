// Package memory holds in-memory implementations of the repositories. It is
// safe for concurrent use and intended for tests and local development.
package memory

import (
	"context"
	"sparkos/internal/domain/entity"
	"sparkos/internal/domain/repository"
	"sync"
	"time"

	"github.com/google/uuid"
)

type rolloverKey struct {
	habitID     uuid.UUID
	periodStart time.Time
}

// data is the state guarded by Store.mu. Stored entities are never mutated in
// place, so a shallow copy of the maps is a consistent snapshot.
type data struct {
	habits      map[uuid.UUID]*entity.Habit
	completions map[uuid.UUID][]*entity.Completion // by habit, oldest first
	progress    map[uuid.UUID]*entity.UserProgress
	rollovers   map[rolloverKey]bool
}

func newData() data {
	return data{
		habits:      make(map[uuid.UUID]*entity.Habit),
		completions: make(map[uuid.UUID][]*entity.Completion),
		progress:    make(map[uuid.UUID]*entity.UserProgress),
		rollovers:   make(map[rolloverKey]bool),
	}
}

func (d data) snapshot() data {
	c := newData()
	for k, v := range d.habits {
		c.habits[k] = v
	}
	for k, v := range d.completions {
		c.completions[k] = append([]*entity.Completion(nil), v...)
	}
	for k, v := range d.progress {
		c.progress[k] = v
	}
	for k, v := range d.rollovers {
		c.rollovers[k] = v
	}
	return c
}

// Store is the in-memory database
type Store struct {
	mu sync.Mutex
	d  data
}

var _ repository.Transactor = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{d: newData()}
}

// Repositories returns repositories that lock the store per call
func (s *Store) Repositories() repository.Repositories {
	return s.repositories(false)
}

func (s *Store) repositories(inTx bool) repository.Repositories {
	return repository.Repositories{
		Habits:      &habitRepository{store: s, inTx: inTx},
		Completions: &completionRepository{store: s, inTx: inTx},
		Progress:    &progressRepository{store: s, inTx: inTx},
		Rollovers:   &rolloverRepository{store: s, inTx: inTx},
	}
}

// WithinTx serializes fn against every other store access and rolls back all
// of its writes if it fails
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.d.snapshot()
	if err := fn(ctx, s.repositories(true)); err != nil {
		s.d = saved
		return err
	}
	return nil
}

// lock acquires the store unless the caller already holds it through WithinTx
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}
