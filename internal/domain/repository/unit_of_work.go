package repository

import (
	"context"
)

// Repositories groups the repositories bound to one unit of work
type Repositories struct {
	Habits      HabitRepository
	Completions CompletionRepository
	Progress    ProgressRepository
	Rollovers   RolloverRepository
}

// Transactor runs fn atomically. If fn returns an error every write made
// through repos is discarded.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
