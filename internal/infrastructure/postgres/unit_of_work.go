package postgres

import (
	"context"
	"sparkos/internal/domain/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type unitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork creates a transactor running each unit of work in one
// PostgreSQL transaction
func NewUnitOfWork(pool *pgxpool.Pool) repository.Transactor {
	return &unitOfWork{pool: pool}
}

func repositoriesFor(db DBTX) repository.Repositories {
	return repository.Repositories{
		Habits:      &habitRepository{db: db},
		Completions: &completionRepository{db: db},
		Progress:    &progressRepository{db: db},
		Rollovers:   &rolloverRepository{db: db},
	}
}

func (u *unitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return pgx.BeginFunc(ctx, u.pool, func(tx pgx.Tx) error {
		return fn(ctx, repositoriesFor(tx))
	})
}
