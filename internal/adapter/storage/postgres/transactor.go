package postgres

import (
	"context"
	"fmt"

	"aid-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor using pgxpool.Pool.
type Transactor struct {
	pool Pool
}

// NewTransactor creates a new Transactor wrapping the connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin starts a new database transaction.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}

// LockCategory takes a transaction-scoped advisory lock for the category.
// It is released on commit or rollback.
func (t *Transactor) LockCategory(ctx context.Context, tx pgx.Tx, category domain.Category) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, categoryLockKey(category)); err != nil {
		return fmt.Errorf("advisory lock %s: %w", category, err)
	}
	return nil
}

func categoryLockKey(category domain.Category) string {
	return "distribution:" + string(category)
}
