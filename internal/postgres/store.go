package postgres

import (
	"context"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx used by queries. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so every query method works inside and outside a
// transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements service.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	db   DBTX
}

// Compile-time check that Store implements service.Store.
var _ service.Store = (*Store)(nil)

// NewStore creates a PostgreSQL-backed store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// WithTx runs fn against a transaction-scoped store. fn returning nil
// commits; any error rolls back. Nested calls reuse the open transaction.
func (s *Store) WithTx(ctx context.Context, fn func(service.Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "store.with_tx", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := fn(&Store{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "store.with_tx", "failed to commit transaction")
	}
	return nil
}
