package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-dispatch/internal/ports/dispatchtx"
)

// DispatchRepo is the delivery/cluster/offer repository. Standalone calls run
// on the pool; WithTx hands the same query set bound to one transaction.
type DispatchRepo struct {
	db *pgxpool.Pool
	queries
}

// NewDispatchRepo creates a new DispatchRepo.
func NewDispatchRepo(db *pgxpool.Pool) *DispatchRepo {
	return &DispatchRepo{db: db, queries: queries{q: db}}
}

// WithTx opens a transaction and executes fn within it.
func (r *DispatchRepo) WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	wrapped := &TxRepo{queries: queries{q: tx}}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// TxRepo is the transaction-bound view of the repository.
type TxRepo struct {
	queries
}

var _ dispatchtx.Repository = (*TxRepo)(nil)
var _ dispatchtx.Repository = (*DispatchRepo)(nil)

// queries implements every statement over a querier, which both the pool and
// a pgx.Tx satisfy.
type queries struct {
	q querier
}
