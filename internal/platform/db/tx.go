package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

// DBTxKey is the context key under which an open transaction is stored.
// Repositories check for it before falling back to the shared pool, so a
// service can span several repository calls with one transaction.
const DBTxKey contextKey = "db_tx"

// ErrUnavailable wraps storage faults that are not caused by the caller.
var ErrUnavailable = errors.New("database unavailable")

// Unavailable marks a storage fault as ErrUnavailable for errors.Is matching
// at the HTTP boundary while keeping the driver's cause in the message so it
// is not lost before the request logger sees it.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
}

// ContextWithTx returns a copy of ctx carrying the given transaction.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, DBTxKey, tx)
}

// TxFromContext retrieves the transaction from context, or nil if none is open.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}

// TxRunner begins transactions against a pool and exposes them to
// repositories through the request context.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInTx executes fn inside a transaction. The transaction is stored in the
// context passed to fn; it commits when fn returns nil and rolls back
// otherwise. Nested calls reuse the already-open transaction.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := TxFromContext(ctx); tx != nil {
		return fn(ctx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Unavailable("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ContextWithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return Unavailable("commit transaction", err)
	}
	return nil
}
