package repositories

import (
	"context"
	"database/sql"
)

type activeTxKey struct{}

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func withActiveTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, activeTxKey{}, tx)
}

func activeTx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(activeTxKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}

// writer is the open transaction of ctx or the primary.
func (r *Repository) writer(ctx context.Context) executor {
	if tx, ok := activeTx(ctx); ok {
		return tx
	}
	return r.dbWrite
}

// reader stays on the open transaction so locked rows are read consistently.
// Outside of Atomic it goes to the replica.
func (r *Repository) reader(ctx context.Context) executor {
	if tx, ok := activeTx(ctx); ok {
		return tx
	}
	return r.dbRead
}
