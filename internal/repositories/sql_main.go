package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
)

type sqlRepo struct {
	r *Repository
}

type Repository struct {
	dbWrite *sql.DB
	dbRead  *sql.DB
	common  sqlRepo

	ar *accountRepository
	tr *transactionRepository
	or *outboxRepository
}

func NewSQLRepository(dbWrite *sql.DB, dbRead *sql.DB) *Repository {
	rtx := &Repository{
		dbWrite: dbWrite,
		dbRead:  dbRead,
	}
	rtx.common.r = rtx
	rtx.ar = (*accountRepository)(&rtx.common)
	rtx.tr = (*transactionRepository)(&rtx.common)
	rtx.or = (*outboxRepository)(&rtx.common)

	return rtx
}

// SQLRepository is the ledger store. Atomic runs steps in one database
// transaction; repositories obtained from r inside steps share it.
type SQLRepository interface {
	Atomic(ctx context.Context, steps func(ctx context.Context, r SQLRepository) error) error
	GetAccountRepository() AccountRepository
	GetTransactionRepository() TransactionRepository
	GetOutboxRepository() OutboxRepository
}

var _ SQLRepository = (*Repository)(nil)

func (r *Repository) Atomic(ctx context.Context, steps func(ctx context.Context, r SQLRepository) error) (err error) {
	tx, err := r.dbWrite.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	xlog.Debug(ctx, "[DATABASE.TRANSACTION.BEGIN]")
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			xlog.Error(ctx, "[DATABASE.TRANSACTION.PANIC]", xlog.Any("panic", p))
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("tx err: %w, rb err: %v", err, rbErr)
			}
			xlog.Warn(ctx, "[DATABASE.TRANSACTION.ROLLBACK]", xlog.Err(err))
		} else {
			if err = tx.Commit(); err != nil {
				if errors.Is(err, sql.ErrTxDone) {
					xlog.Warn(ctx, "[DATABASE.TRANSACTION.ALREADY_COMMITTED_OR_ROLLEDBACK]", xlog.Err(err))
					err = nil
				}
				return
			}

			xlog.Debug(ctx, "[DATABASE.TRANSACTION.COMMIT]")
		}
	}()
	ctx = withActiveTx(ctx, tx)
	err = steps(ctx, r)
	return
}

func (r *Repository) GetAccountRepository() AccountRepository {
	return r.ar
}

func (r *Repository) GetTransactionRepository() TransactionRepository {
	return r.tr
}

func (r *Repository) GetOutboxRepository() OutboxRepository {
	return r.or
}
