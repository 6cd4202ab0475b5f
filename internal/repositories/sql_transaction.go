package repositories

import (
	"context"

	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/monitoring"
)

type TransactionRepository interface {
	// SaveTransaction inserts the ledger row and returns its generated id.
	SaveTransaction(ctx context.Context, trx models.Transaction) (int64, error)
}

type transactionRepository sqlRepo

var _ TransactionRepository = (*transactionRepository)(nil)

func (tr *transactionRepository) SaveTransaction(ctx context.Context, trx models.Transaction) (id int64, err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	db := tr.r.writer(ctx)

	err = db.QueryRowContext(ctx, queryTransactionCreate,
		trx.EventID,
		trx.AccountID,
		trx.Amount,
		string(trx.Kind),
		trx.BalanceAfter,
		trx.SourceAccount,
		trx.TargetAccount,
		trx.Category,
		trx.CreatedAt,
	).Scan(&id)

	return id, err
}
