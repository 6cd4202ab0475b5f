package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/monitoring"
)

type AccountRepository interface {
	FindAccount(ctx context.Context, id int64) (*models.Account, error)
	// FindAccountForUpdate locks the row until the surrounding Atomic ends.
	FindAccountForUpdate(ctx context.Context, id int64) (*models.Account, error)
	// FindAccountsByIDs locks and returns the accounts that exist, keyed by id.
	FindAccountsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Account, error)
	SaveAccount(ctx context.Context, account models.Account) error
}

type accountRepository sqlRepo

var _ AccountRepository = (*accountRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Number,
		&account.Balance,
		&account.Blocked,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (ar *accountRepository) FindAccount(ctx context.Context, id int64) (result *models.Account, err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	db := ar.r.reader(ctx)

	result, err = scanAccount(db.QueryRowContext(ctx, queryAccountFind, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrDataNotFound
	}
	return result, err
}

func (ar *accountRepository) FindAccountForUpdate(ctx context.Context, id int64) (result *models.Account, err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	db := ar.r.writer(ctx)

	result, err = scanAccount(db.QueryRowContext(ctx, queryAccountFindForUpdate, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrDataNotFound
	}
	return result, err
}

func (ar *accountRepository) FindAccountsByIDs(ctx context.Context, ids []int64) (result map[int64]*models.Account, err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	result = make(map[int64]*models.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := buildFindAccountsByIDsQuery(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	db := ar.r.writer(ctx)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		account, errScan := scanAccount(rows)
		if errScan != nil {
			return nil, errScan
		}
		result[account.ID] = account
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (ar *accountRepository) SaveAccount(ctx context.Context, account models.Account) (err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	db := ar.r.writer(ctx)

	res, err := db.ExecContext(ctx, queryAccountSave, account.Balance, account.Blocked, account.UpdatedAt, account.ID)
	if err != nil {
		return
	}

	affectedRows, err := res.RowsAffected()
	if err != nil {
		return
	}

	if affectedRows == 0 {
		err = common.ErrNoRowsAffected
		return
	}

	return
}
