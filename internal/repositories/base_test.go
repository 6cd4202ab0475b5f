package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	xlog.InitForTest()
	os.Exit(m.Run())
}

func TestRepository_executorRouting(t *testing.T) {
	writeDB, writeMock, err := sqlmock.New()
	require.NoError(t, err)
	defer writeDB.Close()
	readDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer readDB.Close()

	repo := NewSQLRepository(writeDB, readDB)
	ctx := context.Background()

	assert.Same(t, readDB, repo.reader(ctx))
	assert.Same(t, writeDB, repo.writer(ctx))

	writeMock.ExpectBegin()
	writeMock.ExpectRollback()
	tx, err := writeDB.Begin()
	require.NoError(t, err)

	txCtx := withActiveTx(ctx, tx)
	assert.Same(t, tx, repo.reader(txCtx))
	assert.Same(t, tx, repo.writer(txCtx))

	require.NoError(t, tx.Rollback())
	assert.NoError(t, writeMock.ExpectationsWereMet())
}
