package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/idempotency"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBatchProcessor_ProcessBatch_Accounting(t *testing.T) {
	h := serviceTestHelper(t)

	invalid := newEvent(6, 1, "1.00", models.TransactionKindDeposit)
	invalid.ID = nil

	events := []models.TransactionEvent{
		newEvent(1, 1, "100.00", models.TransactionKindDeposit),
		newEvent(2, 999, "10.00", models.TransactionKindWithdrawal),
		newEvent(3, 2, "10.00", models.TransactionKindDeposit),
		newEvent(4, 1, "1000.50", models.TransactionKindWithdrawal),
		newEvent(5, 1, "50.00", models.TransactionKindWithdrawal),
		invalid,
	}
	accounts := map[int64]*models.Account{
		1: {ID: 1, Balance: decimal.RequireFromString("500.00")},
		2: {ID: 2, Balance: decimal.RequireFromString("10.00"), Blocked: true},
	}

	var balances []string
	h.expectAtomic()
	h.mockAccRepository.EXPECT().FindAccountsByIDs(gomock.Any(), []int64{1, 2, 999}).Return(accounts, nil)
	h.mockAccRepository.EXPECT().SaveAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a models.Account) error {
			balances = append(balances, a.Balance.StringFixed(2))
			return nil
		}).Times(2)
	gomock.InOrder(
		h.mockTrxRepository.EXPECT().SaveTransaction(gomock.Any(), gomock.Any()).Return(int64(11), nil),
		h.mockTrxRepository.EXPECT().SaveTransaction(gomock.Any(), gomock.Any()).Return(int64(12), nil),
	)
	h.mockOutboxRepository.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	h.mockCacheRepository.EXPECT().InvalidateLedger(gomock.Any(), int64(1), gomock.Any()).Return(nil).Times(2)

	result, err := h.batchProcessor.ProcessBatch(context.Background(), events, models.AtLeastOnce)
	require.NoError(t, err)

	assert.Equal(t, 6, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 4, result.Failed)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, result.Total, result.Succeeded+result.Failed+result.Duplicates)
	assert.True(t, result.Success())
	assert.Equal(t, []string{"600.00", "550.00"}, balances)

	snapshot := h.metrics.BatchProcessing().Snapshot()
	assert.Equal(t, int64(6), snapshot.Total)
	assert.Equal(t, int64(2), snapshot.Successful)
	assert.Equal(t, int64(4), snapshot.Failed)
}

func TestBatchProcessor_ProcessBatch_ExactlyOnceDuplicates(t *testing.T) {
	h := serviceTestHelper(t)

	events := []models.TransactionEvent{
		newEvent(10, 1, "5.00", models.TransactionKindDeposit),
		newEvent(10, 1, "5.00", models.TransactionKindDeposit),
		newEvent(11, 999, "5.00", models.TransactionKindDeposit),
		newEvent(12, 1, "5.00", models.TransactionKindDeposit),
	}

	h.expectAtomic()
	h.mockAccRepository.EXPECT().FindAccountsByIDs(gomock.Any(), []int64{1, 999}).
		Return(map[int64]*models.Account{1: {ID: 1, Balance: decimal.Zero}}, nil)
	gomock.InOrder(
		h.mockTracker.EXPECT().Claim(gomock.Any(), "10").Return(idempotency.ClaimAcquired, nil),
		h.mockTracker.EXPECT().Claim(gomock.Any(), "11").Return(idempotency.ClaimAcquired, nil),
		h.mockTracker.EXPECT().Release(gomock.Any(), "11").Return(nil),
		h.mockTracker.EXPECT().Claim(gomock.Any(), "12").Return(idempotency.ClaimProcessed, nil),
		h.mockTracker.EXPECT().Confirm(gomock.Any(), "10").Return(nil),
	)
	h.mockAccRepository.EXPECT().SaveAccount(gomock.Any(), gomock.Any()).Return(nil)
	h.mockTrxRepository.EXPECT().SaveTransaction(gomock.Any(), gomock.Any()).Return(int64(1), nil)
	h.mockOutboxRepository.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	h.mockCacheRepository.EXPECT().InvalidateLedger(gomock.Any(), int64(1), int64(1)).Return(nil)

	result, err := h.batchProcessor.ProcessBatch(context.Background(), events, models.ExactlyOnce)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Duplicates)
	assert.Equal(t, 1, result.Failed)
}

func TestBatchProcessor_ProcessBatch_InFlightEventRollsBack(t *testing.T) {
	h := serviceTestHelper(t)

	events := []models.TransactionEvent{
		newEvent(30, 1, "5.00", models.TransactionKindDeposit),
		newEvent(31, 1, "5.00", models.TransactionKindDeposit),
	}

	h.expectAtomic()
	h.mockAccRepository.EXPECT().FindAccountsByIDs(gomock.Any(), []int64{1}).
		Return(map[int64]*models.Account{1: {ID: 1, Balance: decimal.Zero}}, nil)
	h.mockAccRepository.EXPECT().SaveAccount(gomock.Any(), gomock.Any()).Return(nil)
	h.mockTrxRepository.EXPECT().SaveTransaction(gomock.Any(), gomock.Any()).Return(int64(1), nil)
	h.mockOutboxRepository.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	gomock.InOrder(
		h.mockTracker.EXPECT().Claim(gomock.Any(), "30").Return(idempotency.ClaimAcquired, nil),
		h.mockTracker.EXPECT().Claim(gomock.Any(), "31").Return(idempotency.ClaimInFlight, nil),
		h.mockTracker.EXPECT().Release(gomock.Any(), "30").Return(nil),
	)

	result, err := h.batchProcessor.ProcessBatch(context.Background(), events, models.ExactlyOnce)
	require.Error(t, err)
	assert.ErrorIs(t, err, idempotency.ErrInFlight)
	assert.Zero(t, result.Duplicates)
	assert.Zero(t, h.metrics.BatchProcessing().Snapshot().Total)
}

func TestBatchProcessor_ProcessBatch_InfrastructureErrorRollsBack(t *testing.T) {
	h := serviceTestHelper(t)

	errDB := errors.New("deadlock detected")
	events := []models.TransactionEvent{
		newEvent(20, 1, "5.00", models.TransactionKindDeposit),
		newEvent(21, 1, "5.00", models.TransactionKindDeposit),
	}

	h.expectAtomic()
	h.mockAccRepository.EXPECT().FindAccountsByIDs(gomock.Any(), []int64{1}).
		Return(map[int64]*models.Account{1: {ID: 1, Balance: decimal.Zero}}, nil)
	h.mockTracker.EXPECT().Claim(gomock.Any(), "20").Return(idempotency.ClaimAcquired, nil)
	h.mockAccRepository.EXPECT().SaveAccount(gomock.Any(), gomock.Any()).Return(errDB)
	h.mockTracker.EXPECT().Release(gomock.Any(), "20").Return(nil)

	result, err := h.batchProcessor.ProcessBatch(context.Background(), events, models.ExactlyOnce)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDB)
	assert.False(t, common.IsFatal(err))
	assert.Equal(t, 2, result.Total)
	assert.Zero(t, result.Succeeded)

	assert.Zero(t, h.metrics.BatchProcessing().Snapshot().Total)
}

func TestBatchProcessor_ProcessBatch_Empty(t *testing.T) {
	h := serviceTestHelper(t)

	result, err := h.batchProcessor.ProcessBatch(context.Background(), nil, models.AtLeastOnce)
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	assert.False(t, result.Success())
}

func TestBatchProcessor_ProcessBatch_LookupError(t *testing.T) {
	h := serviceTestHelper(t)

	h.expectAtomic()
	h.mockAccRepository.EXPECT().FindAccountsByIDs(gomock.Any(), []int64{1}).Return(nil, errors.New("timeout"))

	_, err := h.batchProcessor.ProcessBatch(context.Background(),
		[]models.TransactionEvent{newEvent(30, 1, "1.00", models.TransactionKindDeposit)}, models.AtLeastOnce)
	assert.Error(t, err)
}
