package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/publisher"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newOutboxRecord(t *testing.T, accountID int64) models.OutboxRecord {
	t.Helper()
	payload, err := json.Marshal(models.TransactionAppliedEvent{
		EventID:      accountID * 10,
		AccountID:    accountID,
		Kind:         models.TransactionKindDeposit,
		Amount:       decimal.NewFromInt(1),
		BalanceAfter: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	return models.OutboxRecord{
		ID:            uuid.New(),
		AggregateType: models.AggregateTypeAccount,
		AggregateID:   decimal.NewFromInt(accountID).String(),
		EventType:     models.EventTypeTransactionApplied,
		Payload:       payload,
		CreatedAt:     time.Now(),
	}
}

func TestOutboxRelay_RunCycle(t *testing.T) {
	h := serviceTestHelper(t)
	ctx := context.Background()

	first := newOutboxRecord(t, 1)
	second := newOutboxRecord(t, 2)
	third := newOutboxRecord(t, 3)
	malformed := newOutboxRecord(t, 4)
	malformed.Payload = []byte("{not json")

	h.mockOutboxRepository.EXPECT().FindUnprocessed(gomock.Any(), uint64(100)).
		Return([]models.OutboxRecord{first, second, malformed, third}, nil)

	gomock.InOrder(
		h.mockOutboxPublisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		h.mockOutboxRepository.EXPECT().MarkProcessed(gomock.Any(), first, gomock.Any()).Return(nil),
	)
	h.mockOutboxPublisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("broker unavailable"))
	gomock.InOrder(
		h.mockOutboxPublisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		h.mockOutboxRepository.EXPECT().MarkProcessed(gomock.Any(), third, gomock.Any()).Return(common.ErrNoRowsAffected),
	)

	result, err := h.outboxRelay.RunCycle(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), second.ID.String())
	assert.Contains(t, err.Error(), malformed.ID.String())
	assert.ErrorIs(t, err, common.ErrMalformedPayload)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Failed)
}

func TestOutboxRelay_RunCycle_PublishesWithKeyAndHeaders(t *testing.T) {
	h := serviceTestHelper(t)

	record := newOutboxRecord(t, 7)
	h.mockOutboxRepository.EXPECT().FindUnprocessed(gomock.Any(), uint64(100)).Return([]models.OutboxRecord{record}, nil)
	h.mockOutboxPublisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, message any, opts ...publisher.PublishOption) error {
			event, ok := message.(models.TransactionAppliedEvent)
			require.True(t, ok)
			assert.Equal(t, int64(7), event.AccountID)
			assert.Len(t, opts, 2)
			return nil
		})
	h.mockOutboxRepository.EXPECT().MarkProcessed(gomock.Any(), record, gomock.Any()).Return(nil)

	result, err := h.outboxRelay.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
}

func TestOutboxRelay_RunCycle_Idle(t *testing.T) {
	h := serviceTestHelper(t)

	h.mockOutboxRepository.EXPECT().FindUnprocessed(gomock.Any(), uint64(100)).Return(nil, nil)

	result, err := h.outboxRelay.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
}

func TestOutboxRelay_RunCycle_LoadError(t *testing.T) {
	h := serviceTestHelper(t)

	h.mockOutboxRepository.EXPECT().FindUnprocessed(gomock.Any(), uint64(100)).Return(nil, errors.New("db down"))

	_, err := h.outboxRelay.RunCycle(context.Background())
	assert.Error(t, err)
}
