package kafkaconsumer

import (
	"context"
	"testing"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/models"

	kafkacommon "github.com/francois202/gigabanksystem1-sub000/internal/common/kafka"
	kafkaMock "github.com/francois202/gigabanksystem1-sub000/internal/common/kafka/mock"
	servicesMock "github.com/francois202/gigabanksystem1-sub000/internal/services/mock"

	"github.com/Shopify/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newBatchTest(t *testing.T, maxRecords int) (*BatchHandler, *kafkaMock.MockConsumerGroupSession, *servicesMock.MockBatchProcessor) {
	t.Helper()
	mockCtrl := gomock.NewController(t)

	session := kafkaMock.NewMockConsumerGroupSession(mockCtrl)
	session.EXPECT().Context().Return(context.Background()).AnyTimes()
	processor := servicesMock.NewMockBatchProcessor(mockCtrl)

	handler := NewBatchHandler(kafkacommon.BaseHandler{ClientID: "test", ConsumerGroup: "batch"}, processor, models.ExactlyOnce, maxRecords, time.Hour)
	return handler, session, processor
}

func TestNewBatchHandler_Defaults(t *testing.T) {
	handler := NewBatchHandler(kafkacommon.BaseHandler{}, nil, models.AtLeastOnce, 0, 0)
	assert.Equal(t, DefaultBatchMaxRecords, handler.maxRecords)
	assert.Equal(t, DefaultBatchMaxWait, handler.maxWait)
	assert.NotEmpty(t, handler.LogPrefix)
}

func TestBatchHandler_Flush(t *testing.T) {
	t.Run("commits processed batch", func(t *testing.T) {
		handler, session, processor := newBatchTest(t, 10)
		messages := []*sarama.ConsumerMessage{message(validEvent), message(`{"id":8,"accountId":1,"amount":"5","kind":"WITHDRAWAL"}`), message(`oops`)}

		processor.EXPECT().ProcessBatch(gomock.Any(), gomock.Any(), models.ExactlyOnce).
			DoAndReturn(func(_ context.Context, events []models.TransactionEvent, _ models.DeliveryMode) (models.BatchResult, error) {
				require.Len(t, events, 3)
				assert.Equal(t, "7", events[0].IdempotencyKey())
				assert.Equal(t, "8", events[1].IdempotencyKey())
				assert.Nil(t, events[2].ID)
				return models.BatchResult{Total: 3, Succeeded: 2, Failed: 1}, nil
			})
		session.EXPECT().MarkMessage(gomock.Any(), "").Times(3)
		session.EXPECT().Commit()

		require.NoError(t, handler.Flush(session, messages))
	})

	t.Run("rolled back batch stays uncommitted", func(t *testing.T) {
		handler, session, processor := newBatchTest(t, 10)

		processor.EXPECT().ProcessBatch(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.BatchResult{Total: 1}, assert.AnError)

		err := handler.Flush(session, []*sarama.ConsumerMessage{message(validEvent)})
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("empty batch", func(t *testing.T) {
		handler, session, _ := newBatchTest(t, 10)
		assert.NoError(t, handler.Flush(session, nil))
	})
}

func TestBatchHandler_ConsumeClaim(t *testing.T) {
	handler, session, processor := newBatchTest(t, 2)
	claim := kafkaMock.NewMockConsumerGroupClaim(gomock.NewController(t))

	messages := make(chan *sarama.ConsumerMessage, 3)
	for i := 0; i < 3; i++ {
		messages <- message(validEvent)
	}
	close(messages)
	claim.EXPECT().Messages().Return((<-chan *sarama.ConsumerMessage)(messages)).AnyTimes()

	var sizes []int
	processor.EXPECT().ProcessBatch(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, events []models.TransactionEvent, _ models.DeliveryMode) (models.BatchResult, error) {
			sizes = append(sizes, len(events))
			return models.BatchResult{Total: len(events), Succeeded: len(events)}, nil
		}).Times(2)
	session.EXPECT().MarkMessage(gomock.Any(), "").Times(3)
	session.EXPECT().Commit().Times(2)

	require.NoError(t, handler.ConsumeClaim(session, claim))
	assert.Equal(t, []int{2, 1}, sizes)
}
