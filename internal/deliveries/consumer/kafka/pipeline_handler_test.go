package kafkaconsumer

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/idempotency"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/retry"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"

	dlqMock "github.com/francois202/gigabanksystem1-sub000/internal/common/dlq_publisher/mock"
	idempotencyMock "github.com/francois202/gigabanksystem1-sub000/internal/common/idempotency/mock"
	kafkacommon "github.com/francois202/gigabanksystem1-sub000/internal/common/kafka"
	kafkaMock "github.com/francois202/gigabanksystem1-sub000/internal/common/kafka/mock"
	servicesMock "github.com/francois202/gigabanksystem1-sub000/internal/services/mock"

	"github.com/Shopify/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const validEvent = `{"id":7,"accountId":1,"amount":"100.00","kind":"DEPOSIT","createdAt":"2026-01-01T00:00:00Z"}`

func TestMain(m *testing.M) {
	xlog.InitForTest()
	os.Exit(m.Run())
}

type pipelineTestHelper struct {
	session    *kafkaMock.MockConsumerGroupSession
	processor  *servicesMock.MockTransactionProcessor
	tracker    *idempotencyMock.MockTracker
	dlq        *dlqMock.MockRouter
	processing *metrics.ProcessingMetrics
}

func newPipelineTestHelper(t *testing.T) pipelineTestHelper {
	t.Helper()
	mockCtrl := gomock.NewController(t)

	session := kafkaMock.NewMockConsumerGroupSession(mockCtrl)
	session.EXPECT().Context().Return(context.Background()).AnyTimes()

	return pipelineTestHelper{
		session:    session,
		processor:  servicesMock.NewMockTransactionProcessor(mockCtrl),
		tracker:    idempotencyMock.NewMockTracker(mockCtrl),
		dlq:        dlqMock.NewMockRouter(mockCtrl),
		processing: metrics.NewProcessingMetrics(),
	}
}

func (h pipelineTestHelper) handler(policy Policy) *PipelineHandler {
	retryer := retry.NewExponentialBackOff(config.ExponentialBackOffConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})
	return NewPipelineHandler(
		kafkacommon.BaseHandler{ClientID: "test", ConsumerGroup: "g", DLQ: h.dlq},
		policy,
		h.processor,
		h.tracker,
		retryer,
		h.processing,
	)
}

func message(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{
		Topic:     "transactions",
		Partition: 0,
		Offset:    42,
		Key:       []byte("1"),
		Value:     []byte(value),
		Timestamp: time.Now(),
	}
}

func TestPipelineHandler_AtMostOnce(t *testing.T) {
	t.Run("acks before processing", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(validEvent)

		gomock.InOrder(
			h.session.EXPECT().MarkMessage(msg, ""),
			h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(&models.LedgerUpdate{}, nil),
		)

		require.NoError(t, h.handler(AtMostOncePolicy).HandleMessage(h.session, msg))
	})

	t.Run("failure is dropped", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(validEvent)

		h.session.EXPECT().MarkMessage(msg, "")
		h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

		require.NoError(t, h.handler(AtMostOncePolicy).HandleMessage(h.session, msg))
		assert.Equal(t, int64(1), h.processing.Snapshot().Failed)
	})
}

func TestPipelineHandler_AtLeastOnce(t *testing.T) {
	t.Run("commits after apply", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(validEvent)

		gomock.InOrder(
			h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, event models.TransactionEvent) (*models.LedgerUpdate, error) {
					assert.Equal(t, int64(7), *event.ID)
					assert.Equal(t, models.TransactionKindDeposit, event.Kind)
					return &models.LedgerUpdate{}, nil
				}),
			h.session.EXPECT().MarkMessage(msg, ""),
			h.session.EXPECT().Commit(),
		)

		require.NoError(t, h.handler(AtLeastOncePolicy).HandleMessage(h.session, msg))
	})

	t.Run("failure leaves offset uncommitted", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(validEvent)

		h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

		err := h.handler(AtLeastOncePolicy).HandleMessage(h.session, msg)
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, int64(1), h.processing.Snapshot().Failed)
	})

	t.Run("malformed payload is not applied", func(t *testing.T) {
		h := newPipelineTestHelper(t)

		err := h.handler(AtLeastOncePolicy).HandleMessage(h.session, message(`{"id":`))
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrMalformedPayload)
	})

	t.Run("invalid event is not applied", func(t *testing.T) {
		h := newPipelineTestHelper(t)

		err := h.handler(AtLeastOncePolicy).HandleMessage(h.session, message(`{"accountId":1,"amount":"1","kind":"DEPOSIT"}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrMissingTransactionID)
	})
}

func TestPipelineHandler_ExactlyOnce(t *testing.T) {
	t.Run("first delivery applies", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(validEvent)

		gomock.InOrder(
			h.tracker.EXPECT().Claim(gomock.Any(), "7").Return(idempotency.ClaimAcquired, nil),
			h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(&models.LedgerUpdate{}, nil),
			h.tracker.EXPECT().Confirm(gomock.Any(), "7").Return(nil),
			h.session.EXPECT().MarkMessage(msg, ""),
			h.session.EXPECT().Commit(),
		)

		require.NoError(t, h.handler(ExactlyOncePolicy).HandleMessage(h.session, msg))
	})

	t.Run("duplicate is acknowledged without apply", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(validEvent)

		h.tracker.EXPECT().Claim(gomock.Any(), "7").Return(idempotency.ClaimProcessed, nil)
		h.session.EXPECT().MarkMessage(msg, "")
		h.session.EXPECT().Commit()

		require.NoError(t, h.handler(ExactlyOncePolicy).HandleMessage(h.session, msg))
		snapshot := h.processing.Snapshot()
		assert.Equal(t, int64(1), snapshot.Duplicate)
		assert.Equal(t, int64(1), snapshot.Total)
	})

	t.Run("in-flight id is redelivered, not acknowledged", func(t *testing.T) {
		h := newPipelineTestHelper(t)

		h.tracker.EXPECT().Claim(gomock.Any(), "7").Return(idempotency.ClaimInFlight, nil)

		err := h.handler(ExactlyOncePolicy).HandleMessage(h.session, message(validEvent))
		assert.ErrorIs(t, err, idempotency.ErrInFlight)
		snapshot := h.processing.Snapshot()
		assert.Equal(t, int64(0), snapshot.Duplicate)
		assert.Equal(t, int64(1), snapshot.Failed)
	})

	t.Run("failed apply releases the claim", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(validEvent)

		gomock.InOrder(
			h.tracker.EXPECT().Claim(gomock.Any(), "7").Return(idempotency.ClaimAcquired, nil),
			h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil, assert.AnError),
			h.tracker.EXPECT().Release(gomock.Any(), "7").Return(nil),
		)

		err := h.handler(ExactlyOncePolicy).HandleMessage(h.session, msg)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("confirm failure still acknowledges the applied event", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(validEvent)

		gomock.InOrder(
			h.tracker.EXPECT().Claim(gomock.Any(), "7").Return(idempotency.ClaimAcquired, nil),
			h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(&models.LedgerUpdate{}, nil),
			h.tracker.EXPECT().Confirm(gomock.Any(), "7").Return(errors.New("redis: connection refused")),
			h.session.EXPECT().MarkMessage(msg, ""),
			h.session.EXPECT().Commit(),
		)

		require.NoError(t, h.handler(ExactlyOncePolicy).HandleMessage(h.session, msg))
	})

	t.Run("tracker unavailable", func(t *testing.T) {
		h := newPipelineTestHelper(t)

		h.tracker.EXPECT().Claim(gomock.Any(), "7").Return(idempotency.ClaimInFlight, errors.New("redis: connection refused"))

		err := h.handler(ExactlyOncePolicy).HandleMessage(h.session, message(validEvent))
		assert.ErrorContains(t, err, "failed to check idempotency")
	})
}

// A redelivery that overlaps a running apply must come back later instead of
// being acknowledged as a duplicate, so a failing first attempt loses nothing.
func TestPipelineHandler_ExactlyOnce_OverlappingRedelivery(t *testing.T) {
	h := newPipelineTestHelper(t)
	tracker := idempotency.NewMemoryTracker(time.Minute)
	msg := message(validEvent)

	newHandler := func() *PipelineHandler {
		return NewPipelineHandler(
			kafkacommon.BaseHandler{ClientID: "test", ConsumerGroup: "g", DLQ: h.dlq},
			ExactlyOncePolicy,
			h.processor,
			tracker,
			nil,
			h.processing,
		)
	}
	first, second := newHandler(), newHandler()

	entered := make(chan struct{})
	unblock := make(chan struct{})
	var applied atomic.Int32
	gomock.InOrder(
		h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, models.TransactionEvent) (*models.LedgerUpdate, error) {
				close(entered)
				<-unblock
				return nil, errors.New("store timeout")
			}),
		h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, models.TransactionEvent) (*models.LedgerUpdate, error) {
				applied.Add(1)
				return &models.LedgerUpdate{}, nil
			}),
	)
	// the successful redelivery and the final duplicate are both settled
	h.session.EXPECT().MarkMessage(msg, "").Times(2)
	h.session.EXPECT().Commit().Times(2)

	firstErr := make(chan error, 1)
	go func() { firstErr <- first.HandleMessage(h.session, msg) }()
	<-entered

	err := second.HandleMessage(h.session, msg)
	assert.ErrorIs(t, err, idempotency.ErrInFlight)

	close(unblock)
	assert.ErrorContains(t, <-firstErr, "store timeout")

	require.NoError(t, second.HandleMessage(h.session, msg))
	assert.Equal(t, int32(1), applied.Load())
	assert.Equal(t, int64(0), h.processing.Snapshot().Duplicate)

	require.NoError(t, first.HandleMessage(h.session, msg))
	assert.Equal(t, int64(1), h.processing.Snapshot().Duplicate)
}

func TestPipelineHandler_RetryDLT(t *testing.T) {
	t.Run("succeeds after retries", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(validEvent)

		gomock.InOrder(
			h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil, assert.AnError).Times(2),
			h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(&models.LedgerUpdate{}, nil),
			h.session.EXPECT().MarkMessage(msg, ""),
			h.session.EXPECT().Commit(),
		)

		require.NoError(t, h.handler(RetryDLTPolicy).HandleMessage(h.session, msg))
		snapshot := h.processing.Snapshot()
		assert.Equal(t, int64(2), snapshot.RetryAttempts)
		assert.Equal(t, int64(0), snapshot.DLTMessages)
	})

	t.Run("exhausted budget goes to dead letter", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(validEvent)

		h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil, assert.AnError).Times(3)
		h.dlq.EXPECT().Route(gomock.Any(), msg.Value, gomock.Any(), models.Provenance{
			Topic:         "transactions",
			Partition:     0,
			Offset:        42,
			Key:           "1",
			ConsumerGroup: "g",
			Attempts:      3,
		}).Return(nil)
		h.session.EXPECT().MarkMessage(msg, "")
		h.session.EXPECT().Commit()

		require.NoError(t, h.handler(RetryDLTPolicy).HandleMessage(h.session, msg))
		snapshot := h.processing.Snapshot()
		assert.Equal(t, int64(2), snapshot.RetryAttempts)
		assert.Equal(t, int64(1), snapshot.DLTMessages)
		assert.Equal(t, int64(1), snapshot.Failed)
	})

	t.Run("fatal error skips retries", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(validEvent)

		h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil, common.ErrInsufficientFunds)
		h.dlq.EXPECT().Route(gomock.Any(), msg.Value, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ []byte, cause error, provenance models.Provenance) error {
				assert.ErrorIs(t, cause, common.ErrInsufficientFunds)
				assert.Equal(t, 1, provenance.Attempts)
				return nil
			})
		h.session.EXPECT().MarkMessage(msg, "")
		h.session.EXPECT().Commit()

		require.NoError(t, h.handler(RetryDLTPolicy).HandleMessage(h.session, msg))
		assert.Equal(t, int64(0), h.processing.Snapshot().RetryAttempts)
	})

	t.Run("dead letter failure still moves on", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		msg := message(`not json`)

		h.dlq.EXPECT().Route(gomock.Any(), msg.Value, gomock.Any(), gomock.Any()).Return(errors.New("kafka: broker not available"))
		h.session.EXPECT().MarkMessage(msg, "")
		h.session.EXPECT().Commit()

		require.NoError(t, h.handler(RetryDLTPolicy).HandleMessage(h.session, msg))
		assert.Equal(t, int64(1), h.processing.Snapshot().DLTMessages)
	})
}

func TestPipelineHandler_ConsumeClaim(t *testing.T) {
	t.Run("drains the claim", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		claim := kafkaMock.NewMockConsumerGroupClaim(gomock.NewController(t))

		messages := make(chan *sarama.ConsumerMessage, 2)
		messages <- message(validEvent)
		messages <- message(validEvent)
		close(messages)
		claim.EXPECT().Messages().Return((<-chan *sarama.ConsumerMessage)(messages)).AnyTimes()

		h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(&models.LedgerUpdate{}, nil).Times(2)
		h.session.EXPECT().MarkMessage(gomock.Any(), "").Times(2)
		h.session.EXPECT().Commit().Times(2)

		require.NoError(t, h.handler(AtLeastOncePolicy).ConsumeClaim(h.session, claim))
	})

	t.Run("stops on the first redelivery", func(t *testing.T) {
		h := newPipelineTestHelper(t)
		claim := kafkaMock.NewMockConsumerGroupClaim(gomock.NewController(t))

		messages := make(chan *sarama.ConsumerMessage, 2)
		messages <- message(validEvent)
		messages <- message(validEvent)
		claim.EXPECT().Messages().Return((<-chan *sarama.ConsumerMessage)(messages)).AnyTimes()

		h.processor.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(nil, assert.AnError).Times(1)

		assert.ErrorIs(t, h.handler(AtLeastOncePolicy).ConsumeClaim(h.session, claim), assert.AnError)
	})
}

func TestDecodeEvent(t *testing.T) {
	event, err := DecodeEvent([]byte(validEvent))
	require.NoError(t, err)
	assert.Equal(t, "7", event.IdempotencyKey())
	assert.Equal(t, "100", event.Amount.String())

	_, err = DecodeEvent([]byte(`[]`))
	assert.ErrorIs(t, err, common.ErrMalformedPayload)
}
