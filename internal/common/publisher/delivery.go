package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog/ctxdata"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"

	"github.com/Shopify/sarama"
)

const deliveryLogIdentifier = "[DELIVERY-PRODUCER]"

var ErrProducerClosed = errors.New("producer is closed")

// DeliveryStrategy sends one prepared message under a single delivery guarantee.
type DeliveryStrategy interface {
	Mode() models.DeliveryMode
	Send(ctx context.Context, msg *sarama.ProducerMessage, event models.TransactionEvent) error
	Close() error
}

// CompletionFunc is called off the sending goroutine once the broker answers.
type CompletionFunc func(msg *sarama.ProducerMessage, err error)

type DeliveryProducer interface {
	// Send publishes event to the default topic. Unknown modes fall back to at-least-once.
	Send(ctx context.Context, event models.TransactionEvent, partitionKey string, mode models.DeliveryMode) error
	SendTo(ctx context.Context, topic string, event models.TransactionEvent, partitionKey string, mode models.DeliveryMode) error
	Stop(ctx context.Context) error
}

type deliveryMetadata struct {
	correlationID string
	transactionID string
	accountID     string
	mode          models.DeliveryMode
	sentAt        time.Time
}

func deliveryFields(meta deliveryMetadata, outcome string) []xlog.Field {
	return []xlog.Field{
		xlog.String("transaction_id", meta.transactionID),
		xlog.String("account_id", meta.accountID),
		xlog.String("delivery_mode", meta.mode.String()),
		xlog.String("outcome", outcome),
	}
}

func metadataFrom(ctx context.Context, event models.TransactionEvent, mode models.DeliveryMode) deliveryMetadata {
	return deliveryMetadata{
		correlationID: ctxdata.GetCorrelationId(ctx),
		transactionID: event.LogID(),
		accountID:     event.LogAccountID(),
		mode:          mode,
		sentAt:        time.Now(),
	}
}

func contextFor(meta deliveryMetadata) context.Context {
	return ctxdata.Sets(context.Background(), ctxdata.SetCorrelationId(meta.correlationID))
}

type deliveryProducer struct {
	topic      string
	strategies map[models.DeliveryMode]DeliveryStrategy
	fallback   DeliveryStrategy
	metrics    *metrics.PublisherPrometheusMetrics
}

// NewDeliveryProducer dispatches to the strategy registered for a mode.
// An at-least-once strategy is required as the fallback.
func NewDeliveryProducer(topic string, m *metrics.PublisherPrometheusMetrics, strategies ...DeliveryStrategy) (DeliveryProducer, error) {
	dp := &deliveryProducer{
		topic:      topic,
		strategies: make(map[models.DeliveryMode]DeliveryStrategy, len(strategies)),
		metrics:    m,
	}
	for _, s := range strategies {
		dp.strategies[s.Mode()] = s
	}

	fallback, ok := dp.strategies[models.AtLeastOnce]
	if !ok {
		return nil, fmt.Errorf("missing %s strategy", models.AtLeastOnce)
	}
	dp.fallback = fallback

	return dp, nil
}

func (dp *deliveryProducer) strategy(mode models.DeliveryMode) DeliveryStrategy {
	if s, ok := dp.strategies[mode]; ok {
		return s
	}
	return dp.fallback
}

func (dp *deliveryProducer) Send(ctx context.Context, event models.TransactionEvent, partitionKey string, mode models.DeliveryMode) error {
	return dp.SendTo(ctx, dp.topic, event, partitionKey, mode)
}

func (dp *deliveryProducer) SendTo(ctx context.Context, topic string, event models.TransactionEvent, partitionKey string, mode models.DeliveryMode) (err error) {
	s := dp.strategy(mode)
	if topic == "" {
		topic = dp.topic
	}
	defer func() { dp.metrics.CountDelivery(topic, s.Mode().String(), err) }()

	payload, err := json.Marshal(event)
	if err != nil {
		meta := metadataFrom(ctx, event, s.Mode())
		xlog.Error(ctx, deliveryLogIdentifier, append(deliveryFields(meta, "marshal_failed"), xlog.Err(err))...)
		if s.Mode() == models.AtMostOnce {
			return nil
		}
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:    topic,
		Value:    sarama.ByteEncoder(payload),
		Metadata: metadataFrom(ctx, event, s.Mode()),
	}
	if partitionKey != "" {
		msg.Key = sarama.StringEncoder(partitionKey)
	}

	return s.Send(ctx, msg, event)
}

func (dp *deliveryProducer) Stop(ctx context.Context) error {
	var errs []error
	for _, s := range dp.strategies {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s producer: %w", s.Mode(), err))
		}
	}
	xlog.Info(ctx, deliveryLogIdentifier, xlog.String("status", "producers closed"))
	return errors.Join(errs...)
}

// asyncStrategy backs at-most-once and at-least-once. The drain goroutine
// reads every channel the config asks sarama to return.
type asyncStrategy struct {
	mode       models.DeliveryMode
	producer   sarama.AsyncProducer
	onComplete CompletionFunc

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
}

// NewAtMostOnceStrategy expects a producer built with WithFireAndForget.
// Failures are logged by the drain goroutine and never reach the caller.
func NewAtMostOnceStrategy(producer sarama.AsyncProducer) DeliveryStrategy {
	s := &asyncStrategy{mode: models.AtMostOnce, producer: producer}
	s.onComplete = func(msg *sarama.ProducerMessage, err error) {
		meta, _ := msg.Metadata.(deliveryMetadata)
		if err != nil {
			xlog.Warn(contextFor(meta), deliveryLogIdentifier, append(deliveryFields(meta, "lost"), xlog.Err(err))...)
		}
	}
	s.start()
	return s
}

// NewAtLeastOnceStrategy expects a producer returning successes and errors.
// onComplete may be nil, the default logs the outcome.
func NewAtLeastOnceStrategy(producer sarama.AsyncProducer, onComplete CompletionFunc) DeliveryStrategy {
	s := &asyncStrategy{mode: models.AtLeastOnce, producer: producer, onComplete: onComplete}
	if s.onComplete == nil {
		s.onComplete = LogCompletion
	}
	s.start()
	return s
}

// LogCompletion logs the broker position on success. On failure it only
// logs: redelivery is left to the caller and the event log.
func LogCompletion(msg *sarama.ProducerMessage, err error) {
	meta, _ := msg.Metadata.(deliveryMetadata)
	ctx := contextFor(meta)
	if err != nil {
		xlog.Warn(ctx, deliveryLogIdentifier, append(deliveryFields(meta, "failed, will retry"), xlog.Err(err))...)
		return
	}

	xlog.Info(ctx, deliveryLogIdentifier, append(deliveryFields(meta, "acknowledged"),
		xlog.String("topic", msg.Topic),
		xlog.Int32("partition", msg.Partition),
		xlog.Int64("offset", msg.Offset),
		xlog.Duration("latency", time.Since(meta.sentAt)),
	)...)
}

func (s *asyncStrategy) start() {
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		for msg := range s.producer.Successes() {
			s.onComplete(msg, nil)
		}
	}()
	go func() {
		defer s.wg.Done()
		for perr := range s.producer.Errors() {
			s.onComplete(perr.Msg, perr.Err)
		}
	}()
}

func (s *asyncStrategy) Mode() models.DeliveryMode {
	return s.mode
}

func (s *asyncStrategy) Send(ctx context.Context, msg *sarama.ProducerMessage, event models.TransactionEvent) error {
	meta, _ := msg.Metadata.(deliveryMetadata)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var err error
	if s.closed {
		err = ErrProducerClosed
	} else {
		select {
		case s.producer.Input() <- msg:
			xlog.Debug(ctx, deliveryLogIdentifier, deliveryFields(meta, "enqueued")...)
			return nil
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	if s.mode == models.AtMostOnce {
		xlog.Warn(ctx, deliveryLogIdentifier, append(deliveryFields(meta, "lost"), xlog.Err(err))...)
		return nil
	}
	xlog.Error(ctx, deliveryLogIdentifier, append(deliveryFields(meta, "not enqueued"), xlog.Err(err))...)
	return err
}

func (s *asyncStrategy) Close() (err error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		err = s.producer.Close()
		s.wg.Wait()
	})
	return err
}

type syncStrategy struct {
	producer sarama.SyncProducer
}

// NewExactlyOnceStrategy expects an idempotent producer, see WithIdempotence.
// Send blocks until the broker acknowledges.
func NewExactlyOnceStrategy(producer sarama.SyncProducer) DeliveryStrategy {
	return &syncStrategy{producer: producer}
}

func (s *syncStrategy) Mode() models.DeliveryMode {
	return models.ExactlyOnce
}

func (s *syncStrategy) Send(ctx context.Context, msg *sarama.ProducerMessage, event models.TransactionEvent) error {
	meta, _ := msg.Metadata.(deliveryMetadata)

	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		xlog.Error(ctx, deliveryLogIdentifier, append(deliveryFields(meta, "failed"), xlog.Err(err))...)
		return err
	}

	xlog.Info(ctx, deliveryLogIdentifier, append(deliveryFields(meta, "acknowledged"),
		xlog.String("topic", msg.Topic),
		xlog.Int32("partition", partition),
		xlog.Int64("offset", offset),
	)...)
	return nil
}

func (s *syncStrategy) Close() error {
	return s.producer.Close()
}
