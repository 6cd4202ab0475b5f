package kafka

import (
	"context"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"

	dlqpublisher "github.com/francois202/gigabanksystem1-sub000/internal/common/dlq_publisher"

	"github.com/Shopify/sarama"
)

type BaseHandler struct {
	ClientID        string
	ConsumerGroup   string
	ConsumerMetrics *metrics.ConsumerMetrics
	DLQ             dlqpublisher.Router
	LogPrefix       string
}

func (b *BaseHandler) CreateLogField(msg *sarama.ConsumerMessage) []xlog.Field {
	return []xlog.Field{
		xlog.Time("timestamp", msg.Timestamp),
		xlog.String("topic", msg.Topic),
		xlog.String("key", string(msg.Key)),
		xlog.Int32("partition", msg.Partition),
		xlog.Int64("offset", msg.Offset),
		xlog.String("consumer_group", b.ConsumerGroup),
	}
}

// Ack marks the message. It reaches the broker on the next auto commit or Commit.
func (b *BaseHandler) Ack(ctx context.Context, session sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) {
	session.MarkMessage(message, "")
	xlog.Debug(
		ctx,
		b.LogPrefix+"[ACK]",
		xlog.String("topic", message.Topic),
		xlog.Int32("partition", message.Partition),
		xlog.Int64("offset", message.Offset),
	)
}

// Commit flushes marked offsets synchronously, for manual commit consumers.
func (b *BaseHandler) Commit(ctx context.Context, session sarama.ConsumerGroupSession) {
	session.Commit()
	xlog.Debug(ctx, b.LogPrefix+"[COMMIT]", xlog.String("consumer_group", b.ConsumerGroup))
}

// DeadLetter hands the message to the DLQ router. The caller still acks.
func (b *BaseHandler) DeadLetter(ctx context.Context, message *sarama.ConsumerMessage, causeErr error, attempts int) error {
	logField := b.CreateLogField(message)
	logField = append(logField, xlog.Int("attempts", attempts), xlog.Err(causeErr))

	if b.DLQ == nil {
		xlog.Error(ctx, b.LogPrefix+"[NACK-DLQ-MISSING]", logField...)
		return nil
	}

	err := b.DLQ.Route(ctx, message.Value, causeErr, models.Provenance{
		Topic:         message.Topic,
		Partition:     message.Partition,
		Offset:        message.Offset,
		Key:           string(message.Key),
		ConsumerGroup: b.ConsumerGroup,
		Attempts:      attempts,
	})

	if err != nil {
		logField = append(logField, xlog.String("dlq_status", "failed"))
		xlog.Error(ctx, b.LogPrefix+"[NACK-DLQ-FAILED]", logField...)
	} else {
		logField = append(logField, xlog.String("dlq_status", "success"))
		xlog.Info(ctx, b.LogPrefix+"[NACK-DLQ-SUCCESS]", logField...)
	}

	return err
}

func (b *BaseHandler) RecordMetrics(startTime time.Time, message *sarama.ConsumerMessage, outcome string) {
	b.ConsumerMetrics.GenerateMetrics(startTime, message, outcome)
}
