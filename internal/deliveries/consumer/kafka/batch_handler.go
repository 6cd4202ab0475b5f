package kafkaconsumer

import (
	"context"
	"fmt"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog/ctxdata"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/services"

	kafkacommon "github.com/francois202/gigabanksystem1-sub000/internal/common/kafka"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
)

const (
	DefaultBatchMaxRecords = 20
	DefaultBatchMaxWait    = 500 * time.Millisecond
)

// BatchHandler buffers records of a claim and hands them to the batch
// processor once MaxRecords are collected or MaxWait has passed.
type BatchHandler struct {
	kafkacommon.BaseHandler

	processor  services.BatchProcessor
	mode       models.DeliveryMode
	maxRecords int
	maxWait    time.Duration
}

var _ sarama.ConsumerGroupHandler = (*BatchHandler)(nil)

func NewBatchHandler(
	base kafkacommon.BaseHandler,
	processor services.BatchProcessor,
	mode models.DeliveryMode,
	maxRecords int,
	maxWait time.Duration,
) *BatchHandler {
	if base.LogPrefix == "" {
		base.LogPrefix = "[KAFKA-CONSUMER] [batch]"
	}
	if maxRecords <= 0 {
		maxRecords = DefaultBatchMaxRecords
	}
	if maxWait <= 0 {
		maxWait = DefaultBatchMaxWait
	}
	return &BatchHandler{
		BaseHandler: base,
		processor:   processor,
		mode:        mode,
		maxRecords:  maxRecords,
		maxWait:     maxWait,
	}
}

func (h *BatchHandler) Setup(_ sarama.ConsumerGroupSession) error {
	return nil
}

func (h *BatchHandler) Cleanup(_ sarama.ConsumerGroupSession) error {
	return nil
}

func (h *BatchHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	buffer := make([]*sarama.ConsumerMessage, 0, h.maxRecords)
	ticker := time.NewTicker(h.maxWait)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return h.Flush(session, buffer)
			}
			buffer = append(buffer, message)
			if len(buffer) < h.maxRecords {
				continue
			}
			if err := h.Flush(session, buffer); err != nil {
				return err
			}
			buffer = buffer[:0]
			ticker.Reset(h.maxWait)
		case <-ticker.C:
			if len(buffer) == 0 {
				continue
			}
			if err := h.Flush(session, buffer); err != nil {
				return err
			}
			buffer = buffer[:0]
		case <-session.Context().Done():
			return nil
		}
	}
}

// Flush processes the buffered records as one batch. Offsets are committed
// unless the batch was rolled back.
func (h *BatchHandler) Flush(session sarama.ConsumerGroupSession, messages []*sarama.ConsumerMessage) error {
	if len(messages) == 0 {
		return nil
	}

	ctx := ctxdata.Sets(session.Context(),
		ctxdata.SetCorrelationId(uuid.New().String()),
		ctxdata.SetHost(h.ClientID),
	)
	start := time.Now()
	first, last := messages[0], messages[len(messages)-1]
	logField := []xlog.Field{
		xlog.String("topic", first.Topic),
		xlog.Int32("partition", first.Partition),
		xlog.Int64("first_offset", first.Offset),
		xlog.Int64("last_offset", last.Offset),
		xlog.Int("size", len(messages)),
		xlog.String("mode", h.mode.String()),
	}

	events := h.decode(ctx, messages)
	h.ConsumerMetrics.ObserveBatch(first.Topic, len(messages))

	result, err := h.processor.ProcessBatch(ctx, events, h.mode)
	if err != nil {
		for _, message := range messages {
			h.RecordMetrics(start, message, metrics.OutcomeRedelivered)
		}
		xlog.Warn(ctx, h.LogPrefix, append(logField, xlog.String("state", stateFailed), xlog.Err(err))...)
		return fmt.Errorf("batch %s/%d/%d-%d left uncommitted: %w",
			first.Topic, first.Partition, first.Offset, last.Offset, err)
	}

	for _, message := range messages {
		session.MarkMessage(message, "")
		h.RecordMetrics(start, message, metrics.OutcomeAcknowledged)
	}
	h.Commit(ctx, session)

	xlog.Info(ctx, h.LogPrefix, append(logField,
		xlog.String("state", stateAcknowledged),
		xlog.Int("succeeded", result.Succeeded),
		xlog.Int("failed", result.Failed),
		xlog.Int("duplicates", result.Duplicates),
		xlog.Duration("response-time", time.Since(start)))...)
	return nil
}

// decode keeps one event per record so the batch accounting still adds up.
// Undecodable records become empty events the processor counts as failed.
func (h *BatchHandler) decode(ctx context.Context, messages []*sarama.ConsumerMessage) []models.TransactionEvent {
	events := make([]models.TransactionEvent, 0, len(messages))
	for _, message := range messages {
		event, err := DecodeEvent(message.Value)
		if err != nil {
			xlog.Warn(ctx, h.LogPrefix, append(h.CreateLogField(message), xlog.Err(err))...)
			event = models.TransactionEvent{}
		}
		events = append(events, event)
	}
	return events
}
