package dlqpublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"

	"github.com/Shopify/sarama"
)

const prefixLogMessage = "[DLQ]"

// Router is the last resort for messages that exhausted their retries.
// A publish failure is logged and returned but never retried.
type Router interface {
	Route(ctx context.Context, payload []byte, cause error, provenance models.Provenance) error
}

type kafkaDlq struct {
	producer sarama.SyncProducer
	topic    string
	metrics  *metrics.PublisherPrometheusMetrics
	now      func() time.Time
}

func New(p sarama.SyncProducer, topic string, m *metrics.PublisherPrometheusMetrics) Router {
	return kafkaDlq{producer: p, topic: topic, metrics: m, now: time.Now}
}

// NewRecord packages a failed payload with its provenance. Payloads that are
// not JSON are kept as a JSON string so the record stays decodable.
func NewRecord(payload []byte, cause error, provenance models.Provenance, failedAt time.Time) models.DeadLetterRecord {
	record := models.DeadLetterRecord{
		Payload:       json.RawMessage(payload),
		SourceTopic:   provenance.Topic,
		Partition:     provenance.Partition,
		Offset:        provenance.Offset,
		ConsumerGroup: provenance.ConsumerGroup,
		Key:           provenance.Key,
		Attempts:      provenance.Attempts,
		FailedAt:      failedAt.UTC(),
	}
	if !json.Valid(payload) {
		raw, _ := json.Marshal(string(payload))
		record.Payload = raw
	}
	if cause != nil {
		record.Error = cause.Error()
		record.ErrorType = common.ErrorType(cause)
	}
	return record
}

func (d kafkaDlq) Route(ctx context.Context, payload []byte, cause error, provenance models.Provenance) (err error) {
	startTime := time.Now()
	defer func() { d.metrics.GenerateMetrics(startTime, d.topic, err) }()

	record := NewRecord(payload, cause, provenance, d.now())

	msg, err := d.prepareMessage(record)
	if err != nil {
		xlog.Error(
			ctx,
			prefixLogMessage,
			xlog.String("status", "prepare kafkaDlq message failed"),
			xlog.Err(err))
		return err
	}

	_, _, err = d.producer.SendMessage(msg)
	if err != nil {
		xlog.Error(
			ctx,
			prefixLogMessage,
			xlog.String("status", "publish kafkaDlq failed"),
			xlog.String("source_topic", provenance.Topic),
			xlog.Int32("partition", provenance.Partition),
			xlog.Int64("offset", provenance.Offset),
			xlog.Err(err))
		return err
	}

	xlog.Info(ctx,
		prefixLogMessage,
		xlog.String("status", "success publish kafkaDlq message"),
		xlog.Time("failed_at", record.FailedAt),
		xlog.String("topic", d.topic),
		xlog.String("source_topic", record.SourceTopic),
		xlog.String("error_type", record.ErrorType),
		xlog.Int("attempts", record.Attempts),
	)

	return nil
}

func (d kafkaDlq) prepareMessage(record models.DeadLetterRecord) (*sarama.ProducerMessage, error) {
	msgByte, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: d.topic,
		Value: sarama.ByteEncoder(msgByte),
	}
	if record.Key != "" {
		msg.Key = sarama.StringEncoder(record.Key)
	}

	return msg, nil
}
