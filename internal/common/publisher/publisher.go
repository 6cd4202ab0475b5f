package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"

	"github.com/Shopify/sarama"
)

const logIdentifier = "[GENERAL-PUBLISHER]"

type Publisher interface {
	// Publish marshals message to JSON and sends it synchronously.
	Publish(ctx context.Context, message any, opts ...PublishOption) error
	Topic() string
}

type publishOptions struct {
	key     string
	headers map[string]string
}

type PublishOption func(*publishOptions)

func WithKey(key string) PublishOption {
	return func(opts *publishOptions) {
		opts.key = key
	}
}

func WithHeaders(headers map[string]string) PublishOption {
	return func(opts *publishOptions) {
		opts.headers = headers
	}
}

type publisher struct {
	producer sarama.SyncProducer
	topic    string
	metrics  *metrics.PublisherPrometheusMetrics
}

func NewPublisher(p sarama.SyncProducer, topic string, m *metrics.PublisherPrometheusMetrics) Publisher {
	return publisher{
		producer: p,
		topic:    topic,
		metrics:  m,
	}
}

func (d publisher) Topic() string {
	return d.topic
}

func (d publisher) Publish(ctx context.Context, message any, opts ...PublishOption) (err error) {
	start := time.Now()
	defer func() { d.metrics.GenerateMetrics(start, d.topic, err) }()

	options := &publishOptions{}
	for _, opt := range opts {
		opt(options)
	}

	msg, err := d.prepareMessage(message, options)
	if err != nil {
		xlog.Error(
			ctx,
			logIdentifier,
			xlog.String("status", "failed prepare message"),
			xlog.String("topic", d.topic),
			xlog.Err(err))
		return err
	}

	partition, offset, err := d.producer.SendMessage(msg)
	if err != nil {
		xlog.Error(
			ctx,
			logIdentifier,
			xlog.String("status", "failed send message"),
			xlog.String("topic", d.topic),
			xlog.Err(err))
		return err
	}

	xlog.Debug(ctx,
		logIdentifier,
		xlog.String("status", "success publish message"),
		xlog.String("topic", d.topic),
		xlog.String("key", options.key),
		xlog.Int32("partition", partition),
		xlog.Int64("offset", offset),
	)

	return nil
}

func (d publisher) prepareMessage(message any, opts *publishOptions) (*sarama.ProducerMessage, error) {
	msgByte, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	producerMsg := &sarama.ProducerMessage{
		Topic: d.topic,
		Value: sarama.ByteEncoder(msgByte),
	}

	if opts.key != "" {
		producerMsg.Key = sarama.StringEncoder(opts.key)
	}

	producerMsg.Headers = buildHeaders(opts.headers)

	return producerMsg, nil
}

// buildHeaders sorts by key so the header order is stable.
func buildHeaders(headers map[string]string) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}

	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]sarama.RecordHeader, 0, len(keys))
	for _, key := range keys {
		result = append(result, sarama.RecordHeader{
			Key:   []byte(key),
			Value: []byte(headers[key]),
		})
	}
	return result
}
