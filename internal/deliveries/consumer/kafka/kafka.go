package kafkaconsumer

import (
	"context"
	"fmt"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/idempotency"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/retry"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/services"

	dlqpublisher "github.com/francois202/gigabanksystem1-sub000/internal/common/dlq_publisher"
	kafkacommon "github.com/francois202/gigabanksystem1-sub000/internal/common/kafka"

	"github.com/Shopify/sarama"
)

const logMessage = "[KAFKA-CONSUMER]"

// New builds the consumer of the transactions topic running with policy.
// dlq is only used by the retry-dlt policy, tracker only by exactly-once.
func New(
	ctx context.Context,
	cfg config.Config,
	policy Policy,
	processor services.TransactionProcessor,
	tracker idempotency.Tracker,
	dlq dlqpublisher.Router,
	mtc metrics.Metrics,
	newGroup kafkacommon.ConsumerGroupFactory,
) (*kafkacommon.BaseConsumer, error) {
	consumerCfg := cfg.MessageBroker.KafkaConsumer
	group := policy.ConsumerGroup(consumerCfg)
	logPrefix := fmt.Sprintf("%s [%s]", logMessage, policy.Name)

	if policy.Dedup && tracker == nil {
		return nil, fmt.Errorf("policy %s requires an idempotency tracker", policy.Name)
	}

	var processing *metrics.ProcessingMetrics
	if mtc != nil {
		processing = mtc.SingleProcessing()
	}

	retryer := retry.NewExponentialBackOff(cfg.ExponentialBackoff)

	return kafkacommon.NewBaseConsumer(kafkacommon.BaseConsumerConfig{
		Ctx:     ctx,
		Config:  cfg,
		Metrics: mtc,
		NewHandler: func(clientID string, consumerMetrics *metrics.ConsumerMetrics) sarama.ConsumerGroupHandler {
			return NewPipelineHandler(
				kafkacommon.BaseHandler{
					ClientID:        clientID,
					ConsumerGroup:   group,
					ConsumerMetrics: consumerMetrics,
					DLQ:             dlq,
					LogPrefix:       logPrefix,
				},
				policy,
				processor,
				tracker,
				retryer,
				processing,
			)
		},
		NewGroup:      newGroup,
		SaramaOptions: policy.SaramaOptions(consumerCfg),
		LogPrefix:     logPrefix,
		Topic:         consumerCfg.TopicTransactions,
		ConsumerGroup: group,
	})
}

// NewBatch builds the consumer of the batch topic.
func NewBatch(
	ctx context.Context,
	cfg config.Config,
	processor services.BatchProcessor,
	mtc metrics.Metrics,
	newGroup kafkacommon.ConsumerGroupFactory,
) (*kafkacommon.BaseConsumer, error) {
	consumerCfg := cfg.MessageBroker.KafkaConsumer
	group := consumerCfg.ConsumerGroupBatch
	logPrefix := logMessage + " [batch]"
	mode := models.ParseDeliveryMode(cfg.Batch.DeliveryMode)

	return kafkacommon.NewBaseConsumer(kafkacommon.BaseConsumerConfig{
		Ctx:     ctx,
		Config:  cfg,
		Metrics: mtc,
		NewHandler: func(clientID string, consumerMetrics *metrics.ConsumerMetrics) sarama.ConsumerGroupHandler {
			return NewBatchHandler(
				kafkacommon.BaseHandler{
					ClientID:        clientID,
					ConsumerGroup:   group,
					ConsumerMetrics: consumerMetrics,
					LogPrefix:       logPrefix,
				},
				processor,
				mode,
				cfg.Batch.MaxRecords,
				cfg.Batch.MaxWait,
			)
		},
		NewGroup:      newGroup,
		SaramaOptions: AtLeastOncePolicy.SaramaOptions(consumerCfg),
		LogPrefix:     logPrefix,
		Topic:         consumerCfg.TopicTransactionsBatch,
		ConsumerGroup: group,
	})
}
