package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/graceful"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/messaging"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"

	"github.com/Shopify/sarama"
	"golang.org/x/sync/errgroup"
)

// HandlerFactory builds the group handler once the client id and the
// consumer metrics of the process are known.
type HandlerFactory func(clientID string, consumerMetrics *metrics.ConsumerMetrics) sarama.ConsumerGroupHandler

// ConsumerGroupFactory opens the sarama consumer group, replaced in tests.
type ConsumerGroupFactory func(brokers []string, group string, cfg *sarama.Config) (sarama.ConsumerGroup, error)

type BaseConsumer struct {
	ctx             context.Context
	clientID        string
	cfg             config.Config
	consumerCfg     config.ConsumerConfig
	cg              sarama.ConsumerGroup
	newGroup        ConsumerGroupFactory
	newHandler      HandlerFactory
	handler         sarama.ConsumerGroupHandler
	saramaOpts      []messaging.Option
	metrics         metrics.Metrics
	consumerMetrics *metrics.ConsumerMetrics
	logPrefix       string
	topic           string
	consumerGroup   string
}

type BaseConsumerConfig struct {
	Ctx           context.Context
	Config        config.Config
	Metrics       metrics.Metrics
	NewHandler    HandlerFactory
	NewGroup      ConsumerGroupFactory
	SaramaOptions []messaging.Option
	LogPrefix     string
	Topic         string
	ConsumerGroup string
}

func NewBaseConsumer(cfg BaseConsumerConfig) (*BaseConsumer, error) {
	if cfg.NewHandler == nil {
		return nil, errors.New("no consumer handler defined")
	}

	newGroup := cfg.NewGroup
	if newGroup == nil {
		newGroup = sarama.NewConsumerGroup
	}

	return &BaseConsumer{
		ctx:           cfg.Ctx,
		cfg:           cfg.Config,
		consumerCfg:   cfg.Config.MessageBroker.KafkaConsumer,
		newGroup:      newGroup,
		newHandler:    cfg.NewHandler,
		saramaOpts:    cfg.SaramaOptions,
		metrics:       cfg.Metrics,
		logPrefix:     cfg.LogPrefix,
		topic:         cfg.Topic,
		consumerGroup: cfg.ConsumerGroup,
	}, nil
}

func (c *BaseConsumer) PreStart() error {
	if c.topic == "" {
		return errors.New("no topics given to be consumed, please set the topic")
	}

	if c.consumerGroup == "" {
		return errors.New("no kafka consumer group defined, please set the group")
	}

	opts := c.saramaOpts
	if c.metrics != nil {
		c.consumerMetrics = metrics.NewConsumerMetrics(c.consumerGroup, c.cfg.App.Name, 1*time.Second, c.metrics.PrometheusRegisterer())
		c.consumerMetrics.Run()
		opts = append(opts, messaging.WithMetricRegistry(c.consumerMetrics.Registry()))
	}

	saramaCfg, err := messaging.CreateSaramaConsumerConfig(c.consumerCfg, c.logPrefix, opts...)
	if err != nil {
		xlog.Error(c.ctx, c.logPrefix, xlog.Err(err))
		return fmt.Errorf("failed to create consumer config: %w", err)
	}

	c.clientID = saramaCfg.ClientID
	c.handler = c.newHandler(c.clientID, c.consumerMetrics)

	client, err := c.newGroup(c.consumerCfg.Brokers, c.consumerGroup, saramaCfg)
	if err != nil {
		return err
	}
	c.cg = client

	xlog.Info(c.ctx, c.logPrefix,
		xlog.String("status", "consumer group ready"),
		xlog.String("topic", c.topic),
		xlog.String("consumer_group", c.consumerGroup),
		xlog.Bool("auto_commit", saramaCfg.Consumer.Offsets.AutoCommit.Enable),
	)

	return nil
}

func (c *BaseConsumer) Start() graceful.ProcessStarter {
	return func() error {
		err := c.PreStart()
		if err != nil {
			return err
		}

		cgErrors := c.cg.Errors()
		go func() {
			for errCg := range cgErrors {
				xlog.Error(c.ctx, c.logPrefix, xlog.Err(fmt.Errorf("client error: %w", errCg)))
			}
		}()

		eg, ctx := errgroup.WithContext(c.ctx)

		eg.Go(func() error {
			for {
				if err := c.cg.Consume(ctx, []string{c.topic}, c.handler); err != nil {
					if errors.Is(err, sarama.ErrClosedConsumerGroup) {
						return nil
					}
					xlog.Warn(c.ctx, c.logPrefix, xlog.Err(fmt.Errorf("error start consumer: %w", err)))
				}
				if err := c.ctx.Err(); err != nil {
					return fmt.Errorf("context was canceled: %w", err)
				}
			}
		})

		return eg.Wait()
	}
}

func (c *BaseConsumer) Stop() graceful.ProcessStopper {
	return func(ctx context.Context) error {
		if c.cg == nil {
			return nil
		}
		if err := c.cg.Close(); err != nil {
			return err
		}
		xlog.Info(ctx, c.logPrefix, xlog.String("status", "consumer group closed"))
		return nil
	}
}
