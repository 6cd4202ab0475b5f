package publisher

import (
	"hash"
	"time"

	"github.com/Shopify/sarama"
	saramaMetrics "github.com/rcrowley/go-metrics"
)

type Option func(*sarama.Config)

// NewSaramaConfig returns the producer defaults shared by sync and async producers.
func NewSaramaConfig(opts ...Option) *sarama.Config {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Version = sarama.V2_1_0_0
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Return.Errors = true
	saramaCfg.Producer.Timeout = 2 * time.Second
	saramaCfg.Net.DialTimeout = 2 * time.Second
	saramaCfg.Net.ReadTimeout = 2 * time.Second
	saramaCfg.Net.WriteTimeout = 2 * time.Second

	for _, opt := range opts {
		opt(saramaCfg)
	}

	return saramaCfg
}

func NewKafkaSyncProducer(brokers []string, opts ...Option) (sarama.SyncProducer, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewSaramaConfig(opts...))
	if err != nil {
		return nil, err
	}

	return producer, nil
}

func NewKafkaAsyncProducer(brokers []string, opts ...Option) (sarama.AsyncProducer, error) {
	producer, err := sarama.NewAsyncProducer(brokers, NewSaramaConfig(opts...))
	if err != nil {
		return nil, err
	}

	return producer, nil
}

func WithCustomHasher(hasher func() hash.Hash32) Option {
	return func(cfg *sarama.Config) {
		cfg.Producer.Partitioner = sarama.NewCustomHashPartitioner(hasher)
	}
}

// WithIdempotence turns on the broker side dedup of producer retries.
func WithIdempotence() Option {
	return func(cfg *sarama.Config) {
		cfg.Producer.Idempotent = true
		cfg.Producer.RequiredAcks = sarama.WaitForAll
		cfg.Net.MaxOpenRequests = 1
		if cfg.Producer.Retry.Max < 1 {
			cfg.Producer.Retry.Max = 1
		}
		if !cfg.Version.IsAtLeast(sarama.V0_11_0_0) {
			cfg.Version = sarama.V0_11_0_0
		}
	}
}

// WithFireAndForget neither waits for the broker nor reports successes.
func WithFireAndForget() Option {
	return func(cfg *sarama.Config) {
		cfg.Producer.RequiredAcks = sarama.NoResponse
		cfg.Producer.Return.Successes = false
		cfg.Producer.Retry.Max = 0
	}
}

func WithRequiredAcks(acks sarama.RequiredAcks) Option {
	return func(cfg *sarama.Config) {
		cfg.Producer.RequiredAcks = acks
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(cfg *sarama.Config) {
		if timeout > 0 {
			cfg.Producer.Timeout = timeout
		}
	}
}

func WithMaxRetries(max int) Option {
	return func(cfg *sarama.Config) {
		if max > 0 {
			cfg.Producer.Retry.Max = max
		}
	}
}

func WithClientID(clientID string) Option {
	return func(cfg *sarama.Config) {
		if clientID != "" {
			cfg.ClientID = clientID
		}
	}
}

func WithMetricRegistry(registry saramaMetrics.Registry) Option {
	return func(cfg *sarama.Config) {
		if registry != nil {
			cfg.MetricRegistry = registry
		}
	}
}
