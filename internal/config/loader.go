package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const EnvPrefix = "GO_TXN_DELIVERY"

type loader struct {
	fileName    string
	searchPaths []string
	envPrefix   string
}

type LoaderOption func(*loader)

func WithConfigFileName(name string) LoaderOption {
	return func(l *loader) { l.fileName = name }
}

func WithConfigFileSearchPaths(paths ...string) LoaderOption {
	return func(l *loader) { l.searchPaths = append(l.searchPaths, paths...) }
}

func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *loader) { l.envPrefix = prefix }
}

// Load reads the config file (when one is found), applies defaults and
// environment overrides and decodes the result into Config.
func Load(opts ...LoaderOption) (Config, error) {
	l := &loader{fileName: "config", envPrefix: EnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	if len(l.searchPaths) == 0 {
		l.searchPaths = []string{"/config", ".", "./config"}
	}

	v := viper.New()
	v.SetConfigName(l.fileName)
	for _, p := range l.searchPaths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "local")
	v.SetDefault("app.name", "go-txn-delivery")
	v.SetDefault("app.http_port", 8080)
	v.SetDefault("app.http_timeout", 30*time.Second)
	v.SetDefault("app.graceful_timeout", 10*time.Second)
	v.SetDefault("app.log_level", "debug")

	v.SetDefault("postgres.write.db_host", "localhost")
	v.SetDefault("postgres.write.db_port", "5432")
	v.SetDefault("postgres.read.db_host", "localhost")
	v.SetDefault("postgres.read.db_port", "5432")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")

	v.SetDefault("message_broker.http_port", 8081)
	v.SetDefault("message_broker.kafka_consumer.brokers", []string{"localhost:9092"})
	v.SetDefault("message_broker.kafka_consumer.consumer_group_at_most_once", "at-most-once-group")
	v.SetDefault("message_broker.kafka_consumer.consumer_group_at_least_once", "at-least-once-group")
	v.SetDefault("message_broker.kafka_consumer.consumer_group_exactly_once", "exactly-once-group")
	v.SetDefault("message_broker.kafka_consumer.consumer_group_retry_dlt", "retry-dlt-group")
	v.SetDefault("message_broker.kafka_consumer.consumer_group_batch", "batch-group")
	v.SetDefault("message_broker.kafka_consumer.topic_transactions", "transactions")
	v.SetDefault("message_broker.kafka_consumer.topic_transactions_batch", "transactions-batch")
	v.SetDefault("message_broker.kafka_consumer.topic_retry_dlt", "transactions-retry-dlt")
	v.SetDefault("message_broker.kafka_consumer.topic_outbox_events", "transaction-outbox-events")
	v.SetDefault("message_broker.kafka_consumer.assignor", "range")
	v.SetDefault("message_broker.kafka_consumer.is_oldest", true)
	v.SetDefault("message_broker.kafka_consumer.auto_commit_interval", time.Second)

	v.SetDefault("producer.default_delivery_mode", "at-least-once")
	v.SetDefault("producer.timeout", 10*time.Second)
	v.SetDefault("producer.max_retries", 5)

	v.SetDefault("exponential_backoff.max_retries", 0)
	v.SetDefault("exponential_backoff.initial_interval", time.Second)
	v.SetDefault("exponential_backoff.backoff_multiplier", 2.0)
	v.SetDefault("exponential_backoff.max_interval", 8*time.Second)
	v.SetDefault("exponential_backoff.max_elapsed_time", 15*time.Second)
	v.SetDefault("exponential_backoff.randomization_factor", 0.0)

	v.SetDefault("batch.max_records", 20)
	v.SetDefault("batch.max_wait", 500*time.Millisecond)
	v.SetDefault("batch.delivery_mode", "at-least-once")

	v.SetDefault("outbox_relay.interval", 5*time.Second)
	v.SetDefault("outbox_relay.batch_size", 100)

	v.SetDefault("idempotency.backend", "memory")
	v.SetDefault("idempotency.ttl", 24*time.Hour)
	v.SetDefault("idempotency.claim_ttl", time.Minute)
	v.SetDefault("idempotency.key_prefix", "processed_transaction:")
	v.SetDefault("idempotency.badger_path", "/tmp/go-txn-delivery/idempotency")

	v.SetDefault("generator.max_count", 10000)
	v.SetDefault("generator.max_account_id", 10)
}
