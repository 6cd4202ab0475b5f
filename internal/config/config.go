package config

import (
	"time"
)

type (
	Config struct {
		App                App      `json:"app"`
		Postgres           Postgres `json:"postgres"`
		Redis              Redis    `json:"redis"`
		NewRelicLicenseKey string   `json:"new_relic_license_key"`

		MessageBroker      MessageBroker            `json:"message_broker"`
		Producer           ProducerConfig           `json:"producer"`
		ExponentialBackoff ExponentialBackOffConfig `json:"exponential_backoff"`
		Batch              BatchConfig              `json:"batch"`
		OutboxRelay        OutboxRelayConfig        `json:"outbox_relay"`
		Idempotency        IdempotencyConfig        `json:"idempotency"`
		Generator          GeneratorConfig          `json:"generator"`
	}

	App struct {
		Env             string        `json:"env"`
		HTTPPort        int           `json:"http_port"`
		HTTPTimeout     time.Duration `json:"http_timeout"`
		GracefulTimeout time.Duration `json:"graceful_timeout"`
		Name            string        `json:"name"`
		LogLevel        string        `json:"log_level"`
	}

	Postgres struct {
		Write Database `json:"write"`
		Read  Database `json:"read"`
	}

	Database struct {
		DbHost            string `json:"db_host"`
		DbPort            string `json:"db_port"`
		DbUser            string `json:"db_user"`
		DbPass            string `json:"db_pass"`
		DbName            string `json:"db_name"`
		DbSchema          string `json:"db_schema"`
		MaxOpenConnection int    `json:"max_open_connections"`
		MaxIdleConnection int    `json:"max_idle_connections"`
		ConnMaxLifetime   int    `json:"conn_max_lifetime"`
	}

	Redis struct {
		Host     string `json:"host"`
		Port     string `json:"port"`
		Password string `json:"password"`
		Db       int    `json:"db"`
	}

	MessageBroker struct {
		HTTPPort      int            `json:"http_port"`
		KafkaConsumer ConsumerConfig `json:"kafka_consumer"`
	}

	ConsumerConfig struct {
		Brokers []string `json:"brokers"`

		ConsumerGroupAtMostOnce  string `json:"consumer_group_at_most_once"`
		ConsumerGroupAtLeastOnce string `json:"consumer_group_at_least_once"`
		ConsumerGroupExactlyOnce string `json:"consumer_group_exactly_once"`
		ConsumerGroupRetryDLT    string `json:"consumer_group_retry_dlt"`
		ConsumerGroupBatch       string `json:"consumer_group_batch"`

		TopicTransactions      string `json:"topic_transactions"`
		TopicTransactionsBatch string `json:"topic_transactions_batch"`
		TopicRetryDLT          string `json:"topic_retry_dlt"`
		TopicOutboxEvents      string `json:"topic_outbox_events"`

		Assignor           string        `json:"assignor"`
		IsOldest           bool          `json:"is_oldest"`
		IsVerbose          bool          `json:"is_verbose"`
		AutoCommitInterval time.Duration `json:"auto_commit_interval"`
	}

	ProducerConfig struct {
		// DefaultDeliveryMode is used when a caller does not pick one.
		DefaultDeliveryMode string        `json:"default_delivery_mode"`
		Timeout             time.Duration `json:"timeout"`
		MaxRetries          int           `json:"max_retries"`
	}

	ExponentialBackOffConfig struct {
		// MaxRetries of zero leaves MaxElapsedTime as the only bound.
		MaxRetries          uint64        `json:"max_retries"`
		InitialInterval     time.Duration `json:"initial_interval"`
		BackoffMultiplier   float64       `json:"backoff_multiplier"`
		MaxInterval         time.Duration `json:"max_interval"`
		MaxElapsedTime      time.Duration `json:"max_elapsed_time"`
		RandomizationFactor float64       `json:"randomization_factor"`
	}

	BatchConfig struct {
		MaxRecords   int           `json:"max_records"`
		MaxWait      time.Duration `json:"max_wait"`
		DeliveryMode string        `json:"delivery_mode"`
	}

	OutboxRelayConfig struct {
		Interval  time.Duration `json:"interval"`
		BatchSize uint64        `json:"batch_size"`
	}

	IdempotencyConfig struct {
		// Backend is one of memory, redis or badger.
		Backend string        `json:"backend"`
		TTL     time.Duration `json:"ttl"`
		// ClaimTTL bounds how long an unfinished apply keeps its id reserved.
		ClaimTTL   time.Duration `json:"claim_ttl"`
		KeyPrefix  string        `json:"key_prefix"`
		BadgerPath string        `json:"badger_path"`
	}

	GeneratorConfig struct {
		MaxCount     int   `json:"max_count"`
		MaxAccountID int64 `json:"max_account_id"`
	}
)
