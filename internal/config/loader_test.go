package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without config file", func(t *testing.T) {
		cfg, err := Load(WithConfigFileSearchPaths(t.TempDir()))
		require.NoError(t, err)

		assert.Equal(t, []string{"localhost:9092"}, cfg.MessageBroker.KafkaConsumer.Brokers)
		assert.Equal(t, "transactions", cfg.MessageBroker.KafkaConsumer.TopicTransactions)
		assert.Equal(t, "transactions-retry-dlt", cfg.MessageBroker.KafkaConsumer.TopicRetryDLT)
		assert.Equal(t, "transaction-outbox-events", cfg.MessageBroker.KafkaConsumer.TopicOutboxEvents)
		assert.Equal(t, time.Second, cfg.ExponentialBackoff.InitialInterval)
		assert.Equal(t, 2.0, cfg.ExponentialBackoff.BackoffMultiplier)
		assert.Equal(t, 8*time.Second, cfg.ExponentialBackoff.MaxInterval)
		assert.Equal(t, 15*time.Second, cfg.ExponentialBackoff.MaxElapsedTime)
		assert.Equal(t, 20, cfg.Batch.MaxRecords)
		assert.Equal(t, 500*time.Millisecond, cfg.Batch.MaxWait)
		assert.Equal(t, 5*time.Second, cfg.OutboxRelay.Interval)
		assert.Equal(t, uint64(100), cfg.OutboxRelay.BatchSize)
		assert.Equal(t, "memory", cfg.Idempotency.Backend)
		assert.Equal(t, time.Minute, cfg.Idempotency.ClaimTTL)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := []byte(`
app:
  name: delivery-test
  graceful_timeout: 3s
message_broker:
  kafka_consumer:
    brokers:
      - kafka-1:9092
      - kafka-2:9092
    topic_transactions: txn-test
batch:
  max_records: 50
idempotency:
  backend: redis
`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

		cfg, err := Load(WithConfigFileSearchPaths(dir))
		require.NoError(t, err)

		assert.Equal(t, "delivery-test", cfg.App.Name)
		assert.Equal(t, 3*time.Second, cfg.App.GracefulTimeout)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.MessageBroker.KafkaConsumer.Brokers)
		assert.Equal(t, "txn-test", cfg.MessageBroker.KafkaConsumer.TopicTransactions)
		assert.Equal(t, 50, cfg.Batch.MaxRecords)
		assert.Equal(t, "redis", cfg.Idempotency.Backend)
		assert.Equal(t, 500*time.Millisecond, cfg.Batch.MaxWait)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("GO_TXN_DELIVERY_OUTBOX_RELAY_BATCH_SIZE", "7")
		t.Setenv("GO_TXN_DELIVERY_APP_ENV", "prod")

		cfg, err := Load(WithConfigFileSearchPaths(t.TempDir()))
		require.NoError(t, err)

		assert.Equal(t, uint64(7), cfg.OutboxRelay.BatchSize)
		assert.Equal(t, EnvProd, cfg.App.Environment())
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("app: [unclosed"), 0o600))

		_, err := Load(WithConfigFileSearchPaths(dir))
		assert.Error(t, err)
	})
}
