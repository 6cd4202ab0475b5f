package kafkaconsumer

import (
	"testing"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/messaging"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"

	"github.com/Shopify/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyByName(t *testing.T) {
	tests := []struct {
		name    string
		want    Policy
		wantErr bool
	}{
		{name: "at-most-once", want: AtMostOncePolicy},
		{name: "AT_LEAST_ONCE", want: AtLeastOncePolicy},
		{name: " exactly_once ", want: ExactlyOncePolicy},
		{name: "retry-dlt", want: RetryDLTPolicy},
		{name: "batch", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PolicyByName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_SaramaOptions(t *testing.T) {
	cfg := config.ConsumerConfig{
		Brokers:            []string{"localhost:9092"},
		AutoCommitInterval: 2 * time.Second,
	}

	build := func(p Policy) *sarama.Config {
		saramaCfg, err := messaging.CreateSaramaConsumerConfig(cfg, "[TEST]", p.SaramaOptions(cfg)...)
		require.NoError(t, err)
		return saramaCfg
	}

	atMostOnce := build(AtMostOncePolicy)
	assert.True(t, atMostOnce.Consumer.Offsets.AutoCommit.Enable)
	assert.Equal(t, 2*time.Second, atMostOnce.Consumer.Offsets.AutoCommit.Interval)

	atLeastOnce := build(AtLeastOncePolicy)
	assert.False(t, atLeastOnce.Consumer.Offsets.AutoCommit.Enable)
	assert.Equal(t, sarama.ReadUncommitted, atLeastOnce.Consumer.IsolationLevel)

	exactlyOnce := build(ExactlyOncePolicy)
	assert.False(t, exactlyOnce.Consumer.Offsets.AutoCommit.Enable)
	assert.Equal(t, sarama.ReadCommitted, exactlyOnce.Consumer.IsolationLevel)
}

func TestPolicy_ConsumerGroup(t *testing.T) {
	cfg := config.ConsumerConfig{
		ConsumerGroupAtMostOnce:  "amo",
		ConsumerGroupAtLeastOnce: "alo",
		ConsumerGroupExactlyOnce: "eo",
		ConsumerGroupRetryDLT:    "dlt",
	}
	assert.Equal(t, "amo", AtMostOncePolicy.ConsumerGroup(cfg))
	assert.Equal(t, "alo", AtLeastOncePolicy.ConsumerGroup(cfg))
	assert.Equal(t, "eo", ExactlyOncePolicy.ConsumerGroup(cfg))
	assert.Equal(t, "dlt", RetryDLTPolicy.ConsumerGroup(cfg))
	assert.Equal(t, "retry-dlt", RetryDLTPolicy.String())
}
