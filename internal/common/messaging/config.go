package messaging

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"

	"github.com/Shopify/sarama"
	saramaMetrics "github.com/rcrowley/go-metrics"
	"go.uber.org/zap"
)

var ErrNoBrokers = errors.New("no kafka bootstrap brokers defined, please set the brokers")

type Option func(*sarama.Config)

// WithManualCommit disables the background offset commit. Marked offsets
// are only flushed by an explicit session Commit.
func WithManualCommit() Option {
	return func(c *sarama.Config) {
		c.Consumer.Offsets.AutoCommit.Enable = false
	}
}

// WithAutoCommitInterval keeps auto commit on with the given flush interval.
func WithAutoCommitInterval(interval time.Duration) Option {
	return func(c *sarama.Config) {
		c.Consumer.Offsets.AutoCommit.Enable = true
		if interval > 0 {
			c.Consumer.Offsets.AutoCommit.Interval = interval
		}
	}
}

// WithReadCommitted hides records of aborted or open producer transactions.
func WithReadCommitted() Option {
	return func(c *sarama.Config) {
		c.Consumer.IsolationLevel = sarama.ReadCommitted
	}
}

func WithMetricRegistry(registry saramaMetrics.Registry) Option {
	return func(c *sarama.Config) {
		if registry != nil {
			c.MetricRegistry = registry
		}
	}
}

func WithClientID(clientID string) Option {
	return func(c *sarama.Config) {
		if clientID != "" {
			c.ClientID = clientID
		}
	}
}

func CreateSaramaConsumerConfig(cfg config.ConsumerConfig, logPrefix string, opts ...Option) (*sarama.Config, error) {
	if len(cfg.Brokers) == 0 {
		xlog.Error(context.Background(), logPrefix, xlog.Err(ErrNoBrokers))
		return nil, ErrNoBrokers
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Version = sarama.V3_0_0_0
	saramaCfg.ClientID, _ = os.Hostname()
	saramaCfg.Consumer.Return.Errors = true

	if cfg.IsVerbose {
		sarama.Logger = zap.NewStdLog(xlog.Logger().Named(logPrefix))
	}

	if cfg.IsOldest {
		saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	}

	if cfg.AutoCommitInterval > 0 {
		saramaCfg.Consumer.Offsets.AutoCommit.Interval = cfg.AutoCommitInterval
	}

	switch cfg.Assignor {
	case "sticky":
		saramaCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.BalanceStrategySticky}
	case "roundrobin":
		saramaCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.BalanceStrategyRoundRobin}
	case "range":
		saramaCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.BalanceStrategyRange}
	default:
		saramaCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.BalanceStrategyRange}
	}

	for _, opt := range opts {
		opt(saramaCfg)
	}

	return saramaCfg, saramaCfg.Validate()
}
