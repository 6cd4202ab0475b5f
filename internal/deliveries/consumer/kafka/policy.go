package kafkaconsumer

import (
	"fmt"
	"strings"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/messaging"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"
)

type CommitPolicy int

const (
	// CommitAuto marks the offset before processing and lets sarama commit
	// on its interval.
	CommitAuto CommitPolicy = iota
	// CommitManual marks and commits only once the message is settled.
	CommitManual
)

type ErrorPolicy int

const (
	// ErrorDrop logs the failure and moves on.
	ErrorDrop ErrorPolicy = iota
	// ErrorRedeliver ends the session without committing so the message comes back.
	ErrorRedeliver
	// ErrorRetryDeadLetter retries with backoff and routes the message to the
	// dead letter topic once the budget is spent.
	ErrorRetryDeadLetter
)

// Policy is the delivery discipline of a pipeline handler.
type Policy struct {
	Name    string
	Commit  CommitPolicy
	Dedup   bool
	OnError ErrorPolicy
}

var (
	AtMostOncePolicy = Policy{
		Name:    "at-most-once",
		Commit:  CommitAuto,
		OnError: ErrorDrop,
	}
	AtLeastOncePolicy = Policy{
		Name:    "at-least-once",
		Commit:  CommitManual,
		OnError: ErrorRedeliver,
	}
	ExactlyOncePolicy = Policy{
		Name:    "exactly-once",
		Commit:  CommitManual,
		Dedup:   true,
		OnError: ErrorRedeliver,
	}
	// RetryDLTPolicy backs off between attempts before dead-lettering, except
	// for fatal errors such as validation or insufficient funds. Those cannot
	// succeed on a retry and go to the dead letter topic after the first attempt.
	RetryDLTPolicy = Policy{
		Name:    "retry-dlt",
		Commit:  CommitManual,
		OnError: ErrorRetryDeadLetter,
	}
)

var policies = []Policy{AtMostOncePolicy, AtLeastOncePolicy, ExactlyOncePolicy, RetryDLTPolicy}

// PolicyByName accepts the same spellings as delivery modes, e.g. AT_LEAST_ONCE.
func PolicyByName(name string) (Policy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, p := range policies {
		if p.Name == normalized {
			return p, nil
		}
	}
	return Policy{}, fmt.Errorf("unknown consumer policy %q", name)
}

// SaramaOptions returns the consumer config overrides the policy relies on.
func (p Policy) SaramaOptions(cfg config.ConsumerConfig) []messaging.Option {
	var opts []messaging.Option
	switch p.Commit {
	case CommitAuto:
		opts = append(opts, messaging.WithAutoCommitInterval(cfg.AutoCommitInterval))
	case CommitManual:
		opts = append(opts, messaging.WithManualCommit())
	}
	if p.Dedup {
		opts = append(opts, messaging.WithReadCommitted())
	}
	return opts
}

// ConsumerGroup picks the configured group of the policy.
func (p Policy) ConsumerGroup(cfg config.ConsumerConfig) string {
	switch p.Name {
	case AtMostOncePolicy.Name:
		return cfg.ConsumerGroupAtMostOnce
	case ExactlyOncePolicy.Name:
		return cfg.ConsumerGroupExactlyOnce
	case RetryDLTPolicy.Name:
		return cfg.ConsumerGroupRetryDLT
	default:
		return cfg.ConsumerGroupAtLeastOnce
	}
}

func (p Policy) String() string {
	return p.Name
}
