// Package idempotency remembers which transaction ids were already applied so
// that redelivered events are skipped.
//
// An id goes through two states. Claim reserves it as pending for the
// duration of one apply, Confirm promotes it to processed once the apply
// committed, and Release drops the reservation when the apply failed. Only a
// processed id makes a redelivery a duplicate. A pending id that is never
// confirmed expires after the claim TTL.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/config"
	"github.com/francois202/gigabanksystem1-sub000/internal/repositories"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

const defaultClaimTTL = time.Minute

// ErrInFlight is returned for an id another consumer is still applying.
// It is transient: the message must be redelivered, never acknowledged.
var ErrInFlight = errors.New("transaction is being applied by another consumer")

type Claim int

const (
	// ClaimAcquired means the caller now owns the id and must Confirm or Release it.
	ClaimAcquired Claim = iota
	ClaimInFlight
	ClaimProcessed
)

func (c Claim) String() string {
	switch c {
	case ClaimAcquired:
		return "acquired"
	case ClaimInFlight:
		return "in-flight"
	case ClaimProcessed:
		return "processed"
	default:
		return "unknown"
	}
}

type Tracker interface {
	Claim(ctx context.Context, id string) (Claim, error)
	Confirm(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
	Close() error
}

// New builds the tracker selected by cfg.Backend. The cache repository is only
// required for the redis backend.
func New(cfg config.IdempotencyConfig, cache repositories.CacheRepository) (Tracker, error) {
	claimTTL := cfg.ClaimTTL
	if claimTTL <= 0 {
		claimTTL = defaultClaimTTL
	}

	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return NewMemoryTracker(claimTTL), nil
	case BackendRedis:
		if cache == nil {
			return nil, fmt.Errorf("idempotency backend %q requires a redis cache", cfg.Backend)
		}
		return NewRedisTracker(cache, cfg.KeyPrefix, claimTTL, cfg.TTL), nil
	case BackendBadger:
		return NewBadgerTracker(cfg.BadgerPath, cfg.KeyPrefix, claimTTL, cfg.TTL)
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Backend)
	}
}

func buildKey(prefix, id string) string {
	return prefix + id
}

func ttlOrZero(ttl time.Duration) time.Duration {
	if ttl < 0 {
		return 0
	}
	return ttl
}
