package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/repositories"
)

const (
	redisPending   = "pending"
	redisProcessed = "processed"
)

// redisTracker shares claims between every consumer instance through the
// cache repository.
type redisTracker struct {
	cache    repositories.CacheRepository
	prefix   string
	claimTTL time.Duration
	ttl      time.Duration
}

func NewRedisTracker(cache repositories.CacheRepository, prefix string, claimTTL, ttl time.Duration) Tracker {
	return &redisTracker{cache: cache, prefix: prefix, claimTTL: claimTTL, ttl: ttlOrZero(ttl)}
}

func (t *redisTracker) Claim(ctx context.Context, id string) (Claim, error) {
	key := buildKey(t.prefix, id)

	ok, err := t.cache.SetIfNotExists(ctx, key, redisPending, t.claimTTL)
	if err != nil {
		return ClaimInFlight, fmt.Errorf("failed to claim transaction %s: %w", id, err)
	}
	if ok {
		return ClaimAcquired, nil
	}

	state, err := t.cache.Get(ctx, key)
	if errors.Is(err, common.ErrDataNotFound) {
		// the claim expired in between, the next redelivery takes it over
		return ClaimInFlight, nil
	}
	if err != nil {
		return ClaimInFlight, fmt.Errorf("failed to lookup transaction %s: %w", id, err)
	}
	if state == redisProcessed {
		return ClaimProcessed, nil
	}
	return ClaimInFlight, nil
}

func (t *redisTracker) Confirm(ctx context.Context, id string) error {
	if err := t.cache.Set(ctx, buildKey(t.prefix, id), redisProcessed, t.ttl); err != nil {
		return fmt.Errorf("failed to confirm transaction %s: %w", id, err)
	}
	return nil
}

func (t *redisTracker) Release(ctx context.Context, id string) error {
	if err := t.cache.Del(ctx, buildKey(t.prefix, id)); err != nil {
		return fmt.Errorf("failed to release transaction %s: %w", id, err)
	}
	return nil
}

// Close leaves the shared client open, its owner closes it.
func (t *redisTracker) Close() error {
	return nil
}
