package repositories

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"

	"github.com/redis/go-redis/v9"
)

const (
	accountCacheKeyPrefix     = "account:"
	transactionCacheKeyPrefix = "transaction:"
)

type CacheRepository interface {
	SetIfNotExists(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	// InvalidateLedger drops the cached views of an account and of a transaction.
	InvalidateLedger(ctx context.Context, accountID, transactionID int64) error
}

type cacheClient struct {
	redis *redis.Client
}

func NewCacheRepository(redis *redis.Client) CacheRepository {
	return &cacheClient{redis: redis}
}

func AccountCacheKey(accountID int64) string {
	return accountCacheKeyPrefix + strconv.FormatInt(accountID, 10)
}

func TransactionCacheKey(transactionID int64) string {
	return transactionCacheKeyPrefix + strconv.FormatInt(transactionID, 10)
}

func (cc *cacheClient) SetIfNotExists(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	return cc.redis.SetNX(ctx, key, value, ttl).Result()
}

func (cc *cacheClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return cc.redis.Set(ctx, key, value, ttl).Err()
}

func (cc *cacheClient) Get(ctx context.Context, key string) (string, error) {
	val, err := cc.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return val, common.ErrDataNotFound
		}
		return val, err
	}

	return strings.TrimSpace(val), nil
}

func (cc *cacheClient) Del(ctx context.Context, keys ...string) error {
	return cc.redis.Del(ctx, keys...).Err()
}

func (cc *cacheClient) InvalidateLedger(ctx context.Context, accountID, transactionID int64) error {
	return cc.Del(ctx, AccountCacheKey(accountID), TransactionCacheKey(transactionID))
}
