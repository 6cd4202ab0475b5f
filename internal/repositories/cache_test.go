package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func cacheTestHelper(t *testing.T) (redismock.ClientMock, CacheRepository) {
	t.Helper()

	db, mock := redismock.NewClientMock()
	return mock, NewCacheRepository(db)
}

func TestCacheRepository_SetIfNotExists(t *testing.T) {
	mock, rc := cacheTestHelper(t)

	tests := []struct {
		name    string
		doMock  func()
		want    bool
		wantErr bool
	}{
		{
			name:   "key stored",
			doMock: func() { mock.ExpectSetNX("lock:1", "owner", 30*time.Second).SetVal(true) },
			want:   true,
		},
		{
			name:   "key already present",
			doMock: func() { mock.ExpectSetNX("lock:1", "owner", 30*time.Second).SetVal(false) },
			want:   false,
		},
		{
			name:    "redis closed",
			doMock:  func() { mock.ExpectSetNX("lock:1", "owner", 30*time.Second).SetErr(redis.ErrClosed) },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.doMock()

			got, err := rc.SetIfNotExists(context.TODO(), "lock:1", "owner", 30*time.Second)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)

			assert.NoError(t, mock.ExpectationsWereMet())
			mock.ClearExpect()
		})
	}
}

func TestCacheRepository_Get(t *testing.T) {
	mock, rc := cacheTestHelper(t)

	tests := []struct {
		name    string
		doMock  func()
		want    string
		wantErr error
	}{
		{
			name:   "value trimmed",
			doMock: func() { mock.ExpectGet("account:1").SetVal(" 1000100.00 ") },
			want:   "1000100.00",
		},
		{
			name:    "missing key",
			doMock:  func() { mock.ExpectGet("account:1").RedisNil() },
			wantErr: common.ErrDataNotFound,
		},
		{
			name:    "redis closed",
			doMock:  func() { mock.ExpectGet("account:1").SetErr(redis.ErrClosed) },
			wantErr: redis.ErrClosed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.doMock()

			got, err := rc.Get(context.TODO(), "account:1")
			assert.Equal(t, tt.want, got)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.NoError(t, mock.ExpectationsWereMet())
			mock.ClearExpect()
		})
	}
}

func TestCacheRepository_Set(t *testing.T) {
	mock, rc := cacheTestHelper(t)

	mock.ExpectSet("account:1", "100", time.Minute).SetVal("OK")
	assert.NoError(t, rc.Set(context.TODO(), "account:1", "100", time.Minute))

	mock.ExpectSet("account:1", "100", time.Minute).SetErr(redis.ErrClosed)
	assert.Error(t, rc.Set(context.TODO(), "account:1", "100", time.Minute))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepository_InvalidateLedger(t *testing.T) {
	mock, rc := cacheTestHelper(t)

	mock.ExpectDel("account:1", "transaction:55").SetVal(2)
	assert.NoError(t, rc.InvalidateLedger(context.TODO(), 1, 55))

	mock.ExpectDel("account:1", "transaction:56").SetErr(redis.ErrClosed)
	assert.Error(t, rc.InvalidateLedger(context.TODO(), 1, 56))

	assert.NoError(t, mock.ExpectationsWereMet())
}
