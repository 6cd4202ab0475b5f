package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/retry"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	xlog.InitForTest()
}

func fastConfig() config.ExponentialBackOffConfig {
	return config.ExponentialBackOffConfig{
		InitialInterval:   10 * time.Millisecond,
		BackoffMultiplier: 2,
		MaxInterval:       40 * time.Millisecond,
		MaxElapsedTime:    150 * time.Millisecond,
	}
}

func Test_Retry_ExponentialBackoff(t *testing.T) {
	t.Run("success on first attempt skips DLQ", func(t *testing.T) {
		var dlqCalled int
		r := retry.NewExponentialBackOff(fastConfig())

		err := r.Retry(context.Background(),
			func() error { return nil },
			func(int, error) error {
				dlqCalled++
				return nil
			},
		)
		assert.NoError(t, err)
		assert.Zero(t, dlqCalled)
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		var calls, notified int
		r := retry.NewExponentialBackOff(fastConfig(), retry.WithNotify(func(error, time.Duration) {
			notified++
		}))

		err := r.Retry(context.Background(),
			func() error {
				calls++
				if calls < 3 {
					return assert.AnError
				}
				return nil
			},
			func(int, error) error {
				t.Fatal("dlq must not be called")
				return nil
			},
		)
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2, notified)
	})

	t.Run("exhausted budget calls DLQ within bounds", func(t *testing.T) {
		cfg := fastConfig()
		r := retry.NewExponentialBackOff(cfg)

		var (
			gotAttempts int
			gotErr      error
		)
		start := time.Now()
		err := r.Retry(context.Background(),
			func() error { return assert.AnError },
			func(attempts int, err error) error {
				gotAttempts = attempts
				gotErr = err
				return nil
			},
		)
		elapsed := time.Since(start)

		assert.NoError(t, err)
		assert.ErrorIs(t, gotErr, assert.AnError)
		assert.Greater(t, gotAttempts, 1)
		assert.GreaterOrEqual(t, elapsed, cfg.InitialInterval)
		assert.Less(t, elapsed, cfg.MaxElapsedTime+100*time.Millisecond)
	})

	t.Run("DLQ error is returned", func(t *testing.T) {
		r := retry.NewExponentialBackOff(config.ExponentialBackOffConfig{
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
			MaxElapsedTime:  time.Second,
			MaxRetries:      1,
		})

		var attempts int
		err := r.Retry(context.Background(),
			func() error { return assert.AnError },
			func(n int, _ error) error {
				attempts = n
				return errors.New("dlq down")
			},
		)
		assert.EqualError(t, err, "dlq down")
		assert.Equal(t, 2, attempts)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		var calls int
		r := retry.NewExponentialBackOff(fastConfig())

		var gotErr error
		err := r.Retry(context.Background(),
			func() error {
				calls++
				return r.StopRetryWithErr(assert.AnError)
			},
			func(attempts int, err error) error {
				assert.Equal(t, 1, attempts)
				gotErr = err
				return nil
			},
		)
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, gotErr, assert.AnError)
	})

	t.Run("cancelled context skips DLQ", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r := retry.NewExponentialBackOff(fastConfig())
		err := r.Retry(ctx,
			func() error { return assert.AnError },
			func(int, error) error {
				t.Fatal("dlq must not be called")
				return nil
			},
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
