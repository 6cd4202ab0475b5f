package retry

import (
	"context"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultInitialInterval   = time.Second
	DefaultBackoffMultiplier = 2.0
	DefaultMaxInterval       = 8 * time.Second
	DefaultMaxElapsedTime    = 15 * time.Second
)

type Retryer interface {
	// Retry runs operation until it succeeds, returns a permanent error or the
	// budget runs out. dlqCallback receives the attempt count and the last error
	// and its result is returned. A cancelled ctx returns without the callback.
	Retry(ctx context.Context, operation func() error, dlqCallback func(attempts int, err error) error) error
	StopRetryWithErr(err error) error
}

type Option func(*exponentialBackoff)

// WithNotify registers a hook called before every backoff sleep.
func WithNotify(fn func(err error, wait time.Duration)) Option {
	return func(eb *exponentialBackoff) {
		eb.notify = fn
	}
}

type exponentialBackoff struct {
	ebCfg  config.ExponentialBackOffConfig
	notify func(err error, wait time.Duration)
}

/*
NewExponentialBackOff will init Retryer interface.
This retryer implement exponential backoff mechanism.

Example:

	Retry(ctx, func() error { return someOperation() }, func(attempts int, err error) error { return dlqOperation(err) })
*/
func NewExponentialBackOff(ebCfg config.ExponentialBackOffConfig, opts ...Option) Retryer {
	if ebCfg.InitialInterval <= 0 {
		ebCfg.InitialInterval = DefaultInitialInterval
	}

	if ebCfg.BackoffMultiplier <= 0 {
		ebCfg.BackoffMultiplier = DefaultBackoffMultiplier
	}

	if ebCfg.MaxInterval <= 0 {
		ebCfg.MaxInterval = DefaultMaxInterval
	}

	if ebCfg.MaxElapsedTime <= 0 {
		ebCfg.MaxElapsedTime = DefaultMaxElapsedTime
	}

	if ebCfg.RandomizationFactor < 0 {
		ebCfg.RandomizationFactor = 0
	}

	r := &exponentialBackoff{ebCfg: ebCfg}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *exponentialBackoff) newBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.ebCfg.InitialInterval
	eb.Multiplier = r.ebCfg.BackoffMultiplier
	eb.MaxInterval = r.ebCfg.MaxInterval
	eb.MaxElapsedTime = r.ebCfg.MaxElapsedTime
	eb.RandomizationFactor = r.ebCfg.RandomizationFactor

	var b backoff.BackOff = eb
	if r.ebCfg.MaxRetries > 0 {
		b = backoff.WithMaxRetries(b, r.ebCfg.MaxRetries)
	}

	return backoff.WithContext(b, ctx)
}

/*
Retry will create ExponentialBackOff instance for every execution.

"operation" is retried until it succeeds. Wrap an error with StopRetryWithErr to stop right away.
"dlqCallback" is called once when "operation" keeps failing.
*/
func (r *exponentialBackoff) Retry(ctx context.Context, operation func() error, dlqCallback func(attempts int, err error) error) error {
	var attempts int
	counted := func() error {
		attempts++
		return operation()
	}

	err := backoff.RetryNotify(counted, r.newBackOff(ctx), func(err error, wait time.Duration) {
		xlog.Debug(ctx, "[RETRY]", xlog.Int("attempt", attempts), xlog.Duration("wait", wait), xlog.Err(err))
		if r.notify != nil {
			r.notify(err, wait)
		}
	})
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	xlog.Debugf(ctx, "DLQ reached after %d attempt(s) with err: %v", attempts, err)
	return dlqCallback(attempts, err)
}

// StopRetryWithErr will stop retrying and return the error.
// This function should be called inside "operation" func.
func (r *exponentialBackoff) StopRetryWithErr(err error) error {
	return backoff.Permanent(err)
}
