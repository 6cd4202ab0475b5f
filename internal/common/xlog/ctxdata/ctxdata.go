// Package ctxdata stores request scoped values that every log entry carries.
package ctxdata

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

type Data struct {
	CorrelationID string
	Host          string
	UserAgent     string
}

type Option func(*Data)

func SetCorrelationId(id string) Option {
	return func(d *Data) {
		d.CorrelationID = id
	}
}

func SetHost(host string) Option {
	return func(d *Data) {
		d.Host = host
	}
}

func SetUserAgent(ua string) Option {
	return func(d *Data) {
		d.UserAgent = ua
	}
}

// Sets returns a child context holding the existing data merged with opts.
func Sets(ctx context.Context, opts ...Option) context.Context {
	data := Get(ctx)
	for _, opt := range opts {
		opt(&data)
	}
	return context.WithValue(ctx, ctxKey{}, data)
}

func Get(ctx context.Context) Data {
	if ctx == nil {
		return Data{}
	}
	data, _ := ctx.Value(ctxKey{}).(Data)
	return data
}

func GetCorrelationId(ctx context.Context) string {
	return Get(ctx).CorrelationID
}

// EnsureCorrelationId keeps an existing correlation id or generates a new one.
func EnsureCorrelationId(ctx context.Context) context.Context {
	if GetCorrelationId(ctx) != "" {
		return ctx
	}
	return Sets(ctx, SetCorrelationId(uuid.NewString()))
}
