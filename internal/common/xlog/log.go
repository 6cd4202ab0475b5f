// Package xlog is the process wide structured logger. Every entry is enriched
// with the correlation id found in the context.
package xlog

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog/ctxdata"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DebugLogLevel = "debug"
	InfoLogLevel  = "info"
	WarnLogLevel  = "warn"
	ErrorLogLevel = "error"
)

const (
	EnvProduction  = "prod"
	EnvDevelopment = "dev"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

type options struct {
	env        string
	level      string
	caller     bool
	callerSkip int
	cores      []zapcore.Core
}

type Option func(*options)

func WithLogEnvOption(env string) Option {
	return func(o *options) { o.env = env }
}

func WithLevel(level string) Option {
	return func(o *options) { o.level = level }
}

func WithCaller(enabled bool) Option {
	return func(o *options) { o.caller = enabled }
}

func AddCallerSkip(skip int) Option {
	return func(o *options) { o.callerSkip = skip }
}

// WithCore tees log entries into an additional core, e.g. the New Relic bridge.
func WithCore(core zapcore.Core) Option {
	return func(o *options) { o.cores = append(o.cores, core) }
}

// Init builds the global logger for the named service.
func Init(serviceName string, opts ...Option) error {
	o := &options{env: EnvDevelopment, level: InfoLogLevel, caller: true}
	for _, opt := range opts {
		opt(o)
	}

	level, err := zapcore.ParseLevel(o.level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", o.level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)
	if o.env != EnvProduction {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	cores := append([]zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}, o.cores...)

	zapOpts := []zap.Option{zap.AddCallerSkip(1 + o.callerSkip)}
	if o.caller {
		zapOpts = append(zapOpts, zap.AddCaller())
	}

	l := zap.New(zapcore.NewTee(cores...), zapOpts...).With(zap.String("service", serviceName))
	logger.Store(l)
	return nil
}

// InitForTest routes log entries to a development logger at debug level.
func InitForTest() {
	l, err := zap.NewDevelopment(zap.AddCallerSkip(1))
	if err != nil {
		return
	}
	logger.Store(l)
}

// Logger exposes the underlying zap logger for integrations.
func Logger() *zap.Logger {
	return logger.Load()
}

func Sync() error {
	return logger.Load().Sync()
}

func withContext(ctx context.Context, fields []Field) []Field {
	data := ctxdata.Get(ctx)
	if data.CorrelationID != "" {
		fields = append(fields, zap.String("correlation_id", data.CorrelationID))
	}
	if data.Host != "" {
		fields = append(fields, zap.String("host", data.Host))
	}
	return fields
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	logger.Load().Debug(msg, withContext(ctx, fields)...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	logger.Load().Info(msg, withContext(ctx, fields)...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	logger.Load().Warn(msg, withContext(ctx, fields)...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	logger.Load().Error(msg, withContext(ctx, fields)...)
}

func Fatal(ctx context.Context, msg string, fields ...Field) {
	logger.Load().Fatal(msg, withContext(ctx, fields)...)
}

func Debugf(ctx context.Context, format string, args ...any) {
	logger.Load().Debug(fmt.Sprintf(format, args...), withContext(ctx, nil)...)
}

func Infof(ctx context.Context, format string, args ...any) {
	logger.Load().Info(fmt.Sprintf(format, args...), withContext(ctx, nil)...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	logger.Load().Warn(fmt.Sprintf(format, args...), withContext(ctx, nil)...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	logger.Load().Error(fmt.Sprintf(format, args...), withContext(ctx, nil)...)
}

func Fatalf(ctx context.Context, format string, args ...any) {
	logger.Load().Fatal(fmt.Sprintf(format, args...), withContext(ctx, nil)...)
}
