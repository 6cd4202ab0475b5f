package job

import (
	"context"
	"sync"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/graceful"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog/ctxdata"
	"github.com/francois202/gigabanksystem1-sub000/internal/monitoring"
	"github.com/francois202/gigabanksystem1-sub000/internal/services"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
)

const (
	JobOutboxRelay       = "outbox-relay"
	logPrefixRelay       = "[OUTBOX-RELAY-WORKER]"
	DefaultRelayInterval = 5 * time.Second
)

// RelayWorker runs an outbox relay cycle on every tick. A cycle never
// overlaps the next one and Stop waits for the one in flight.
type RelayWorker struct {
	relay    services.OutboxRelay
	interval time.Duration
	nr       *newrelic.Application

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	stopped chan struct{}
}

var _ graceful.ProcessStartStopper = (*RelayWorker)(nil)

type RelayOption func(*RelayWorker)

// WithNewRelic reports every cycle as a background transaction of app.
func WithNewRelic(app *newrelic.Application) RelayOption {
	return func(w *RelayWorker) {
		w.nr = app
	}
}

func NewRelayWorker(relay services.OutboxRelay, interval time.Duration, opts ...RelayOption) *RelayWorker {
	if interval <= 0 {
		interval = DefaultRelayInterval
	}
	w := &RelayWorker{
		relay:    relay,
		interval: interval,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *RelayWorker) Start() graceful.ProcessStarter {
	return func() error {
		w.mu.Lock()
		w.started = true
		w.mu.Unlock()
		defer close(w.stopped)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		xlog.Info(context.Background(), logPrefixRelay, xlog.String("status", "started"), xlog.Duration("interval", w.interval))
		for {
			select {
			case <-w.stop:
				return nil
			case <-ticker.C:
				w.runCycle()
			}
		}
	}
}

func (w *RelayWorker) runCycle() {
	ctx := ctxdata.Sets(context.Background(), ctxdata.SetCorrelationId(uuid.New().String()))
	ctx, end := monitoring.StartBackgroundTransaction(ctx, w.nr, JobOutboxRelay)
	defer end()

	started := time.Now()
	result, err := w.relay.RunCycle(ctx)
	logJob(ctx, JobOutboxRelay, started, result, err)
}

// RunOnce runs a single cycle outside the ticker loop.
func (w *RelayWorker) RunOnce(ctx context.Context) (services.CycleResult, error) {
	ctx = ctxdata.EnsureCorrelationId(ctx)
	ctx, end := monitoring.StartBackgroundTransaction(ctx, w.nr, JobOutboxRelay)
	defer end()

	started := time.Now()
	result, err := w.relay.RunCycle(ctx)
	logJob(ctx, JobOutboxRelay, started, result, err)
	return result, err
}

func (w *RelayWorker) Stop() graceful.ProcessStopper {
	return func(ctx context.Context) error {
		w.mu.Lock()
		select {
		case <-w.stop:
		default:
			close(w.stop)
		}
		started := w.started
		w.mu.Unlock()

		// nothing to wait for, e.g. after relay-once
		if !started {
			return nil
		}

		select {
		case <-w.stopped:
			xlog.Info(ctx, logPrefixRelay, xlog.String("status", "stopped"))
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
