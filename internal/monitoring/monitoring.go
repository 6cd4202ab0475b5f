package monitoring

import (
	"context"
	"runtime"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

const (
	LayerRepository = "repositories"
	LayerService    = "services"
	LayerDelivery   = "deliveries"
	LayerUnknown    = "unknown"
)

type Monitor struct {
	ctx         context.Context
	segmentName string

	// layer is which this struct places, is it in repository, delivery, or service
	layer string

	start time.Time

	segment *newrelic.Segment
}

type initOptions struct {
	layer       string
	segmentName string
}

type InitOption func(*initOptions)

func WithLayer(layer string) InitOption {
	return func(o *initOptions) {
		o.layer = layer
	}
}

func WithSegmentName(segmentName string) InitOption {
	return func(o *initOptions) {
		o.segmentName = segmentName
	}
}

func New(ctx context.Context, opts ...InitOption) *Monitor {
	fOpts := &initOptions{}
	for _, opt := range opts {
		opt(fOpts)
	}

	if fOpts.segmentName == "" {
		// runtime.Caller(1) must stay in this function for the segment name to point at the caller
		pc, file, _, ok := runtime.Caller(1)
		if !ok {
			pc = 0
		}

		segmentName := "unknown"
		if fn := runtime.FuncForPC(pc); fn != nil {
			segmentName = segmentNameOf(fn.Name())
		}
		fOpts.segmentName = segmentName

		if fOpts.layer == "" {
			fOpts.layer = layerFromFile(file)
		}
	}
	if fOpts.layer == "" {
		fOpts.layer = LayerUnknown
	}

	txn := newrelic.FromContext(ctx)
	segment := txn.StartSegment(fOpts.segmentName)

	if segment != nil {
		segment.AddAttribute("layer", fOpts.layer)
	}

	return &Monitor{
		ctx:   ctx,
		layer: fOpts.layer,
		start: time.Now(),

		segmentName: fOpts.segmentName,
		segment:     segment,
	}
}

// StartBackgroundTransaction opens a New Relic transaction for work that does
// not come from an HTTP request, such as a consumed message or a relay cycle.
// A nil app yields the unchanged context and a no-op end func.
func StartBackgroundTransaction(ctx context.Context, app *newrelic.Application, name string) (context.Context, func()) {
	if app == nil {
		return ctx, func() {}
	}
	txn := app.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}
