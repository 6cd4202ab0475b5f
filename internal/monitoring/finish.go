package monitoring

import (
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"

	"github.com/newrelic/go-agent/v3/newrelic"
)

var messagePrefix = map[string]string{
	LayerRepository: "[REPOSITORY]",
	LayerService:    "[SERVICE]",
	LayerDelivery:   "[DELIVERY]",
	LayerUnknown:    "[-]",
}

type finishOptions struct {
	err        error
	xlogFields []xlog.Field
}

type FinishOption func(*finishOptions)

func WithFinishCheckError(err error) FinishOption {
	return func(o *finishOptions) {
		o.err = err
	}
}

func WithFinishXlogFields(fields ...xlog.Field) FinishOption {
	return func(o *finishOptions) {
		o.xlogFields = append(o.xlogFields, fields...)
	}
}

// Finish ends the segment. Failures are logged on every layer and noticed on
// the New Relic transaction, successes only on service and delivery.
func (m *Monitor) Finish(opts ...FinishOption) {
	fOpts := &finishOptions{}
	for _, opt := range opts {
		opt(fOpts)
	}
	if m.segment != nil {
		defer m.segment.End()
	}

	fields := append(fOpts.xlogFields,
		xlog.String("segment", m.segmentName),
		xlog.Duration("processDuration", time.Since(m.start)))

	if fOpts.err != nil {
		newrelic.FromContext(m.ctx).NoticeError(fOpts.err)
		fields = append(fields,
			xlog.String("status", "error"),
			xlog.String("error_type", common.ErrorType(fOpts.err)),
			xlog.Err(fOpts.err))
		xlog.Warn(m.ctx, messagePrefix[m.layer], fields...)
		return
	}

	if m.layer == LayerDelivery || m.layer == LayerService {
		xlog.Debug(m.ctx, messagePrefix[m.layer], append(fields, xlog.String("status", "success"))...)
	}
}
