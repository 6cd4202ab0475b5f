package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/publisher"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/monitoring"

	"github.com/hashicorp/go-multierror"
)

const logPrefixRelay = "[OUTBOX-RELAY]"

type OutboxRelay interface {
	// RunCycle publishes pending outbox records oldest first and marks each
	// one processed after its publish succeeded. A failing record never
	// blocks the rest of the cycle.
	RunCycle(ctx context.Context) (CycleResult, error)
}

type CycleResult struct {
	Processed int
	Failed    int
}

type outboxRelay service

var _ OutboxRelay = (*outboxRelay)(nil)

func (or *outboxRelay) RunCycle(ctx context.Context) (result CycleResult, err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	records, err := or.srv.sqlRepo.GetOutboxRepository().FindUnprocessed(ctx, or.srv.conf.OutboxRelay.BatchSize)
	if err != nil {
		return result, fmt.Errorf("failed to load outbox records: %w", err)
	}
	if len(records) == 0 {
		xlog.Debug(ctx, logPrefixRelay, xlog.String("status", "idle"))
		return result, nil
	}

	var errs *multierror.Error
	for _, record := range records {
		if ctx.Err() != nil {
			errs = multierror.Append(errs, ctx.Err())
			break
		}
		if errRelay := or.relay(ctx, record); errRelay != nil {
			result.Failed++
			errs = multierror.Append(errs, fmt.Errorf("outbox record %s: %w", record.ID, errRelay))
			xlog.Warn(ctx, logPrefixRelay,
				xlog.String("outbox_id", record.ID.String()),
				xlog.String("aggregate_id", record.AggregateID),
				xlog.Err(errRelay))
			continue
		}
		result.Processed++
	}

	xlog.Info(ctx, logPrefixRelay,
		xlog.Int("processed", result.Processed),
		xlog.Int("failed", result.Failed))

	return result, errs.ErrorOrNil()
}

func (or *outboxRelay) relay(ctx context.Context, record models.OutboxRecord) error {
	var payload models.TransactionAppliedEvent
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
	}

	err := or.srv.outboxPub.Publish(ctx, payload,
		publisher.WithKey(record.AggregateID),
		publisher.WithHeaders(map[string]string{
			models.OutboxHeaderEventType:     record.EventType,
			models.OutboxHeaderAggregateType: record.AggregateType,
			models.OutboxHeaderOutboxID:      record.ID.String(),
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}

	err = or.srv.sqlRepo.GetOutboxRepository().MarkProcessed(ctx, record, time.Now().UTC())
	if errors.Is(err, common.ErrNoRowsAffected) {
		// another relay instance got there first
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to mark processed: %w", err)
	}
	return nil
}
