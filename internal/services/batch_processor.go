package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/idempotency"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/monitoring"
	"github.com/francois202/gigabanksystem1-sub000/internal/repositories"

	"golang.org/x/exp/slices"
)

const logPrefixBatch = "[BATCH-PROCESSOR]"

type BatchProcessor interface {
	// ProcessBatch applies events in order inside one atomic unit. Business
	// failures are counted per event; an infrastructure failure rolls back the
	// whole batch and is returned.
	ProcessBatch(ctx context.Context, events []models.TransactionEvent, mode models.DeliveryMode) (models.BatchResult, error)
}

type batchProcessor service

var _ BatchProcessor = (*batchProcessor)(nil)

func (bp *batchProcessor) ProcessBatch(ctx context.Context, events []models.TransactionEvent, mode models.DeliveryMode) (result models.BatchResult, err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	start := time.Now()
	if len(events) == 0 {
		return result, nil
	}

	var (
		updates []models.LedgerUpdate
		claimed []string
	)
	dedup := mode == models.ExactlyOnce && bp.srv.tracker != nil

	err = bp.srv.sqlRepo.Atomic(ctx, func(actx context.Context, r repositories.SQLRepository) error {
		result = models.BatchResult{Total: len(events)}

		accounts, errFind := r.GetAccountRepository().FindAccountsByIDs(actx, distinctAccountIDs(events))
		if errFind != nil {
			return fmt.Errorf("failed to lock accounts: %w", errFind)
		}

		for _, event := range events {
			if errValidate := ValidateEvent(event); errValidate != nil {
				bp.logSkipped(actx, event, errValidate)
				result.Failed++
				continue
			}

			if dedup {
				id := event.IdempotencyKey()
				if slices.Contains(claimed, id) {
					result.Duplicates++
					continue
				}
				claim, errClaim := bp.srv.tracker.Claim(actx, id)
				if errClaim != nil {
					return fmt.Errorf("failed to check idempotency: %w", errClaim)
				}
				switch claim {
				case idempotency.ClaimProcessed:
					result.Duplicates++
					continue
				case idempotency.ClaimInFlight:
					return fmt.Errorf("%w: %s", idempotency.ErrInFlight, id)
				}
				claimed = append(claimed, id)
			}

			update, errApply := bp.srv.Transaction.ApplyWithAccount(actx, r, event, accounts[*event.AccountID])
			if errApply != nil {
				if !common.IsFatal(errApply) {
					return errApply
				}
				bp.logSkipped(actx, event, errApply)
				result.Failed++
				if dedup {
					bp.release(actx, event.IdempotencyKey())
					claimed = slices.DeleteFunc(claimed, func(id string) bool { return id == event.IdempotencyKey() })
				}
				continue
			}

			result.Succeeded++
			updates = append(updates, *update)
		}
		return nil
	})
	result.Elapsed = time.Since(start)
	if err != nil {
		for _, id := range claimed {
			bp.release(ctx, id)
		}
		xlog.Error(ctx, logPrefixBatch,
			xlog.String("status", "rolled back"),
			xlog.Int("size", len(events)),
			xlog.String("mode", mode.String()),
			xlog.Err(err))
		return models.BatchResult{Total: len(events), Elapsed: result.Elapsed}, common.NewProcessingError(err, FailureReason(err))
	}

	for _, id := range claimed {
		bp.confirm(ctx, id)
	}

	bp.srv.metrics.BatchProcessing().RecordBatch(result)
	bp.srv.metrics.GetLedgerPrometheus().Record(updates...)
	for _, update := range updates {
		bp.srv.Transaction.invalidateCache(ctx, update)
	}

	xlog.Info(ctx, logPrefixBatch,
		xlog.String("status", "completed"),
		xlog.String("mode", mode.String()),
		xlog.Int("total", result.Total),
		xlog.Int("succeeded", result.Succeeded),
		xlog.Int("failed", result.Failed),
		xlog.Int("duplicates", result.Duplicates),
		xlog.Duration("elapsed", result.Elapsed),
		xlog.Duration("average_per_event", result.AveragePerEvent()))

	return result, nil
}

func (bp *batchProcessor) logSkipped(ctx context.Context, event models.TransactionEvent, err error) {
	xlog.Warn(ctx, logPrefixBatch,
		xlog.String("status", "skipped"),
		xlog.String("reason", FailureReason(err)),
		xlog.String("transaction_id", event.LogID()),
		xlog.String("account_id", event.LogAccountID()),
		xlog.Err(err))
}

func (bp *batchProcessor) release(ctx context.Context, id string) {
	if err := bp.srv.tracker.Release(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
		xlog.Warn(ctx, logPrefixBatch, xlog.String("status", "failed to release idempotency claim"),
			xlog.String("transaction_id", id), xlog.Err(err))
	}
}

// confirm runs after commit. A failure leaves the claim pending until it expires.
func (bp *batchProcessor) confirm(ctx context.Context, id string) {
	if err := bp.srv.tracker.Confirm(ctx, id); err != nil {
		xlog.Warn(ctx, logPrefixBatch, xlog.String("status", "failed to confirm idempotency claim"),
			xlog.String("transaction_id", id), xlog.Err(err))
	}
}

func distinctAccountIDs(events []models.TransactionEvent) []int64 {
	set := make(map[int64]struct{}, len(events))
	for _, event := range events {
		if event.AccountID != nil {
			set[*event.AccountID] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
