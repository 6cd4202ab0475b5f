package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/validation"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/monitoring"
	"github.com/francois202/gigabanksystem1-sub000/internal/repositories"

	"github.com/google/uuid"
)

const (
	ReasonValidation          = "VALIDATION"
	ReasonAccountNotFound     = "ACCOUNT_NOT_FOUND"
	ReasonOperationForbidden  = "OPERATION_FORBIDDEN"
	ReasonInsufficientFunds   = "INSUFFICIENT_FUNDS"
	ReasonInfrastructureError = "INFRASTRUCTURE"

	logPrefixProcessor = "[TRANSACTION-PROCESSOR]"
)

type TransactionProcessor interface {
	// Apply validates event and applies it to its account in one atomic unit
	// together with the ledger row and the outbox record.
	Apply(ctx context.Context, event models.TransactionEvent) (*models.LedgerUpdate, error)
	// ApplyWithAccount applies event to an account already locked by the
	// caller. It must run inside r's Atomic.
	ApplyWithAccount(ctx context.Context, r repositories.SQLRepository, event models.TransactionEvent, account *models.Account) (*models.LedgerUpdate, error)
}

type transactionProcessor service

var _ TransactionProcessor = (*transactionProcessor)(nil)

func (tp *transactionProcessor) Apply(ctx context.Context, event models.TransactionEvent) (result *models.LedgerUpdate, err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	start := time.Now()
	if err = ValidateEvent(event); err != nil {
		return nil, newProcessingError(err)
	}

	err = tp.srv.sqlRepo.Atomic(ctx, func(actx context.Context, r repositories.SQLRepository) error {
		account, errFind := r.GetAccountRepository().FindAccountForUpdate(actx, *event.AccountID)
		if errFind != nil {
			if errors.Is(errFind, common.ErrDataNotFound) {
				return fmt.Errorf("%w: %d", common.ErrAccountNotFound, *event.AccountID)
			}
			return fmt.Errorf("failed to lock account: %w", errFind)
		}

		update, errApply := tp.ApplyWithAccount(actx, r, event, account)
		if errApply != nil {
			return errApply
		}
		result = update
		return nil
	})
	if err != nil {
		xlog.Warn(ctx, logPrefixProcessor,
			xlog.String("status", "failed"),
			xlog.String("transaction_id", event.LogID()),
			xlog.String("account_id", event.LogAccountID()),
			xlog.Err(err))
		return nil, newProcessingError(err)
	}

	tp.srv.metrics.SingleProcessing().RecordSuccess(time.Since(start))
	tp.srv.metrics.GetLedgerPrometheus().Record(*result)
	tp.invalidateCache(ctx, *result)

	xlog.Info(ctx, logPrefixProcessor,
		xlog.String("status", "applied"),
		xlog.String("transaction_id", event.LogID()),
		xlog.Int64("account_id", result.AccountID),
		xlog.String("previous_balance", result.PreviousBalance.StringFixed(2)),
		xlog.String("new_balance", result.NewBalance.StringFixed(2)))

	return result, nil
}

func (tp *transactionProcessor) ApplyWithAccount(ctx context.Context, r repositories.SQLRepository, event models.TransactionEvent, account *models.Account) (*models.LedgerUpdate, error) {
	if err := ValidateEvent(event); err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %d", common.ErrAccountNotFound, *event.AccountID)
	}
	if account.Blocked {
		return nil, fmt.Errorf("%w: %d", common.ErrOperationForbidden, account.ID)
	}

	previous := account.Balance
	balance := previous
	switch event.Kind {
	case models.TransactionKindDeposit:
		balance = previous.Add(event.Amount)
	case models.TransactionKindWithdrawal:
		if previous.LessThan(event.Amount) {
			return nil, fmt.Errorf("%w: balance %s, requested %s",
				common.ErrInsufficientFunds, previous.StringFixed(2), event.Amount.StringFixed(2))
		}
		balance = previous.Sub(event.Amount)
	}

	now := time.Now().UTC()
	updated := *account
	updated.Balance = balance
	updated.UpdatedAt = now
	if err := r.GetAccountRepository().SaveAccount(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	trxID, err := r.GetTransactionRepository().SaveTransaction(ctx, models.Transaction{
		EventID:       *event.ID,
		AccountID:     account.ID,
		Amount:        event.Amount,
		Kind:          event.Kind,
		BalanceAfter:  balance,
		SourceAccount: event.SourceAccount,
		TargetAccount: event.TargetAccount,
		Category:      event.Category,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	payload, err := json.Marshal(models.TransactionAppliedEvent{
		EventID:         *event.ID,
		TransactionID:   trxID,
		AccountID:       account.ID,
		Kind:            event.Kind,
		Amount:          event.Amount,
		PreviousBalance: previous,
		BalanceAfter:    balance,
		SourceAccount:   event.SourceAccount,
		TargetAccount:   event.TargetAccount,
		Category:        event.Category,
		OccurredAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	record := models.OutboxRecord{
		ID:            uuid.New(),
		AggregateType: models.AggregateTypeAccount,
		AggregateID:   strconv.FormatInt(account.ID, 10),
		EventType:     models.EventTypeTransactionApplied,
		Payload:       payload,
		CreatedAt:     now,
	}
	if err = r.GetOutboxRepository().Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save outbox record: %w", err)
	}

	// later events of the same batch must see the new balance
	account.Balance = balance
	account.UpdatedAt = now

	return &models.LedgerUpdate{
		AccountID:       account.ID,
		TransactionID:   trxID,
		EventID:         *event.ID,
		Kind:            event.Kind,
		Amount:          event.Amount,
		PreviousBalance: previous,
		NewBalance:      balance,
		OutboxID:        record.ID.String(),
	}, nil
}

func (tp *transactionProcessor) invalidateCache(ctx context.Context, update models.LedgerUpdate) {
	if tp.srv.cacheRepo == nil {
		return
	}
	if err := tp.srv.cacheRepo.InvalidateLedger(ctx, update.AccountID, update.TransactionID); err != nil {
		xlog.Warn(ctx, logPrefixProcessor, xlog.String("status", "cache invalidation failed"), xlog.Err(err))
	}
}

// ValidateEvent checks the fields every transaction event must carry.
func ValidateEvent(event models.TransactionEvent) error {
	if event.ID == nil {
		return common.ErrMissingTransactionID
	}
	if event.AccountID == nil {
		return common.ErrMissingAccountID
	}
	if !event.Kind.IsValid() {
		return fmt.Errorf("%w: %q", common.ErrUnknownTransactionKind, event.Kind)
	}
	if event.Amount.IsNegative() {
		return common.ErrInvalidAmount
	}
	if err := validation.ValidateStruct(event); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

// FailureReason maps a processing failure to the reason reported to callers.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, common.ErrAccountNotFound):
		return ReasonAccountNotFound
	case errors.Is(err, common.ErrOperationForbidden):
		return ReasonOperationForbidden
	case errors.Is(err, common.ErrInsufficientFunds):
		return ReasonInsufficientFunds
	case common.IsFatal(err):
		return ReasonValidation
	default:
		return ReasonInfrastructureError
	}
}

func newProcessingError(err error) error {
	var pe *common.ProcessingError
	if errors.As(err, &pe) {
		return err
	}
	return common.NewProcessingError(err, FailureReason(err))
}
