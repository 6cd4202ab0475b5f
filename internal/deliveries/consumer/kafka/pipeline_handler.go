package kafkaconsumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/idempotency"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/retry"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog/ctxdata"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/services"

	kafkacommon "github.com/francois202/gigabanksystem1-sub000/internal/common/kafka"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
)

const (
	stateReceived     = "Received"
	stateValidated    = "Validated"
	stateApplied      = "Applied"
	stateAcknowledged = "Acknowledged"
	stateFailed       = "Failed"
	stateRetried      = "Retried"
	stateDeadLettered = "DeadLettered"
	stateDropped      = "Dropped"
	stateDuplicate    = "Duplicate"
)

// PipelineHandler consumes transaction events and applies them with the
// delivery discipline of its Policy.
type PipelineHandler struct {
	kafkacommon.BaseHandler

	policy     Policy
	processor  services.TransactionProcessor
	tracker    idempotency.Tracker
	retryer    retry.Retryer
	processing *metrics.ProcessingMetrics
}

var _ sarama.ConsumerGroupHandler = (*PipelineHandler)(nil)

func NewPipelineHandler(
	base kafkacommon.BaseHandler,
	policy Policy,
	processor services.TransactionProcessor,
	tracker idempotency.Tracker,
	retryer retry.Retryer,
	processing *metrics.ProcessingMetrics,
) *PipelineHandler {
	if base.LogPrefix == "" {
		base.LogPrefix = fmt.Sprintf("[KAFKA-CONSUMER] [%s]", policy.Name)
	}
	return &PipelineHandler{
		BaseHandler: base,
		policy:      policy,
		processor:   processor,
		tracker:     tracker,
		retryer:     retryer,
		processing:  processing,
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (h *PipelineHandler) Setup(_ sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (h *PipelineHandler) Cleanup(_ sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim returns the first error the policy decides to redeliver on.
// Sarama then ends the session without committing that offset.
func (h *PipelineHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.HandleMessage(session, message); err != nil {
				return err
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// HandleMessage runs one message through decode, validate and apply and
// settles its offset according to the policy.
func (h *PipelineHandler) HandleMessage(session sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) error {
	ctx := ctxdata.Sets(session.Context(),
		ctxdata.SetCorrelationId(uuid.New().String()),
		ctxdata.SetHost(h.ClientID),
	)
	start := time.Now()
	logField := append(h.CreateLogField(message), xlog.String("policy", h.policy.Name))
	xlog.Debug(ctx, h.LogPrefix, append(logField, xlog.String("state", stateReceived))...)

	if h.policy.Commit == CommitAuto {
		h.Ack(ctx, session, message)
	}

	var err error
	switch h.policy.OnError {
	case ErrorRetryDeadLetter:
		err = h.processWithRetry(ctx, session, message, start, logField)
	default:
		err = h.processOnce(ctx, session, message, start, logField)
	}
	return err
}

func (h *PipelineHandler) processOnce(ctx context.Context, session sarama.ConsumerGroupSession, message *sarama.ConsumerMessage, start time.Time, logField []xlog.Field) error {
	duplicate, err := h.process(ctx, message, logField)
	switch {
	case err == nil && duplicate:
		h.processing.RecordDuplicate()
		h.settle(ctx, session, message)
		h.RecordMetrics(start, message, metrics.OutcomeDuplicate)
		xlog.Info(ctx, h.LogPrefix, append(logField, xlog.String("state", stateDuplicate))...)
		return nil
	case err == nil:
		h.settle(ctx, session, message)
		h.RecordMetrics(start, message, metrics.OutcomeAcknowledged)
		xlog.Info(ctx, h.LogPrefix, append(logField,
			xlog.String("state", stateAcknowledged),
			xlog.Duration("response-time", time.Since(start)))...)
		return nil
	}

	h.processing.RecordFailure()
	logField = append(logField,
		xlog.String("reason", services.FailureReason(err)),
		xlog.Duration("response-time", time.Since(start)),
		xlog.Err(err))

	if h.policy.OnError == ErrorDrop {
		h.RecordMetrics(start, message, metrics.OutcomeDropped)
		xlog.Warn(ctx, h.LogPrefix, append(logField, xlog.String("state", stateDropped))...)
		return nil
	}

	h.RecordMetrics(start, message, metrics.OutcomeRedelivered)
	xlog.Warn(ctx, h.LogPrefix, append(logField, xlog.String("state", stateFailed))...)
	return fmt.Errorf("message %s/%d/%d left uncommitted: %w", message.Topic, message.Partition, message.Offset, err)
}

func (h *PipelineHandler) processWithRetry(ctx context.Context, session sarama.ConsumerGroupSession, message *sarama.ConsumerMessage, start time.Time, logField []xlog.Field) error {
	attempt := 0
	operation := func() error {
		attempt++
		if attempt > 1 {
			h.processing.RecordRetry()
			xlog.Info(ctx, h.LogPrefix, append(logField,
				xlog.String("state", stateRetried),
				xlog.Int("attempt", attempt))...)
		}

		_, err := h.process(ctx, message, logField)
		if err != nil && common.IsFatal(err) {
			return h.retryer.StopRetryWithErr(err)
		}
		return err
	}

	deadLettered := false
	dlqCallback := func(attempts int, err error) error {
		deadLettered = true
		h.processing.RecordFailure()
		h.processing.RecordDeadLetter()
		// publish failures are already logged by the router, the offset moves on regardless
		_ = h.DeadLetter(ctx, message, err, attempts)
		xlog.Warn(ctx, h.LogPrefix, append(logField,
			xlog.String("state", stateDeadLettered),
			xlog.String("reason", services.FailureReason(err)),
			xlog.Int("attempts", attempts),
			xlog.Err(err))...)
		return nil
	}

	if err := h.retryer.Retry(ctx, operation, dlqCallback); err != nil {
		h.RecordMetrics(start, message, metrics.OutcomeRedelivered)
		xlog.Warn(ctx, h.LogPrefix, append(logField, xlog.String("state", stateFailed), xlog.Err(err))...)
		return err
	}

	h.settle(ctx, session, message)
	if deadLettered {
		h.RecordMetrics(start, message, metrics.OutcomeDeadLettered)
		return nil
	}

	h.RecordMetrics(start, message, metrics.OutcomeAcknowledged)
	xlog.Info(ctx, h.LogPrefix, append(logField,
		xlog.String("state", stateAcknowledged),
		xlog.Int("attempts", attempt),
		xlog.Duration("response-time", time.Since(start)))...)
	return nil
}

// process reports duplicate=true when the event was already applied.
func (h *PipelineHandler) process(ctx context.Context, message *sarama.ConsumerMessage, logField []xlog.Field) (duplicate bool, err error) {
	event, err := DecodeEvent(message.Value)
	if err != nil {
		return false, err
	}
	logField = append(logField,
		xlog.String("transaction_id", event.LogID()),
		xlog.String("account_id", event.LogAccountID()))

	if err = services.ValidateEvent(event); err != nil {
		return false, err
	}
	xlog.Debug(ctx, h.LogPrefix, append(logField, xlog.String("state", stateValidated))...)

	if h.policy.Dedup && h.tracker != nil {
		id := event.IdempotencyKey()
		claim, errClaim := h.tracker.Claim(ctx, id)
		if errClaim != nil {
			return false, fmt.Errorf("failed to check idempotency: %w", errClaim)
		}
		switch claim {
		case idempotency.ClaimProcessed:
			return true, nil
		case idempotency.ClaimInFlight:
			return false, fmt.Errorf("%w: %s", idempotency.ErrInFlight, id)
		}

		if _, err = h.processor.Apply(ctx, event); err != nil {
			if errRelease := h.tracker.Release(ctx, id); errRelease != nil {
				xlog.Warn(ctx, h.LogPrefix, append(logField,
					xlog.String("status", "failed to release idempotency claim"),
					xlog.Err(errRelease))...)
			}
			return false, err
		}

		// the ledger already committed, an unconfirmed claim only expires
		if errConfirm := h.tracker.Confirm(ctx, id); errConfirm != nil {
			xlog.Warn(ctx, h.LogPrefix, append(logField,
				xlog.String("status", "failed to confirm idempotency claim"),
				xlog.Err(errConfirm))...)
		}
	} else if _, err = h.processor.Apply(ctx, event); err != nil {
		return false, err
	}

	xlog.Debug(ctx, h.LogPrefix, append(logField, xlog.String("state", stateApplied))...)
	return false, nil
}

// settle acknowledges a message whose outcome is final. Auto commit policies
// already marked it on receipt.
func (h *PipelineHandler) settle(ctx context.Context, session sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) {
	if h.policy.Commit == CommitAuto {
		return
	}
	h.Ack(ctx, session, message)
	h.Commit(ctx, session)
}

// DecodeEvent parses a transaction event. Malformed JSON is fatal.
func DecodeEvent(value []byte) (models.TransactionEvent, error) {
	var event models.TransactionEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return event, fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
	}
	return event, nil
}

