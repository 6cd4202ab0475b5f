package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/validation"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/monitoring"

	"github.com/shopspring/decimal"
)

const logPrefixGenerator = "[EVENT-GENERATOR]"

type EventGenerator interface {
	// Generate publishes req.Count synthetic deposit and withdrawal events
	// with the requested delivery mode.
	Generate(ctx context.Context, req models.GenerateTransactionsRequest) (models.GenerateTransactionsResult, error)
}

type eventGenerator service

var _ EventGenerator = (*eventGenerator)(nil)

func (eg *eventGenerator) Generate(ctx context.Context, req models.GenerateTransactionsRequest) (result models.GenerateTransactionsResult, err error) {
	monitor := monitoring.New(ctx)
	defer func() { monitor.Finish(monitoring.WithFinishCheckError(err)) }()

	if err = validation.ValidateStruct(req); err != nil {
		return result, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	conf := eg.srv.conf.Generator
	if conf.MaxCount > 0 && req.Count > conf.MaxCount {
		return result, fmt.Errorf("%w: count must not exceed %d", common.ErrValidation, conf.MaxCount)
	}

	rawMode := req.DeliveryMode
	if rawMode == "" {
		rawMode = eg.srv.conf.Producer.DefaultDeliveryMode
	}
	mode := models.ParseDeliveryMode(rawMode)

	topic := req.Topic
	if topic == "" {
		topic = eg.srv.conf.MessageBroker.KafkaConsumer.TopicTransactions
	}

	result = models.GenerateTransactionsResult{
		GenerationID: eg.srv.idGen.Generate("GEN"),
		Requested:    req.Count,
		DeliveryMode: mode.String(),
		Topic:        topic,
	}

	baseID := time.Now().UnixNano()
	for i := 0; i < req.Count; i++ {
		if err = ctx.Err(); err != nil {
			return result, err
		}

		event := eg.randomEvent(baseID + int64(i))
		if errSend := eg.srv.producer.SendTo(ctx, topic, event, event.PartitionKey(), mode); errSend != nil {
			result.Failed++
			continue
		}
		result.Sent++
	}

	xlog.Info(ctx, logPrefixGenerator,
		xlog.String("generation_id", result.GenerationID),
		xlog.Int("requested", result.Requested),
		xlog.Int("sent", result.Sent),
		xlog.Int("failed", result.Failed),
		xlog.String("mode", result.DeliveryMode),
		xlog.String("topic", topic))

	return result, nil
}

func (eg *eventGenerator) randomEvent(id int64) models.TransactionEvent {
	maxAccountID := eg.srv.conf.Generator.MaxAccountID
	if maxAccountID <= 0 {
		maxAccountID = 1
	}
	accountID := rand.Int64N(maxAccountID) + 1

	kind := models.TransactionKindDeposit
	if rand.IntN(2) == 1 {
		kind = models.TransactionKindWithdrawal
	}

	// 1.00 to 1000.00
	amount := decimal.New(rand.Int64N(99901)+100, -2)

	return models.TransactionEvent{
		ID:        &id,
		AccountID: &accountID,
		Amount:    amount,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Category:  "GENERATED",
	}
}
