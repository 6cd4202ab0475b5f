package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeAccount        = "Account"
	EventTypeTransactionApplied = "TransactionApplied"
	OutboxHeaderEventType       = "event_type"
	OutboxHeaderAggregateType   = "aggregate_type"
	OutboxHeaderOutboxID        = "outbox_id"
)

type OutboxRecord struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	Processed     bool
	CreatedAt     time.Time
	ProcessedAt   *time.Time
}

// TransactionAppliedEvent is the payload snapshot stored in the outbox and
// relayed downstream once the ledger change is committed.
type TransactionAppliedEvent struct {
	EventID         int64           `json:"eventId"`
	TransactionID   int64           `json:"transactionId"`
	AccountID       int64           `json:"accountId"`
	Kind            TransactionKind `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previousBalance"`
	BalanceAfter    decimal.Decimal `json:"balanceAfter"`
	SourceAccount   string          `json:"sourceAccount,omitempty"`
	TargetAccount   string          `json:"targetAccount,omitempty"`
	Category        string          `json:"category,omitempty"`
	OccurredAt      time.Time       `json:"occurredAt"`
}
