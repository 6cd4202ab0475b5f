package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID        int64
	Number    string
	Balance   decimal.Decimal
	Blocked   bool
	UpdatedAt time.Time
}

// Transaction is the ledger row written for every applied event.
type Transaction struct {
	ID            int64
	EventID       int64
	AccountID     int64
	Amount        decimal.Decimal
	Kind          TransactionKind
	BalanceAfter  decimal.Decimal
	SourceAccount string
	TargetAccount string
	Category      string
	CreatedAt     time.Time
}

// LedgerUpdate describes the mutation performed by one successful apply.
type LedgerUpdate struct {
	AccountID       int64           `json:"accountId"`
	TransactionID   int64           `json:"transactionId"`
	EventID         int64           `json:"eventId"`
	Kind            TransactionKind `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previousBalance"`
	NewBalance      decimal.Decimal `json:"newBalance"`
	OutboxID        string          `json:"outboxId"`
}
