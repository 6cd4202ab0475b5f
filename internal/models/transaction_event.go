package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "DEPOSIT"
	TransactionKindWithdrawal TransactionKind = "WITHDRAWAL"
)

func (k TransactionKind) IsValid() bool {
	return k == TransactionKindDeposit || k == TransactionKindWithdrawal
}

func ParseTransactionKind(s string) (TransactionKind, error) {
	kind := TransactionKind(strings.ToUpper(strings.TrimSpace(s)))
	if !kind.IsValid() {
		return "", fmt.Errorf("unsupported transaction kind %q", s)
	}
	return kind, nil
}

// TransactionEvent is the message carried on the transactions topics.
// ID and AccountID are pointers so an absent value can be told apart from zero.
type TransactionEvent struct {
	ID            *int64          `json:"id" validate:"required"`
	AccountID     *int64          `json:"accountId" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"decimalGte=0"`
	Kind          TransactionKind `json:"kind" validate:"required,transactionKind"`
	CreatedAt     time.Time       `json:"createdAt"`
	SourceAccount string          `json:"sourceAccount,omitempty"`
	TargetAccount string          `json:"targetAccount,omitempty"`
	Category      string          `json:"category,omitempty"`
}

// IdempotencyKey is the dedup key of the event, empty when the id is missing.
func (e TransactionEvent) IdempotencyKey() string {
	if e.ID == nil {
		return ""
	}
	return strconv.FormatInt(*e.ID, 10)
}

// PartitionKey routes every event of one account to the same partition.
func (e TransactionEvent) PartitionKey() string {
	if e.AccountID == nil {
		return ""
	}
	return strconv.FormatInt(*e.AccountID, 10)
}

func (e TransactionEvent) LogID() string {
	if e.ID == nil {
		return "<nil>"
	}
	return strconv.FormatInt(*e.ID, 10)
}

func (e TransactionEvent) LogAccountID() string {
	if e.AccountID == nil {
		return "<nil>"
	}
	return strconv.FormatInt(*e.AccountID, 10)
}
