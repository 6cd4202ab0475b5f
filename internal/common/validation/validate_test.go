package validation

import (
	"testing"

	"github.com/francois202/gigabanksystem1-sub000/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		toValidate interface{}
		wantErr    bool
		wantField  string
	}{
		{
			name: "valid deposit",
			toValidate: models.TransactionEvent{
				ID:        int64Ptr(1),
				AccountID: int64Ptr(1),
				Amount:    decimal.RequireFromString("100.00"),
				Kind:      models.TransactionKindDeposit,
			},
		},
		{
			name: "zero amount is allowed",
			toValidate: models.TransactionEvent{
				ID:        int64Ptr(1),
				AccountID: int64Ptr(1),
				Amount:    decimal.Zero,
				Kind:      models.TransactionKindWithdrawal,
			},
		},
		{
			name: "negative amount",
			toValidate: models.TransactionEvent{
				ID:        int64Ptr(1),
				AccountID: int64Ptr(1),
				Amount:    decimal.RequireFromString("-1"),
				Kind:      models.TransactionKindDeposit,
			},
			wantErr:   true,
			wantField: "amount",
		},
		{
			name: "missing account id",
			toValidate: models.TransactionEvent{
				ID:     int64Ptr(1),
				Amount: decimal.NewFromInt(5),
				Kind:   models.TransactionKindDeposit,
			},
			wantErr:   true,
			wantField: "accountId",
		},
		{
			name: "unknown kind",
			toValidate: models.TransactionEvent{
				ID:        int64Ptr(1),
				AccountID: int64Ptr(1),
				Amount:    decimal.NewFromInt(5),
				Kind:      "TRANSFER",
			},
			wantErr:   true,
			wantField: "kind",
		},
		{
			name:       "generate request without count",
			toValidate: models.GenerateTransactionsRequest{},
			wantErr:    true,
			wantField:  "count",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.toValidate)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}
