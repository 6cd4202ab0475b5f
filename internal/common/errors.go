package common

import (
	"errors"
	"fmt"
)

var (
	ErrNoRowsAffected         = errors.New("no rows affected")
	ErrDataNotFound           = errors.New("data not found")
	ErrValidation             = errors.New("validation failed")
	ErrMissingTransactionID   = errors.New("transaction id is required")
	ErrMissingAccountID       = errors.New("account id is required")
	ErrAccountNotFound        = errors.New("account not found")
	ErrOperationForbidden     = errors.New("operation forbidden: account is blocked")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrUnknownTransactionKind = errors.New("unknown transaction kind")
	ErrInvalidAmount          = errors.New("amount must not be negative")
	ErrMalformedPayload       = errors.New("malformed payload")
)

var fatalErrors = []error{
	ErrValidation,
	ErrMissingTransactionID,
	ErrMissingAccountID,
	ErrAccountNotFound,
	ErrOperationForbidden,
	ErrInsufficientFunds,
	ErrUnknownTransactionKind,
	ErrInvalidAmount,
	ErrMalformedPayload,
}

// IsFatal reports whether retrying err can never succeed. Validation and
// business rule failures are fatal, everything else is treated as transient.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range fatalErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ErrorType is the classification stored on dead letter records.
func ErrorType(err error) string {
	if IsFatal(err) {
		return "FATAL"
	}
	return "TRANSIENT"
}

// ProcessingError carries the reason a transaction event could not be applied.
type ProcessingError struct {
	Reason string
	Err    error
}

func NewProcessingError(err error, reason string) *ProcessingError {
	return &ProcessingError{Reason: reason, Err: err}
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
