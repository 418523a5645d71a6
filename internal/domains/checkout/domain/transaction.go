package domain

import (
	"errors"
	"time"
)

// TransactionStatus enumerates the gateway transaction lifecycle.
type TransactionStatus string

const (
	TransactionInitiated TransactionStatus = "initiated"
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionFailed    TransactionStatus = "failed"
)

var ErrTransactionTerminal = errors.New("payment transaction already settled")

// PaymentTransaction ties one gateway interaction to exactly one order.
type PaymentTransaction struct {
	ID        string
	OrderID   string
	Status    TransactionStatus
	ExpiresAt time.Time
}

// NewPaymentTransaction records a freshly initiated gateway transaction.
func NewPaymentTransaction(id, orderID string, expiresAt time.Time) *PaymentTransaction {
	return &PaymentTransaction{ID: id, OrderID: orderID, Status: TransactionInitiated, ExpiresAt: expiresAt}
}

// Settle moves the transaction to confirmed or failed. Settling twice is rejected.
func (t *PaymentTransaction) Settle(confirmed bool) error {
	if t.Status != TransactionInitiated {
		return ErrTransactionTerminal
	}
	if confirmed {
		t.Status = TransactionConfirmed
	} else {
		t.Status = TransactionFailed
	}
	return nil
}

// Expired reports whether the payment window has elapsed. Expiry is
// informational; it never drives a state transition on its own.
func (t *PaymentTransaction) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}
