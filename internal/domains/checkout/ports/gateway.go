package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoTransactionID signals that initiation reported success but returned
	// no usable transaction identifier.
	ErrNoTransactionID = errors.New("gateway returned no transaction id")
	// ErrPaymentDeclined signals that the gateway settled the transaction as failed.
	ErrPaymentDeclined = errors.New("gateway declined the payment")
)

// InitiateRequest starts a gateway transaction for an order.
type InitiateRequest struct {
	OrderID string
	Amount  float64
	Phone   string
}

// InitiateResult carries the identifiers needed to complete the payment.
type InitiateResult struct {
	TransactionID string
	PaymentURL    string
	ExpiresAt     time.Time
}

// ConfirmRequest reports the outcome of a gateway transaction.
type ConfirmRequest struct {
	TransactionID string
	Status        string
	Data          map[string]string
}

// ConfirmResult is the gateway's settlement answer.
type ConfirmResult struct {
	OrderID       string
	PaymentStatus string
}

// PaymentGateway abstracts the mobile-payment provider's two REST calls.
type PaymentGateway interface {
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error)
}
