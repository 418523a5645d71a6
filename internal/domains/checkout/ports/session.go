package ports

import (
	"context"
	"time"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
)

// CheckoutSession is the durable snapshot of the current checkout, written on
// every state transition so a reload resumes correctly. One record per user.
type CheckoutSession struct {
	UserID           string
	State            domain.State
	OrderID          string
	PaymentMethod    domain.PaymentMethod
	PaymentStatus    domain.PaymentStatus
	TransactionID    string
	PaymentURL       string
	PaymentExpiresAt *time.Time
	UpdatedAt        time.Time
}

// SessionStore persists checkout sessions. Load returns nil when no session
// exists for the user. Only the orchestrator touches this store.
type SessionStore interface {
	Load(ctx context.Context, userID string) (*CheckoutSession, error)
	Save(ctx context.Context, session CheckoutSession) error
	Delete(ctx context.Context, userID string) error
	// PurgeExpired removes sessions whose payment window elapsed more than
	// grace ago, returning the number of rows removed.
	PurgeExpired(ctx context.Context, grace time.Duration) (int64, error)
}
