package ports

import (
	"context"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
)

// CartStore exposes the pending purchase items of a user. Clear must be
// idempotent: clearing an already-empty cart is a no-op.
type CartStore interface {
	Read(ctx context.Context, userID string) ([]domain.LineItem, error)
	Clear(ctx context.Context, userID string) error
}
