package ports

import (
	"context"
	"errors"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
)

var ErrNotFound = errors.New("order not found")

// OrderQuery filters and paginates order listings.
type OrderQuery struct {
	Page          int
	Limit         int
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
}

// Repository persists orders. Save assigns the identifier on first insert.
type Repository interface {
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, query OrderQuery) ([]*domain.Order, int64, error)
	ListAll(ctx context.Context, query OrderQuery) ([]*domain.Order, int64, error)
}
