package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := cloneOrder(order)
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == "" {
		clone.ID = uuid.NewString()
		clone.CreatedAt = r.now()
	}
	clone.UpdatedAt = r.now()
	r.orders[clone.ID] = clone
	return cloneOrder(clone), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) ListByUser(_ context.Context, userID string, query ports.OrderQuery) ([]*domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.page(query, func(o *domain.Order) bool {
		return o.UserID == userID && matches(o, query)
	})
}

func (r *Repository) ListAll(_ context.Context, query ports.OrderQuery) ([]*domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.page(query, func(o *domain.Order) bool {
		return matches(o, query)
	})
}

// page filters, sorts newest first, and slices out the requested window.
func (r *Repository) page(query ports.OrderQuery, keep func(*domain.Order) bool) ([]*domain.Order, int64, error) {
	filtered := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			filtered = append(filtered, order)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID > filtered[j].ID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	total := int64(len(filtered))
	start := (query.Page - 1) * query.Limit
	if start >= len(filtered) {
		return []*domain.Order{}, total, nil
	}
	end := start + query.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	page := make([]*domain.Order, 0, end-start)
	for _, order := range filtered[start:end] {
		page = append(page, cloneOrder(order))
	}
	return page, total, nil
}

func matches(o *domain.Order, query ports.OrderQuery) bool {
	if query.Status != "" && o.OrderStatus != query.Status {
		return false
	}
	if query.PaymentStatus != "" && o.PaymentStatus != query.PaymentStatus {
		return false
	}
	return true
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	clone.Items = append([]domain.LineItem{}, o.Items...)
	if o.PaymentExpiresAt != nil {
		expiry := *o.PaymentExpiresAt
		clone.PaymentExpiresAt = &expiry
	}
	return &clone
}
