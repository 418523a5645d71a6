package memory

import (
	"context"
	"sync"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

var _ ports.CartStore = (*CartStore)(nil)

// CartStore is an in-memory cart snapshot source, keyed by user.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.LineItem
}

func NewCartStore() *CartStore {
	return &CartStore{carts: map[string][]domain.LineItem{}}
}

// Put replaces the user's cart contents (test and development seeding).
func (s *CartStore) Put(userID string, items []domain.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = append([]domain.LineItem{}, items...)
}

func (s *CartStore) Read(_ context.Context, userID string) ([]domain.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.LineItem{}, s.carts[userID]...), nil
}

// Clear empties the user's cart. Clearing an absent cart is a no-op.
func (s *CartStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}
