package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

var _ ports.PaymentGateway = (*Gateway)(nil)

// Gateway simulates the payment provider for development and tests. It tracks
// every issued transaction so a confirm for an unknown or already settled
// transaction fails the same way the real provider would.
type Gateway struct {
	mu           sync.Mutex
	transactions map[string]*domain.PaymentTransaction
	now          func() time.Time

	// Failure injection for tests.
	InitiateErr error
	ConfirmErr  error

	InitiateCalls int
	ConfirmCalls  int

	// PaymentWindow bounds how long an initiated transaction stays payable.
	PaymentWindow time.Duration
}

func NewGateway() *Gateway {
	return &Gateway{
		transactions:  map[string]*domain.PaymentTransaction{},
		now:           time.Now,
		PaymentWindow: 15 * time.Minute,
	}
}

// WithClock overrides the time source for deterministic testing.
func (g *Gateway) WithClock(now func() time.Time) {
	if now != nil {
		g.now = now
	}
}

func (g *Gateway) Initiate(_ context.Context, req ports.InitiateRequest) (*ports.InitiateResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.InitiateCalls++
	if g.InitiateErr != nil {
		return nil, g.InitiateErr
	}
	tx := domain.NewPaymentTransaction(uuid.NewString(), req.OrderID, g.now().Add(g.PaymentWindow))
	g.transactions[tx.ID] = tx
	return &ports.InitiateResult{
		TransactionID: tx.ID,
		PaymentURL:    "https://pay.example.test/" + tx.ID,
		ExpiresAt:     tx.ExpiresAt,
	}, nil
}

func (g *Gateway) Confirm(_ context.Context, req ports.ConfirmRequest) (*ports.ConfirmResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ConfirmCalls++
	if g.ConfirmErr != nil {
		return nil, g.ConfirmErr
	}
	tx, ok := g.transactions[req.TransactionID]
	if !ok {
		return nil, errors.New("unknown transaction")
	}
	confirmed := req.Status == "" || req.Status == "success"
	if err := tx.Settle(confirmed); err != nil {
		return nil, err
	}
	status := string(domain.PaymentCompleted)
	if !confirmed {
		status = string(domain.PaymentFailed)
	}
	return &ports.ConfirmResult{OrderID: tx.OrderID, PaymentStatus: status}, nil
}

// Transaction exposes the simulated transaction state for assertions.
func (g *Gateway) Transaction(id string) *domain.PaymentTransaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	tx, ok := g.transactions[id]
	if !ok {
		return nil
	}
	copy := *tx
	return &copy
}
