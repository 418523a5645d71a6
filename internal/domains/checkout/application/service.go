package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	checkouttypes "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application/types"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

// Service is the checkout orchestrator. It owns the current-checkout session
// exclusively: every state transition is written to the session store so a
// reload resumes at the right step, and the cart is cleared exactly once, on
// reaching the completed state.
type Service struct {
	repo     ports.Repository
	gateway  ports.PaymentGateway
	cart     ports.CartStore
	sessions ports.SessionStore
	trigger  ports.ConfirmationTrigger
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	scheduled map[string]bool // order id -> confirmation already scheduled
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithTrigger installs the confirmation trigger fired after initiation/resume.
func WithTrigger(trigger ports.ConfirmationTrigger) Option {
	return func(s *Service) { s.trigger = trigger }
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// SetTrigger installs the confirmation trigger after construction. The timer
// trigger needs the fully decorated service, which does not exist yet when the
// core service is built, so wiring closes the loop through this setter.
func (s *Service) SetTrigger(trigger ports.ConfirmationTrigger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trigger = trigger
}

// NewService wires the orchestrator with its collaborators.
func NewService(repo ports.Repository, gateway ports.PaymentGateway, cart ports.CartStore, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		gateway:   gateway,
		cart:      cart,
		sessions:  sessions,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		scheduled: map[string]bool{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder validates the checkout input, snapshots the cart, and creates the
// order. Cash-on-delivery completes immediately; gateway methods leave the
// checkout in the payment-initiating state.
func (s *Service) PlaceOrder(ctx context.Context, input checkouttypes.PlaceOrderInput) (*checkouttypes.PlaceOrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.sessions.Load(ctx, input.UserID)
	if err != nil {
		return nil, repositoryErr(err)
	}
	if existing != nil && !existing.State.IsTerminal() && existing.State != domain.StateIdle {
		return nil, ErrCheckoutInProgress
	}

	method := domain.PaymentMethod(input.PaymentMethod)
	state := domain.StateValidating
	if err := input.ShippingAddress.ToDomain().Validate(method.RequiresGateway()); err != nil {
		return nil, mapDomainError(err)
	}

	items, err := s.cart.Read(ctx, input.UserID)
	if err != nil {
		return nil, repositoryErr(err)
	}
	if len(items) == 0 {
		return nil, validationErr(domain.ErrEmptyItems)
	}

	order, err := domain.NewOrder(input.UserID, items, input.ShippingAddress.ToDomain(), method)
	if err != nil {
		return nil, mapDomainError(err)
	}

	state, _ = state.Transition(domain.StateOrderCreating)
	if err := s.persist(ctx, input.UserID, state, order); err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		// Terminal for this attempt: no order exists, so the session is
		// discarded and the user restarts checkout.
		_ = s.sessions.Delete(ctx, input.UserID)
		return nil, repositoryErr(err)
	}

	if !method.RequiresGateway() {
		state, _ = state.Transition(domain.StateCompleted)
		if err := s.cart.Clear(ctx, input.UserID); err != nil {
			return nil, repositoryErr(err)
		}
		if err := s.sessions.Delete(ctx, input.UserID); err != nil {
			return nil, repositoryErr(err)
		}
		return &checkouttypes.PlaceOrderResult{Order: saved, State: state}, nil
	}

	saved.MarkPaymentPending()
	if _, err := s.repo.Save(ctx, saved); err != nil {
		return nil, repositoryErr(err)
	}
	state, _ = state.Transition(domain.StatePaymentInitiating)
	if err := s.persist(ctx, input.UserID, state, saved); err != nil {
		return nil, err
	}
	return &checkouttypes.PlaceOrderResult{Order: saved, State: state}, nil
}

// InitiatePayment starts the gateway transaction for the active checkout.
// The session state is the re-entrancy guard: initiation is only reachable
// from the payment-initiating state and only while no transaction id exists,
// so a reload or redundant trigger can never create a second transaction.
func (s *Service) InitiatePayment(ctx context.Context, input checkouttypes.InitiatePaymentInput) (*checkouttypes.InitiatePaymentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.activeSession(ctx, input.UserID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if session.TransactionID != "" {
		return nil, ErrAlreadyInitiated
	}
	if session.State != domain.StatePaymentInitiating {
		return nil, validationErr(domain.ErrInvalidTransition)
	}

	order, err := s.repo.GetByID(ctx, session.OrderID)
	if err != nil {
		return nil, repositoryErr(err)
	}

	result, err := s.gateway.Initiate(ctx, ports.InitiateRequest{
		OrderID: order.ID,
		Amount:  order.Total,
		Phone:   order.ShippingAddress.Phone,
	})
	if err != nil {
		// The order stays pending; the session remains in payment-initiating
		// so the user can retry without creating a dangling transaction.
		return nil, gatewayErr(err)
	}
	if result == nil || strings.TrimSpace(result.TransactionID) == "" {
		return nil, gatewayErr(ports.ErrNoTransactionID)
	}

	tx := domain.NewPaymentTransaction(result.TransactionID, order.ID, result.ExpiresAt)
	expiry := tx.ExpiresAt
	if err := order.AttachTransaction(tx.ID, &expiry); err != nil {
		return nil, mapDomainError(err)
	}
	if _, err := s.repo.Save(ctx, order); err != nil {
		return nil, repositoryErr(err)
	}

	state, _ := session.State.Transition(domain.StatePaymentPending)
	session.State = state
	session.TransactionID = tx.ID
	session.PaymentURL = result.PaymentURL
	session.PaymentExpiresAt = &expiry
	session.PaymentStatus = domain.PaymentPending
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, *session); err != nil {
		return nil, repositoryErr(err)
	}

	s.scheduleConfirm(ctx, order.ID, tx.ID)

	return &checkouttypes.InitiatePaymentResult{
		OrderID:       order.ID,
		TransactionID: tx.ID,
		PaymentURL:    result.PaymentURL,
		ExpiresAt:     result.ExpiresAt,
	}, nil
}

// ConfirmPayment settles the pending transaction. On success the cart is
// cleared and the checkout completes; on failure the checkout returns to
// payment-pending so confirmation can be retried without re-initiating.
func (s *Service) ConfirmPayment(ctx context.Context, input checkouttypes.ConfirmPaymentInput) (*checkouttypes.ConfirmPaymentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.activeSession(ctx, input.UserID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if session.TransactionID == "" || (input.TransactionID != "" && input.TransactionID != session.TransactionID) {
		return nil, confirmationErr(ErrNoActiveCheckout)
	}
	if session.State != domain.StatePaymentPending {
		return nil, confirmationErr(domain.ErrInvalidTransition)
	}

	state, _ := session.State.Transition(domain.StatePaymentConfirming)
	session.State = state
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, *session); err != nil {
		return nil, repositoryErr(err)
	}

	status := input.Status
	if status == "" {
		status = "success"
	}
	result, err := s.gateway.Confirm(ctx, ports.ConfirmRequest{
		TransactionID: session.TransactionID,
		Status:        status,
		Data:          input.Data,
	})
	if err != nil || result == nil || result.PaymentStatus != string(domain.PaymentCompleted) {
		// Roll back to payment-pending: the transaction id is kept so a retry
		// confirms the existing transaction instead of starting another.
		session.State, _ = state.Transition(domain.StatePaymentPending)
		session.UpdatedAt = s.now()
		if saveErr := s.sessions.Save(ctx, *session); saveErr != nil {
			return nil, repositoryErr(saveErr)
		}
		if err == nil {
			err = ports.ErrPaymentDeclined
		}
		return nil, confirmationErr(err)
	}

	order, err := s.repo.GetByID(ctx, session.OrderID)
	if err != nil {
		return nil, repositoryErr(err)
	}
	order.MarkPaid()
	if _, err := s.repo.Save(ctx, order); err != nil {
		return nil, repositoryErr(err)
	}

	if err := s.cart.Clear(ctx, session.UserID); err != nil {
		return nil, repositoryErr(err)
	}
	if err := s.sessions.Delete(ctx, session.UserID); err != nil {
		return nil, repositoryErr(err)
	}
	delete(s.scheduled, session.OrderID)

	return &checkouttypes.ConfirmPaymentResult{
		OrderID:       session.OrderID,
		PaymentStatus: domain.PaymentCompleted,
	}, nil
}

// CancelCheckout discards the active checkout session. While a payment is
// pending the caller must confirm: the gateway transaction cannot be
// retracted, so the order stays pending in the repository and a later resume
// or webhook can still complete it.
func (s *Service) CancelCheckout(ctx context.Context, input checkouttypes.CancelCheckoutInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Load(ctx, input.UserID)
	if err != nil {
		return repositoryErr(err)
	}
	if session == nil {
		return nil
	}
	if session.State == domain.StatePaymentPending && !input.Confirmed {
		return ErrCancelNeedsConfirmation
	}
	if err := s.sessions.Delete(ctx, input.UserID); err != nil {
		return repositoryErr(err)
	}
	delete(s.scheduled, session.OrderID)
	return nil
}

// ResumeIfPending re-enters a persisted pending checkout after a reload. When
// a transaction id already exists the flow branches straight to confirmation;
// initiation is never repeated. Calling this twice schedules at most one
// confirmation.
func (s *Service) ResumeIfPending(ctx context.Context, userID string) (*checkouttypes.ResumeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, repositoryErr(err)
	}
	if session == nil || session.PaymentStatus != domain.PaymentPending || session.TransactionID == "" {
		return &checkouttypes.ResumeResult{Resumed: false, State: domain.StateIdle}, nil
	}

	if session.State != domain.StatePaymentPending {
		// A crash mid-initiation or mid-confirmation lands back in
		// payment-pending; the stored transaction id is the source of truth.
		session.State = domain.StatePaymentPending
		session.UpdatedAt = s.now()
		if err := s.sessions.Save(ctx, *session); err != nil {
			return nil, repositoryErr(err)
		}
	}

	s.scheduleConfirm(ctx, session.OrderID, session.TransactionID)

	return &checkouttypes.ResumeResult{
		Resumed:       true,
		OrderID:       session.OrderID,
		TransactionID: session.TransactionID,
		State:         session.State,
	}, nil
}

// GetOrder loads one order, enforcing ownership when a user id is supplied.
func (s *Service) GetOrder(ctx context.Context, input checkouttypes.GetOrderInput) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, err
		}
		return nil, repositoryErr(err)
	}
	if input.UserID != "" && order.UserID != input.UserID {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListUserOrders pages through the user's order history.
func (s *Service) ListUserOrders(ctx context.Context, input checkouttypes.ListUserOrdersInput) (*checkouttypes.OrdersPage, error) {
	query := normalizeQuery(input.Page, input.Limit, 10)
	query.Status = domain.OrderStatus(input.Status)
	orders, total, err := s.repo.ListByUser(ctx, input.UserID, query)
	if err != nil {
		return nil, repositoryErr(err)
	}
	return pageOf(orders, total, query), nil
}

// ListAllOrders pages through every order with optional filters (admin path).
func (s *Service) ListAllOrders(ctx context.Context, input checkouttypes.ListAllOrdersInput) (*checkouttypes.OrdersPage, error) {
	query := normalizeQuery(input.Page, input.Limit, 20)
	query.Status = domain.OrderStatus(input.Status)
	query.PaymentStatus = domain.PaymentStatus(input.PaymentStatus)
	orders, total, err := s.repo.ListAll(ctx, query)
	if err != nil {
		return nil, repositoryErr(err)
	}
	return pageOf(orders, total, query), nil
}

// CancelOrder aborts a placed order on behalf of its owner.
func (s *Service) CancelOrder(ctx context.Context, input checkouttypes.CancelOrderInput) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, checkouttypes.GetOrderInput{UserID: input.UserID, OrderID: input.OrderID})
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(); err != nil {
		return nil, mapDomainError(err)
	}
	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, repositoryErr(err)
	}
	return saved, nil
}

// UpdateOrderStatus applies an admin fulfilment transition.
func (s *Service) UpdateOrderStatus(ctx context.Context, input checkouttypes.UpdateOrderStatusInput) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, err
		}
		return nil, repositoryErr(err)
	}
	if err := order.UpdateStatus(domain.OrderStatus(input.Status)); err != nil {
		return nil, mapDomainError(err)
	}
	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, repositoryErr(err)
	}
	return saved, nil
}

// activeSession loads the session and checks it matches the requested order.
func (s *Service) activeSession(ctx context.Context, userID, orderID string) (*ports.CheckoutSession, error) {
	session, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, repositoryErr(err)
	}
	if session == nil || session.OrderID == "" {
		return nil, ErrNoActiveCheckout
	}
	if orderID != "" && session.OrderID != orderID {
		return nil, ErrNoActiveCheckout
	}
	return session, nil
}

// persist writes the session snapshot for the given transition.
func (s *Service) persist(ctx context.Context, userID string, state domain.State, order *domain.Order) error {
	session := ports.CheckoutSession{
		UserID:        userID,
		State:         state,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		OrderID:       order.ID,
		TransactionID: order.TransactionID,
		UpdatedAt:     s.now(),
	}
	if order.PaymentExpiresAt != nil {
		session.PaymentExpiresAt = order.PaymentExpiresAt
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return repositoryErr(err)
	}
	return nil
}

// scheduleConfirm fires the confirmation trigger at most once per order.
func (s *Service) scheduleConfirm(ctx context.Context, orderID, transactionID string) {
	if s.trigger == nil || s.scheduled[orderID] {
		return
	}
	s.scheduled[orderID] = true
	if err := s.trigger.ScheduleConfirm(ctx, orderID, transactionID); err != nil {
		// Initiation already succeeded; confirmation can still arrive manually.
		s.logger.Warn("failed to schedule payment confirmation",
			slog.String("order.id", orderID), slog.String("error", err.Error()))
	}
}

func normalizeQuery(page, limit, defaultLimit int) ports.OrderQuery {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return ports.OrderQuery{Page: page, Limit: limit}
}

func pageOf(orders []*domain.Order, total int64, query ports.OrderQuery) *checkouttypes.OrdersPage {
	totalPages := int((total + int64(query.Limit) - 1) / int64(query.Limit))
	if totalPages < 1 {
		totalPages = 1
	}
	return &checkouttypes.OrdersPage{
		Orders: orders,
		Pagination: checkouttypes.Pagination{
			CurrentPage: query.Page,
			TotalPages:  totalPages,
			TotalOrders: total,
		},
	}
}

var _ ports.Service = (*Service)(nil)
