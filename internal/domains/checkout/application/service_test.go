package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	checkouttypes "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application/types"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/memory"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

type fakeTrigger struct {
	calls []string
}

func (f *fakeTrigger) ScheduleConfirm(_ context.Context, orderID, transactionID string) error {
	f.calls = append(f.calls, orderID+"/"+transactionID)
	return nil
}

type testHarness struct {
	svc      *Service
	repo     *memory.Repository
	gateway  *memory.Gateway
	cart     *memory.CartStore
	sessions *memory.SessionStore
	trigger  *fakeTrigger
}

func newHarness() *testHarness {
	h := &testHarness{
		repo:     memory.NewRepository(),
		gateway:  memory.NewGateway(),
		cart:     memory.NewCartStore(),
		sessions: memory.NewSessionStore(),
		trigger:  &fakeTrigger{},
	}
	h.svc = NewService(h.repo, h.gateway, h.cart, h.sessions, WithTrigger(h.trigger))
	return h
}

func shippingAddress() checkouttypes.AddressInput {
	return checkouttypes.AddressInput{
		Street:  "22 Bole Road",
		City:    "Addis Ababa",
		State:   "AA",
		ZipCode: "1000",
		Country: "ET",
		Phone:   "+251911000000",
	}
}

func seedCart(h *testHarness, userID string, unitPrice float64) {
	h.cart.Put(userID, []domain.LineItem{
		{ProductID: "p-1", Name: "Wireless Mouse", Quantity: 2, UnitPrice: unitPrice},
	})
}

// placeTelebirr walks a checkout up to the payment-initiating state.
func placeTelebirr(t *testing.T, h *testHarness, userID string) *domain.Order {
	t.Helper()
	seedCart(h, userID, 30)
	result, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
		UserID:          userID,
		ShippingAddress: shippingAddress(),
		PaymentMethod:   string(domain.MethodTelebirr),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatePaymentInitiating, result.State)
	return result.Order
}

func TestPlaceOrder_CashOnDeliveryCompletes(t *testing.T) {
	h := newHarness()
	seedCart(h, "u-1", 12.50)

	result, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
		UserID:          "u-1",
		ShippingAddress: shippingAddress(),
		PaymentMethod:   string(domain.MethodCashOnDelivery),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StateCompleted, result.State)
	require.Equal(t, domain.OrderCreated, result.Order.OrderStatus)
	require.Equal(t, domain.PaymentNone, result.Order.PaymentStatus)

	items, err := h.cart.Read(context.Background(), "u-1")
	require.NoError(t, err)
	require.Empty(t, items, "cart must be cleared on completion")

	session, err := h.sessions.Load(context.Background(), "u-1")
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestPlaceOrder_ComputesTotals(t *testing.T) {
	h := newHarness()
	seedCart(h, "u-1", 10) // subtotal 20, below the free shipping threshold

	result, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
		UserID:          "u-1",
		ShippingAddress: shippingAddress(),
		PaymentMethod:   string(domain.MethodCashOnDelivery),
	})
	require.NoError(t, err)
	require.InDelta(t, 20.0, result.Order.Subtotal, 0.001)
	require.InDelta(t, 1.6, result.Order.Tax, 0.001)
	require.InDelta(t, 4.99, result.Order.ShippingCost, 0.001)
	require.InDelta(t, 26.59, result.Order.Total, 0.001)
}

func TestPlaceOrder_FreeShippingAtThreshold(t *testing.T) {
	h := newHarness()
	seedCart(h, "u-1", 25) // subtotal exactly 50

	result, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
		UserID:          "u-1",
		ShippingAddress: shippingAddress(),
		PaymentMethod:   string(domain.MethodCashOnDelivery),
	})
	require.NoError(t, err)
	require.Zero(t, result.Order.ShippingCost)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	h := newHarness()

	_, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
		UserID:          "u-1",
		ShippingAddress: shippingAddress(),
		PaymentMethod:   string(domain.MethodCashOnDelivery),
	})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, domain.ErrEmptyItems)
}

func TestPlaceOrder_PhoneRequiredForGatewayMethod(t *testing.T) {
	h := newHarness()
	seedCart(h, "u-1", 10)
	addr := shippingAddress()
	addr.Phone = ""

	_, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
		UserID:          "u-1",
		ShippingAddress: addr,
		PaymentMethod:   string(domain.MethodTelebirr),
	})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, domain.ErrPhoneRequired)
}

func TestPlaceOrder_RejectsSecondCheckoutInFlight(t *testing.T) {
	h := newHarness()
	placeTelebirr(t, h, "u-1")
	seedCart(h, "u-1", 10)

	_, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
		UserID:          "u-1",
		ShippingAddress: shippingAddress(),
		PaymentMethod:   string(domain.MethodTelebirr),
	})
	require.ErrorIs(t, err, ErrCheckoutInProgress)
}

func TestInitiatePayment_AttachesTransactionAndSchedulesConfirm(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")

	result, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{
		UserID:  "u-1",
		OrderID: order.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.TransactionID)
	require.NotEmpty(t, result.PaymentURL)
	require.Equal(t, 1, h.gateway.InitiateCalls)
	require.Len(t, h.trigger.calls, 1)

	session, err := h.sessions.Load(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, domain.StatePaymentPending, session.State)
	require.Equal(t, result.TransactionID, session.TransactionID)

	saved, err := h.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, result.TransactionID, saved.TransactionID)
	require.Equal(t, domain.PaymentPending, saved.PaymentStatus)
}

func TestInitiatePayment_SecondCallRejected(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")

	_, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: order.ID})
	require.NoError(t, err)

	_, err = h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: order.ID})
	require.ErrorIs(t, err, ErrAlreadyInitiated)
	require.Equal(t, 1, h.gateway.InitiateCalls, "a second transaction must never be created")
}

func TestInitiatePayment_GatewayFailureStaysRetriable(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")
	h.gateway.InitiateErr = errors.New("gateway unreachable")

	_, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: order.ID})
	require.ErrorIs(t, err, ErrGateway)

	session, err := h.sessions.Load(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatePaymentInitiating, session.State)
	require.Empty(t, session.TransactionID)

	h.gateway.InitiateErr = nil
	result, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: order.ID})
	require.NoError(t, err)
	require.NotEmpty(t, result.TransactionID)
}

func TestInitiatePayment_WithoutActiveCheckout(t *testing.T) {
	h := newHarness()

	_, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: "missing"})
	require.ErrorIs(t, err, ErrNoActiveCheckout)
}

func TestConfirmPayment_SuccessCompletesCheckout(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")
	initiated, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: order.ID})
	require.NoError(t, err)

	result, err := h.svc.ConfirmPayment(context.Background(), checkouttypes.ConfirmPaymentInput{
		UserID:        "u-1",
		OrderID:       order.ID,
		TransactionID: initiated.TransactionID,
		Status:        "success",
	})
	require.NoError(t, err)
	require.Equal(t, order.ID, result.OrderID)
	require.Equal(t, domain.PaymentCompleted, result.PaymentStatus)

	saved, err := h.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentCompleted, saved.PaymentStatus)
	require.Equal(t, domain.OrderProcessing, saved.OrderStatus)

	items, err := h.cart.Read(context.Background(), "u-1")
	require.NoError(t, err)
	require.Empty(t, items)

	session, err := h.sessions.Load(context.Background(), "u-1")
	require.NoError(t, err)
	require.Nil(t, session)

	tx := h.gateway.Transaction(initiated.TransactionID)
	require.NotNil(t, tx)
	require.Equal(t, domain.TransactionConfirmed, tx.Status)
}

func TestConfirmPayment_TransientFailureThenRetry(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")
	initiated, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: order.ID})
	require.NoError(t, err)

	h.gateway.ConfirmErr = errors.New("timeout")
	_, err = h.svc.ConfirmPayment(context.Background(), checkouttypes.ConfirmPaymentInput{UserID: "u-1", OrderID: order.ID})
	require.ErrorIs(t, err, ErrConfirmation)

	session, err := h.sessions.Load(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatePaymentPending, session.State)
	require.Equal(t, initiated.TransactionID, session.TransactionID, "retry must reuse the transaction")

	h.gateway.ConfirmErr = nil
	result, err := h.svc.ConfirmPayment(context.Background(), checkouttypes.ConfirmPaymentInput{UserID: "u-1", OrderID: order.ID})
	require.NoError(t, err)
	require.Equal(t, domain.PaymentCompleted, result.PaymentStatus)
	require.Equal(t, 1, h.gateway.InitiateCalls, "initiation must not repeat across confirm retries")
}

func TestConfirmPayment_DeclinedReturnsToPending(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")
	_, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: order.ID})
	require.NoError(t, err)

	_, err = h.svc.ConfirmPayment(context.Background(), checkouttypes.ConfirmPaymentInput{
		UserID:  "u-1",
		OrderID: order.ID,
		Status:  "failed",
	})
	require.ErrorIs(t, err, ErrConfirmation)
	require.ErrorIs(t, err, ports.ErrPaymentDeclined)

	session, err := h.sessions.Load(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatePaymentPending, session.State)

	items, err := h.cart.Read(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotEmpty(t, items, "cart must survive a failed payment")
}

func TestConfirmPayment_MismatchedTransaction(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")
	_, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: order.ID})
	require.NoError(t, err)

	_, err = h.svc.ConfirmPayment(context.Background(), checkouttypes.ConfirmPaymentInput{
		UserID:        "u-1",
		OrderID:       order.ID,
		TransactionID: "someone-elses-transaction",
	})
	require.ErrorIs(t, err, ErrConfirmation)
}

func TestResumeIfPending_SchedulesConfirmOnce(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")
	initiated, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: order.ID})
	require.NoError(t, err)
	require.Len(t, h.trigger.calls, 1)

	first, err := h.svc.ResumeIfPending(context.Background(), "u-1")
	require.NoError(t, err)
	require.True(t, first.Resumed)
	require.Equal(t, initiated.TransactionID, first.TransactionID)
	require.Equal(t, domain.StatePaymentPending, first.State)

	second, err := h.svc.ResumeIfPending(context.Background(), "u-1")
	require.NoError(t, err)
	require.True(t, second.Resumed)

	require.Len(t, h.trigger.calls, 1, "resume must not schedule a second confirmation")
	require.Equal(t, 1, h.gateway.InitiateCalls, "resume must never re-initiate")
}

func TestResumeIfPending_RecoversFromMidConfirmCrash(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")
	initiated, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: order.ID})
	require.NoError(t, err)

	// Simulate a crash after entering the confirming state.
	session, err := h.sessions.Load(context.Background(), "u-1")
	require.NoError(t, err)
	session.State = domain.StatePaymentConfirming
	require.NoError(t, h.sessions.Save(context.Background(), *session))

	resumed, err := h.svc.ResumeIfPending(context.Background(), "u-1")
	require.NoError(t, err)
	require.True(t, resumed.Resumed)
	require.Equal(t, domain.StatePaymentPending, resumed.State)
	require.Equal(t, initiated.TransactionID, resumed.TransactionID)
}

func TestResumeIfPending_NothingToResume(t *testing.T) {
	h := newHarness()

	result, err := h.svc.ResumeIfPending(context.Background(), "u-1")
	require.NoError(t, err)
	require.False(t, result.Resumed)
	require.Equal(t, domain.StateIdle, result.State)
}

func TestCancelCheckout_PendingPaymentNeedsConfirmation(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")
	_, err := h.svc.InitiatePayment(context.Background(), checkouttypes.InitiatePaymentInput{UserID: "u-1", OrderID: order.ID})
	require.NoError(t, err)

	err = h.svc.CancelCheckout(context.Background(), checkouttypes.CancelCheckoutInput{UserID: "u-1"})
	require.ErrorIs(t, err, ErrCancelNeedsConfirmation)

	err = h.svc.CancelCheckout(context.Background(), checkouttypes.CancelCheckoutInput{UserID: "u-1", Confirmed: true})
	require.NoError(t, err)

	session, err := h.sessions.Load(context.Background(), "u-1")
	require.NoError(t, err)
	require.Nil(t, session)

	// The order itself survives the discarded session.
	saved, err := h.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPending, saved.PaymentStatus)
}

func TestCancelCheckout_NoSessionIsNoop(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.svc.CancelCheckout(context.Background(), checkouttypes.CancelCheckoutInput{UserID: "u-1"}))
}

func TestGetOrder_EnforcesOwnership(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")

	_, err := h.svc.GetOrder(context.Background(), checkouttypes.GetOrderInput{UserID: "u-2", OrderID: order.ID})
	require.ErrorIs(t, err, ErrForbidden)

	got, err := h.svc.GetOrder(context.Background(), checkouttypes.GetOrderInput{UserID: "u-1", OrderID: order.ID})
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)
}

func TestGetOrder_NotFound(t *testing.T) {
	h := newHarness()

	_, err := h.svc.GetOrder(context.Background(), checkouttypes.GetOrderInput{UserID: "u-1", OrderID: "missing"})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListUserOrders_Paginates(t *testing.T) {
	h := newHarness()
	for i := 0; i < 3; i++ {
		seedCart(h, "u-1", 10)
		_, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
			UserID:          "u-1",
			ShippingAddress: shippingAddress(),
			PaymentMethod:   string(domain.MethodCashOnDelivery),
		})
		require.NoError(t, err)
	}
	seedCart(h, "u-2", 10)
	_, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
		UserID:          "u-2",
		ShippingAddress: shippingAddress(),
		PaymentMethod:   string(domain.MethodCashOnDelivery),
	})
	require.NoError(t, err)

	page, err := h.svc.ListUserOrders(context.Background(), checkouttypes.ListUserOrdersInput{UserID: "u-1", Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.Equal(t, int64(3), page.Pagination.TotalOrders)
	require.Equal(t, 2, page.Pagination.TotalPages)

	page, err = h.svc.ListUserOrders(context.Background(), checkouttypes.ListUserOrdersInput{UserID: "u-1", Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
}

func TestListAllOrders_FiltersByPaymentStatus(t *testing.T) {
	h := newHarness()
	order := placeTelebirr(t, h, "u-1")
	seedCart(h, "u-2", 10)
	_, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
		UserID:          "u-2",
		ShippingAddress: shippingAddress(),
		PaymentMethod:   string(domain.MethodCashOnDelivery),
	})
	require.NoError(t, err)

	page, err := h.svc.ListAllOrders(context.Background(), checkouttypes.ListAllOrdersInput{
		Page:          1,
		Limit:         10,
		PaymentStatus: string(domain.PaymentPending),
	})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	require.Equal(t, order.ID, page.Orders[0].ID)
}

func TestCancelOrder_BlockedAfterShipping(t *testing.T) {
	h := newHarness()
	seedCart(h, "u-1", 10)
	placed, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
		UserID:          "u-1",
		ShippingAddress: shippingAddress(),
		PaymentMethod:   string(domain.MethodCashOnDelivery),
	})
	require.NoError(t, err)

	for _, status := range []string{"processing", "shipped"} {
		_, err = h.svc.UpdateOrderStatus(context.Background(), checkouttypes.UpdateOrderStatusInput{OrderID: placed.Order.ID, Status: status})
		require.NoError(t, err)
	}

	_, err = h.svc.CancelOrder(context.Background(), checkouttypes.CancelOrderInput{UserID: "u-1", OrderID: placed.Order.ID})
	require.ErrorIs(t, err, domain.ErrOrderNotCancellable)
}

func TestUpdateOrderStatus_RejectsSkippedStage(t *testing.T) {
	h := newHarness()
	seedCart(h, "u-1", 10)
	placed, err := h.svc.PlaceOrder(context.Background(), checkouttypes.PlaceOrderInput{
		UserID:          "u-1",
		ShippingAddress: shippingAddress(),
		PaymentMethod:   string(domain.MethodCashOnDelivery),
	})
	require.NoError(t, err)

	_, err = h.svc.UpdateOrderStatus(context.Background(), checkouttypes.UpdateOrderStatusInput{OrderID: placed.Order.ID, Status: "delivered"})
	require.ErrorIs(t, err, domain.ErrStatusTransition)
}
