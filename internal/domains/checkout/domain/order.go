package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

// PaymentMethod enumerates the supported payment options at checkout.
type PaymentMethod string

const (
	MethodTelebirr       PaymentMethod = "telebirr"
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// RequiresGateway reports whether the method involves the external payment gateway.
func (m PaymentMethod) RequiresGateway() bool {
	return m == MethodTelebirr
}

// OrderStatus enumerates order fulfilment progression.
type OrderStatus string

const (
	OrderCreated    OrderStatus = "created"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// IsTerminal reports whether no further fulfilment transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// PaymentStatus enumerates the payment side of an order.
type PaymentStatus string

const (
	PaymentNone      PaymentStatus = "none"
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Pricing constants applied at checkout.
const (
	TaxRate               = 0.08
	FreeShippingThreshold = 50.0
	StandardShippingCost  = 4.99
)

var (
	ErrEmptyItems          = errors.New("order requires at least one line item")
	ErrInvalidQuantity     = errors.New("line item quantity must be greater than zero")
	ErrInvalidUnitPrice    = errors.New("line item unit price must not be negative")
	ErrIncompleteAddress   = errors.New("shipping address is incomplete")
	ErrPhoneRequired       = errors.New("phone number is required for gateway payments")
	ErrUnknownMethod       = errors.New("unknown payment method")
	ErrInvalidOrderStatus  = errors.New("order status is invalid")
	ErrStatusTransition    = errors.New("order status transition not allowed")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrTransactionAttached = errors.New("a payment transaction is already attached to this order")
)

// Address holds the shipping (or billing) destination for an order.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
	Phone   string
}

// Validate checks required fields; phone is only mandatory when the payment
// method talks to the gateway.
func (a Address) Validate(requirePhone bool) error {
	for _, field := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if strings.TrimSpace(field) == "" {
			return ErrIncompleteAddress
		}
	}
	if requirePhone && strings.TrimSpace(a.Phone) == "" {
		return ErrPhoneRequired
	}
	return nil
}

// LineItem is one purchased product position, frozen at checkout time.
type LineItem struct {
	ProductID string
	Name      string
	Quantity  int32
	UnitPrice float64
	Color     string
	ImageURL  string
}

// LineTotal returns quantity times unit price at currency precision.
func (i LineItem) LineTotal() float64 {
	return Round2(float64(i.Quantity) * i.UnitPrice)
}

// Order is the checkout aggregate. Totals are derived; they are recomputed
// whenever the line items change and are never assigned from outside.
type Order struct {
	ID              string
	UserID          string
	Items           []LineItem
	ShippingAddress Address
	BillingAddress  Address
	PaymentMethod   PaymentMethod

	Subtotal     float64
	Tax          float64
	ShippingCost float64
	Total        float64

	OrderStatus   OrderStatus
	PaymentStatus PaymentStatus

	TransactionID    string
	PaymentExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder validates the inputs, copies the cart snapshot into the order, and
// computes the totals. Billing defaults to the shipping address.
func NewOrder(userID string, items []LineItem, shipping Address, method PaymentMethod) (*Order, error) {
	switch method {
	case MethodTelebirr, MethodCashOnDelivery:
	default:
		return nil, ErrUnknownMethod
	}
	if err := shipping.Validate(method.RequiresGateway()); err != nil {
		return nil, err
	}
	o := &Order{
		UserID:          userID,
		ShippingAddress: shipping,
		BillingAddress:  shipping,
		PaymentMethod:   method,
		OrderStatus:     OrderCreated,
		PaymentStatus:   PaymentNone,
	}
	if err := o.ReplaceItems(items); err != nil {
		return nil, err
	}
	return o, nil
}

// ReplaceItems swaps the line items and recomputes all totals.
func (o *Order) ReplaceItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if item.UnitPrice < 0 {
			return ErrInvalidUnitPrice
		}
	}
	o.Items = append([]LineItem{}, items...)
	o.recomputeTotals()
	return nil
}

func (o *Order) recomputeTotals() {
	subtotal := 0.0
	for _, item := range o.Items {
		subtotal += float64(item.Quantity) * item.UnitPrice
	}
	o.Subtotal = Round2(subtotal)
	o.Tax = Round2(o.Subtotal * TaxRate)
	if o.Subtotal >= FreeShippingThreshold {
		o.ShippingCost = 0
	} else {
		o.ShippingCost = StandardShippingCost
	}
	o.Total = Round2(o.Subtotal + o.Tax + o.ShippingCost)
}

// MarkPaymentPending flags the order as awaiting a gateway payment.
func (o *Order) MarkPaymentPending() {
	o.PaymentStatus = PaymentPending
}

// AttachTransaction records the gateway transaction. Attaching a second
// transaction while one is outstanding is rejected; the orchestrator must
// resume the existing one instead.
func (o *Order) AttachTransaction(transactionID string, expiresAt *time.Time) error {
	if o.TransactionID != "" && o.PaymentStatus == PaymentPending {
		return ErrTransactionAttached
	}
	o.TransactionID = transactionID
	o.PaymentExpiresAt = expiresAt
	o.PaymentStatus = PaymentPending
	return nil
}

// MarkPaid records a confirmed payment and moves fulfilment forward.
func (o *Order) MarkPaid() {
	o.PaymentStatus = PaymentCompleted
	if o.OrderStatus == OrderCreated {
		o.OrderStatus = OrderProcessing
	}
}

// MarkPaymentFailed records a failed payment. The order itself stays open so a
// later confirmation attempt or customer-service follow-up can still complete it.
func (o *Order) MarkPaymentFailed() {
	o.PaymentStatus = PaymentFailed
}

// Cancel aborts the order before it ships.
func (o *Order) Cancel() error {
	if o.OrderStatus == OrderShipped || o.OrderStatus.IsTerminal() {
		return ErrOrderNotCancellable
	}
	o.OrderStatus = OrderCancelled
	return nil
}

// UpdateStatus applies an admin-driven fulfilment transition.
func (o *Order) UpdateStatus(next OrderStatus) error {
	if !isValidOrderStatus(next) {
		return ErrInvalidOrderStatus
	}
	if o.OrderStatus.IsTerminal() {
		return ErrStatusTransition
	}
	if next == OrderCancelled {
		return o.Cancel()
	}
	allowed := map[OrderStatus]OrderStatus{
		OrderCreated:    OrderProcessing,
		OrderProcessing: OrderShipped,
		OrderShipped:    OrderDelivered,
	}
	if allowed[o.OrderStatus] != next {
		return ErrStatusTransition
	}
	o.OrderStatus = next
	return nil
}

func isValidOrderStatus(status OrderStatus) bool {
	switch status {
	case OrderCreated, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	default:
		return false
	}
}

// Round2 rounds a monetary value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
