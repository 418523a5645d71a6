package types

import (
	"time"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
)

// AddressInput carries the shipping destination submitted at checkout.
type AddressInput struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
	Phone   string
}

// ToDomain maps the input onto the domain address value.
func (a AddressInput) ToDomain() domain.Address {
	return domain.Address{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
		Phone:   a.Phone,
	}
}

// PlaceOrderInput starts a checkout for the user's current cart.
type PlaceOrderInput struct {
	UserID          string
	ShippingAddress AddressInput
	PaymentMethod   string
}

// PlaceOrderResult reports the created order and where the checkout stands.
type PlaceOrderResult struct {
	Order *domain.Order
	State domain.State
}

// InitiatePaymentInput requests a gateway transaction for the active checkout.
type InitiatePaymentInput struct {
	UserID  string
	OrderID string
}

// InitiatePaymentResult carries the gateway handles for the pending payment.
type InitiatePaymentResult struct {
	OrderID       string
	TransactionID string
	PaymentURL    string
	ExpiresAt     time.Time
}

// ConfirmPaymentInput reports a gateway outcome for the active checkout.
type ConfirmPaymentInput struct {
	UserID        string
	OrderID       string
	TransactionID string
	Status        string
	Data          map[string]string
}

// ConfirmPaymentResult signals completion; OrderID feeds the navigation signal.
type ConfirmPaymentResult struct {
	OrderID       string
	PaymentStatus domain.PaymentStatus
}

// CancelCheckoutInput discards the active checkout. Confirmed must be set when
// a gateway transaction may be mid-flight.
type CancelCheckoutInput struct {
	UserID    string
	Confirmed bool
}

// ResumeResult reports whether a persisted pending checkout was re-entered.
type ResumeResult struct {
	Resumed       bool
	OrderID       string
	TransactionID string
	State         domain.State
}

// GetOrderInput fetches one order on behalf of its owner.
type GetOrderInput struct {
	UserID  string
	OrderID string
}

// ListUserOrdersInput pages through a user's order history.
type ListUserOrdersInput struct {
	UserID string
	Page   int
	Limit  int
	Status string
}

// ListAllOrdersInput pages through every order (admin path).
type ListAllOrdersInput struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
}

// Pagination describes the window returned by a listing.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalOrders int64
}

// OrdersPage is one page of orders plus its pagination envelope.
type OrdersPage struct {
	Orders     []*domain.Order
	Pagination Pagination
}

// CancelOrderInput cancels a placed order on behalf of its owner.
type CancelOrderInput struct {
	UserID  string
	OrderID string
}

// UpdateOrderStatusInput applies an admin fulfilment transition.
type UpdateOrderStatusInput struct {
	OrderID string
	Status  string
}
