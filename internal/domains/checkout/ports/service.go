package ports

import (
	"context"

	checkouttypes "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application/types"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
)

// Service defines the checkout use cases exposed to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input checkouttypes.PlaceOrderInput) (*checkouttypes.PlaceOrderResult, error)
	InitiatePayment(ctx context.Context, input checkouttypes.InitiatePaymentInput) (*checkouttypes.InitiatePaymentResult, error)
	ConfirmPayment(ctx context.Context, input checkouttypes.ConfirmPaymentInput) (*checkouttypes.ConfirmPaymentResult, error)
	CancelCheckout(ctx context.Context, input checkouttypes.CancelCheckoutInput) error
	ResumeIfPending(ctx context.Context, userID string) (*checkouttypes.ResumeResult, error)

	GetOrder(ctx context.Context, input checkouttypes.GetOrderInput) (*domain.Order, error)
	ListUserOrders(ctx context.Context, input checkouttypes.ListUserOrdersInput) (*checkouttypes.OrdersPage, error)
	ListAllOrders(ctx context.Context, input checkouttypes.ListAllOrdersInput) (*checkouttypes.OrdersPage, error)
	CancelOrder(ctx context.Context, input checkouttypes.CancelOrderInput) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, input checkouttypes.UpdateOrderStatusInput) (*domain.Order, error)
}
