package checkout

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application"
	checkouttypes "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application/types"
	checkoutports "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

const (
	// ConfirmPaymentActivityName settles a pending gateway transaction.
	ConfirmPaymentActivityName = "checkout.activities.ConfirmPayment"
)

// ConfirmPaymentInput identifies the transaction to settle.
type ConfirmPaymentInput struct {
	OrderID       string
	TransactionID string
}

// Activities groups activities operating on the checkout bounded context.
type Activities struct {
	service checkoutports.Service
	repo    checkoutports.Repository
}

// NewActivities wires the checkout collaborators into the Temporal activities bundle.
func NewActivities(service checkoutports.Service, repo checkoutports.Repository) *Activities {
	return &Activities{service: service, repo: repo}
}

// ConfirmPayment resolves the order's owner and drives the confirmation flow.
// A checkout that already completed or was discarded is reported as done, not
// retried, so replayed workflow tasks never double-confirm.
func (a *Activities) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*checkouttypes.ConfirmPaymentResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil || a.repo == nil {
		logger.Error("payment confirm activity not initialized", "orderId", input.OrderID)
		return nil, errors.New("payment confirm activity not initialized")
	}
	logger.Info("ConfirmPayment activity started", "orderId", input.OrderID)

	order, err := a.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, checkoutports.ErrNotFound) {
			return nil, temporal.NewNonRetryableApplicationError("order not found", "OrderNotFound", err)
		}
		return nil, err
	}

	result, err := a.service.ConfirmPayment(ctx, checkouttypes.ConfirmPaymentInput{
		UserID:        order.UserID,
		OrderID:       input.OrderID,
		TransactionID: input.TransactionID,
		Status:        "success",
	})
	if err != nil {
		if errors.Is(err, application.ErrNoActiveCheckout) {
			// Completed over HTTP first, or the user discarded the checkout.
			logger.Info("no active checkout; nothing to confirm", "orderId", input.OrderID)
			return &checkouttypes.ConfirmPaymentResult{OrderID: input.OrderID, PaymentStatus: order.PaymentStatus}, nil
		}
		logger.Error("ConfirmPayment activity failed", "orderId", input.OrderID, "error", err)
		return nil, err
	}
	logger.Info("ConfirmPayment activity completed", "orderId", result.OrderID, "paymentStatus", string(result.PaymentStatus))
	return result, nil
}
