package checkout

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	checkoutactivities "github.com/19jem-ila/ecommerce-checkout/internal/platform/temporal/activities/checkout"
	checkouttypes "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application/types"
)

const (
	// PaymentCollectionWorkflowName is the public identifier for registering the workflow.
	PaymentCollectionWorkflowName = "checkout.workflows.PaymentCollection"
	// PaymentCollectionTaskQueue is the queue consumed by the worker processing payment workflows.
	PaymentCollectionTaskQueue = "PAYMENT_COLLECTION"

	// DefaultConfirmDelay is how long the workflow waits before polling the
	// gateway for the transaction outcome.
	DefaultConfirmDelay = 3 * time.Second
)

// PaymentCollectionWorkflowInput identifies the pending transaction to settle.
type PaymentCollectionWorkflowInput struct {
	OrderID       string
	TransactionID string
	Delay         time.Duration
	TraceID       string
}

// PaymentCollectionWorkflow waits out the payment window and then drives the
// confirmation activity until the transaction settles or retries exhaust.
func PaymentCollectionWorkflow(ctx workflow.Context, input PaymentCollectionWorkflowInput) (*checkouttypes.ConfirmPaymentResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("PaymentCollectionWorkflow started", withTraceID(input.TraceID, "orderId", input.OrderID, "transactionId", input.TransactionID)...)

	delay := input.Delay
	if delay <= 0 {
		delay = DefaultConfirmDelay
	}
	if err := workflow.Sleep(ctx, delay); err != nil {
		return nil, err
	}

	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result checkouttypes.ConfirmPaymentResult
	err := workflow.ExecuteActivity(ctx, checkoutactivities.ConfirmPaymentActivityName, checkoutactivities.ConfirmPaymentInput{
		OrderID:       input.OrderID,
		TransactionID: input.TransactionID,
	}).Get(ctx, &result)
	if err != nil {
		logger.Error("PaymentCollectionWorkflow failed", withTraceID(input.TraceID, "orderId", input.OrderID, "error", err)...)
		return nil, err
	}
	logger.Info("PaymentCollectionWorkflow completed", withTraceID(input.TraceID, "orderId", result.OrderID, "paymentStatus", string(result.PaymentStatus))...)
	return &result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
