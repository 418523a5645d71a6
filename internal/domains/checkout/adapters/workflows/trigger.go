package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	checkouttypes "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application/types"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
	checkoutworkflows "github.com/19jem-ila/ecommerce-checkout/internal/platform/temporal/workflows/checkout"
)

var (
	_ ports.ConfirmationTrigger = (*TemporalTrigger)(nil)
	_ ports.ConfirmationTrigger = (*TimerTrigger)(nil)
	_ ports.ConfirmationTrigger = (*ManualTrigger)(nil)
)

// TemporalTrigger starts the payment collection workflow on a Temporal
// cluster. The workflow id is derived from the order id, so scheduling the
// same order twice collapses onto one running workflow.
type TemporalTrigger struct {
	client    client.Client
	taskQueue string
	delay     time.Duration
}

// NewTemporalTrigger wires a Temporal client into the trigger.
func NewTemporalTrigger(c client.Client, delay time.Duration) *TemporalTrigger {
	if delay <= 0 {
		delay = checkoutworkflows.DefaultConfirmDelay
	}
	return &TemporalTrigger{client: c, taskQueue: checkoutworkflows.PaymentCollectionTaskQueue, delay: delay}
}

// ScheduleConfirm starts the collection workflow without waiting for it.
func (t *TemporalTrigger) ScheduleConfirm(ctx context.Context, orderID, transactionID string) error {
	if t == nil || t.client == nil {
		return errors.New("temporal confirmation trigger not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("payment-collection-%s", orderID),
		TaskQueue: t.taskQueue,
	}
	_, err := t.client.ExecuteWorkflow(
		ctx,
		options,
		checkoutworkflows.PaymentCollectionWorkflow,
		checkoutworkflows.PaymentCollectionWorkflowInput{
			OrderID:       orderID,
			TransactionID: transactionID,
			Delay:         t.delay,
			TraceID:       triggerTraceID(ctx),
		},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			// A confirmation is already in flight for this order.
			return nil
		}
		return err
	}
	return nil
}

// TimerTrigger confirms the payment after a fixed delay in-process. It is the
// development fallback when no Temporal cluster is reachable; a process crash
// loses the timer, which the resume path compensates for.
type TimerTrigger struct {
	service ports.Service
	repo    ports.Repository
	delay   time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	scheduled map[string]bool
}

// NewTimerTrigger wires the in-process trigger. The service must be the fully
// decorated checkout service so confirmations show up in traces and logs.
func NewTimerTrigger(service ports.Service, repo ports.Repository, delay time.Duration, logger *slog.Logger) *TimerTrigger {
	if delay <= 0 {
		delay = checkoutworkflows.DefaultConfirmDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TimerTrigger{
		service:   service,
		repo:      repo,
		delay:     delay,
		logger:    logger,
		scheduled: map[string]bool{},
	}
}

// ScheduleConfirm arms a one-shot timer per order.
func (t *TimerTrigger) ScheduleConfirm(_ context.Context, orderID, transactionID string) error {
	if t == nil || t.service == nil || t.repo == nil {
		return errors.New("timer confirmation trigger not configured")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.scheduled[orderID] {
		return nil
	}
	t.scheduled[orderID] = true

	time.AfterFunc(t.delay, func() {
		// Detached from the request context: the HTTP call that armed the
		// timer has long since returned.
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		order, err := t.repo.GetByID(ctx, orderID)
		if err != nil {
			t.logger.Warn("timer confirm could not load order", slog.String("order.id", orderID), slog.String("error", err.Error()))
			return
		}
		if _, err := t.service.ConfirmPayment(ctx, checkouttypes.ConfirmPaymentInput{
			UserID:        order.UserID,
			OrderID:       orderID,
			TransactionID: transactionID,
			Status:        "success",
		}); err != nil {
			t.logger.Warn("timer confirm failed", slog.String("order.id", orderID), slog.String("error", err.Error()))
		}
	})
	return nil
}

// ManualTrigger does nothing: confirmation is expected to arrive over HTTP,
// either from the gateway webhook or the client's explicit confirm call.
type ManualTrigger struct{}

func NewManualTrigger() *ManualTrigger { return &ManualTrigger{} }

func (*ManualTrigger) ScheduleConfirm(context.Context, string, string) error { return nil }

func triggerTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() || !spanCtx.TraceID().IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
