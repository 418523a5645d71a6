package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	checkouttypes "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application/types"
	checkoutdomain "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
	checkoutports "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

const tracerName = "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/observability/service"

// Service decorates the checkout service with tracing, logging, and metrics.
type Service struct {
	inner   checkoutports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core checkout service.
func New(inner checkoutports.Service, opts ...Option) checkoutports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input checkouttypes.PlaceOrderInput) (*checkouttypes.PlaceOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.PlaceOrder",
		trace.WithAttributes(attribute.String("user.id", input.UserID), attribute.String("payment.method", input.PaymentMethod)))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("user.id", input.UserID), slog.String("payment.method", input.PaymentMethod))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("user.id", input.UserID))
	}
	s.metrics.recordPlaced(ctx, result.Order.PaymentMethod)
	s.logInfo(ctx, "order placed",
		slog.String("order.id", result.Order.ID),
		slog.String("checkout.state", result.State.String()),
		slog.Float64("order.total", result.Order.Total))
	return result, nil
}

func (s *Service) InitiatePayment(ctx context.Context, input checkouttypes.InitiatePaymentInput) (*checkouttypes.InitiatePaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.InitiatePayment",
		trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer span.End()

	s.logInfo(ctx, "initiating payment", slog.String("order.id", input.OrderID))
	result, err := s.inner.InitiatePayment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to initiate payment", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordInitiated(ctx)
	span.SetAttributes(attribute.String("transaction.id", result.TransactionID))
	s.logInfo(ctx, "payment initiated",
		slog.String("order.id", result.OrderID), slog.String("transaction.id", result.TransactionID))
	return result, nil
}

func (s *Service) ConfirmPayment(ctx context.Context, input checkouttypes.ConfirmPaymentInput) (*checkouttypes.ConfirmPaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.ConfirmPayment",
		trace.WithAttributes(attribute.String("order.id", input.OrderID), attribute.String("transaction.id", input.TransactionID)))
	defer span.End()

	s.logInfo(ctx, "confirming payment", slog.String("order.id", input.OrderID))
	result, err := s.inner.ConfirmPayment(ctx, input)
	if err != nil {
		s.metrics.recordConfirmFailed(ctx)
		return nil, s.handleError(ctx, span, err, "failed to confirm payment", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordConfirmed(ctx)
	s.logInfo(ctx, "payment confirmed",
		slog.String("order.id", result.OrderID), slog.String("payment.status", string(result.PaymentStatus)))
	return result, nil
}

func (s *Service) CancelCheckout(ctx context.Context, input checkouttypes.CancelCheckoutInput) error {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.CancelCheckout",
		trace.WithAttributes(attribute.String("user.id", input.UserID)))
	defer span.End()

	if err := s.inner.CancelCheckout(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to cancel checkout", slog.String("user.id", input.UserID))
	}
	s.logInfo(ctx, "checkout cancelled", slog.String("user.id", input.UserID))
	return nil
}

func (s *Service) ResumeIfPending(ctx context.Context, userID string) (*checkouttypes.ResumeResult, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.ResumeIfPending",
		trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	result, err := s.inner.ResumeIfPending(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to resume checkout", slog.String("user.id", userID))
	}
	span.SetAttributes(attribute.Bool("checkout.resumed", result.Resumed))
	if result.Resumed {
		s.metrics.recordResumed(ctx)
		s.logInfo(ctx, "checkout resumed",
			slog.String("order.id", result.OrderID), slog.String("checkout.state", result.State.String()))
	}
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, input checkouttypes.GetOrderInput) (*checkoutdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.GetOrder",
		trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer span.End()

	result, err := s.inner.GetOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", input.OrderID))
	}
	return result, nil
}

func (s *Service) ListUserOrders(ctx context.Context, input checkouttypes.ListUserOrdersInput) (*checkouttypes.OrdersPage, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.ListUserOrders",
		trace.WithAttributes(attribute.String("user.id", input.UserID), attribute.Int("page", input.Page)))
	defer span.End()

	result, err := s.inner.ListUserOrders(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders", slog.String("user.id", input.UserID))
	}
	span.SetAttributes(attribute.Int64("orders.total", result.Pagination.TotalOrders))
	return result, nil
}

func (s *Service) ListAllOrders(ctx context.Context, input checkouttypes.ListAllOrdersInput) (*checkouttypes.OrdersPage, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.ListAllOrders",
		trace.WithAttributes(attribute.Int("page", input.Page)))
	defer span.End()

	result, err := s.inner.ListAllOrders(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list all orders")
	}
	span.SetAttributes(attribute.Int64("orders.total", result.Pagination.TotalOrders))
	return result, nil
}

func (s *Service) CancelOrder(ctx context.Context, input checkouttypes.CancelOrderInput) (*checkoutdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.CancelOrder",
		trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.String("order.id", input.OrderID))
	result, err := s.inner.CancelOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "order cancelled", slog.String("order.id", result.ID))
	return result, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, input checkouttypes.UpdateOrderStatusInput) (*checkoutdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.UpdateOrderStatus",
		trace.WithAttributes(attribute.String("order.id", input.OrderID), attribute.String("order.status", input.Status)))
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.String("order.id", input.OrderID), slog.String("order.status", input.Status))
	result, err := s.inner.UpdateOrderStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.String("order.id", input.OrderID))
	}
	s.logInfo(ctx, "order status updated",
		slog.String("order.id", result.ID), slog.String("order.status", string(result.OrderStatus)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersPlaced    metric.Int64Counter
	ordersCancelled metric.Int64Counter
	paymentsStarted metric.Int64Counter
	paymentsOK      metric.Int64Counter
	paymentsFailed  metric.Int64Counter
	resumes         metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("checkout.service.orders_placed", metric.WithDescription("Number of orders placed"))
	ordersCancelled, _ := m.Int64Counter("checkout.service.orders_cancelled", metric.WithDescription("Number of orders cancelled"))
	paymentsStarted, _ := m.Int64Counter("checkout.service.payments_initiated", metric.WithDescription("Number of payments initiated"))
	paymentsOK, _ := m.Int64Counter("checkout.service.payments_confirmed", metric.WithDescription("Number of payments confirmed"))
	paymentsFailed, _ := m.Int64Counter("checkout.service.payments_failed", metric.WithDescription("Number of failed payment confirmations"))
	resumes, _ := m.Int64Counter("checkout.service.checkouts_resumed", metric.WithDescription("Number of pending checkouts resumed"))
	return serviceMetrics{
		ordersPlaced:    ordersPlaced,
		ordersCancelled: ordersCancelled,
		paymentsStarted: paymentsStarted,
		paymentsOK:      paymentsOK,
		paymentsFailed:  paymentsFailed,
		resumes:         resumes,
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, method checkoutdomain.PaymentMethod) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("payment.method", string(method))))
	}
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	if m.ordersCancelled != nil {
		m.ordersCancelled.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordInitiated(ctx context.Context) {
	if m.paymentsStarted != nil {
		m.paymentsStarted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordConfirmed(ctx context.Context) {
	if m.paymentsOK != nil {
		m.paymentsOK.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordConfirmFailed(ctx context.Context) {
	if m.paymentsFailed != nil {
		m.paymentsFailed.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordResumed(ctx context.Context) {
	if m.resumes != nil {
		m.resumes.Add(ctx, 1)
	}
}

var _ checkoutports.Service = (*Service)(nil)
