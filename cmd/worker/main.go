package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	telebirrclient "github.com/19jem-ila/ecommerce-checkout/internal/clients/http/telebirr"
	checkoutmemory "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/memory"
	checkoutobs "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/observability"
	checkoutpostgres "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/persistence/postgres"
	checkoutapp "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application"
	checkoutports "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
	platformobservability "github.com/19jem-ila/ecommerce-checkout/internal/platform/observability"
	platformpostgres "github.com/19jem-ila/ecommerce-checkout/internal/platform/postgres"
	checkoutactivities "github.com/19jem-ila/ecommerce-checkout/internal/platform/temporal/activities/checkout"
	checkoutworkflows "github.com/19jem-ila/ecommerce-checkout/internal/platform/temporal/workflows/checkout"
)

func main() {
	ctx := context.Background()
	const serviceName = "checkout-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, sessions, cleanupDB := buildStores(ctx, logger)
	defer cleanupDB()

	coreService := checkoutapp.NewService(repo, buildGateway(logger), checkoutmemory.NewCartStore(), sessions, checkoutapp.WithLogger(logger))
	checkoutService := checkoutobs.New(
		coreService,
		checkoutobs.WithLogger(logger),
		checkoutobs.WithTracer(instruments.Tracer("internal.checkout.application")),
		checkoutobs.WithMeter(instruments.Meter("internal.checkout.application")),
	)
	activities := checkoutactivities.NewActivities(checkoutService, repo)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, checkoutworkflows.PaymentCollectionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(checkoutworkflows.PaymentCollectionWorkflow, workflow.RegisterOptions{Name: checkoutworkflows.PaymentCollectionWorkflowName})
	w.RegisterActivityWithOptions(activities.ConfirmPayment, activity.RegisterOptions{Name: checkoutactivities.ConfirmPaymentActivityName})

	logger.Info("worker listening", slog.String("taskQueue", checkoutworkflows.PaymentCollectionTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildStores(ctx context.Context, logger *slog.Logger) (checkoutports.Repository, checkoutports.SessionStore, func()) {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db == nil {
		return checkoutmemory.NewRepository(), checkoutmemory.NewSessionStore(), cleanup
	}
	logger.Info("worker checkout stores configured with postgres")
	return checkoutpostgres.NewRepository(db), checkoutpostgres.NewSessionStore(db), cleanup
}

func buildGateway(logger *slog.Logger) checkoutports.PaymentGateway {
	baseURL := os.Getenv("TELEBIRR_BASE_URL")
	if baseURL == "" {
		logger.Warn("TELEBIRR_BASE_URL not set, worker using the in-memory payment gateway simulator")
		return checkoutmemory.NewGateway()
	}
	gateway, err := telebirrclient.NewClient(baseURL, telebirrclient.WithAPIKey(os.Getenv("TELEBIRR_API_KEY")))
	if err != nil {
		logger.Warn("failed to build telebirr client, worker using the simulator", slog.String("error", err.Error()))
		return checkoutmemory.NewGateway()
	}
	return gateway
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
