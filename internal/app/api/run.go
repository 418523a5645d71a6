package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	checkoutserver "github.com/19jem-ila/ecommerce-checkout/go"

	telebirrclient "github.com/19jem-ila/ecommerce-checkout/internal/clients/http/telebirr"
	checkoutmemory "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/memory"
	checkoutobs "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/observability"
	checkoutpostgres "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/persistence/postgres"
	checkoutworkflows "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/workflows"
	checkoutapp "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application"
	checkoutports "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
	platformobservability "github.com/19jem-ila/ecommerce-checkout/internal/platform/observability"
	platformpostgres "github.com/19jem-ila/ecommerce-checkout/internal/platform/postgres"
)

// Run boots the checkout HTTP API with observability, persistence, the
// payment gateway, and confirmation workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "checkout-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, sessions, cleanupDB := buildStores(ctx, cfg, logger)
	defer cleanupDB()
	cart := checkoutmemory.NewCartStore()
	gateway := buildGateway(cfg, logger)

	coreService := checkoutapp.NewService(repo, gateway, cart, sessions, checkoutapp.WithLogger(logger))
	checkoutService := checkoutobs.New(
		coreService,
		checkoutobs.WithLogger(logger),
		checkoutobs.WithTracer(instruments.Tracer("internal.checkout.application")),
		checkoutobs.WithMeter(instruments.Meter("internal.checkout.application")),
	)

	var trigger checkoutports.ConfirmationTrigger
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal unavailable, confirming payments with in-process timer", slog.String("error", err.Error()))
		trigger = checkoutworkflows.NewTimerTrigger(checkoutService, repo, cfg.ConfirmDelay, logger)
	} else {
		defer temporalClient.Close()
		trigger = checkoutworkflows.NewTemporalTrigger(temporalClient, cfg.ConfirmDelay)
		logger.Info("Temporal payment collection enabled", slog.String("namespace", cfg.TemporalNamespace))
	}
	coreService.SetTrigger(trigger)

	handlers := checkoutserver.ApiHandleFunctions{
		CheckoutAPI: checkoutserver.NewCheckoutAPI(checkoutService),
		OrdersAPI:   checkoutserver.NewOrdersAPI(checkoutService),
	}

	router := checkoutserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("checkout API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("checkout API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// buildStores prefers PostgreSQL-backed persistence and degrades to memory so
// the API still comes up in local development without a database.
func buildStores(ctx context.Context, cfg Config, logger *slog.Logger) (checkoutports.Repository, checkoutports.SessionStore, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory checkout stores")
		return checkoutmemory.NewRepository(), checkoutmemory.NewSessionStore(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return checkoutmemory.NewRepository(), checkoutmemory.NewSessionStore(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return checkoutmemory.NewRepository(), checkoutmemory.NewSessionStore(), func() {}
	}
	logger.Info("checkout stores configured with postgres")
	return checkoutpostgres.NewRepository(db), checkoutpostgres.NewSessionStore(db), func() { _ = sqlDB.Close() }
}

// buildGateway uses the real telebirr client when configured and otherwise the
// in-memory simulator, which settles every transaction successfully.
func buildGateway(cfg Config, logger *slog.Logger) checkoutports.PaymentGateway {
	if cfg.TelebirrBaseURL == "" {
		logger.Warn("TELEBIRR_BASE_URL not set, using the in-memory payment gateway simulator")
		return checkoutmemory.NewGateway()
	}
	gateway, err := telebirrclient.NewClient(cfg.TelebirrBaseURL, telebirrclient.WithAPIKey(cfg.TelebirrAPIKey))
	if err != nil {
		logger.Warn("failed to build telebirr client, using the simulator", slog.String("error", err.Error()))
		return checkoutmemory.NewGateway()
	}
	logger.Info("telebirr payment gateway configured")
	return gateway
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
