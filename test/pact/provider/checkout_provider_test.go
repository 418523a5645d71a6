//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	pacttest "github.com/19jem-ila/ecommerce-checkout/test/pact"

	checkoutserver "github.com/19jem-ila/ecommerce-checkout/go"
	checkoutmemory "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/memory"
	checkoutobs "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/observability"
	checkoutapp "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application"
	checkoutdomain "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
	checkoutports "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestCheckoutProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateCartSeeded: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedCart(pacttest.UserID)
			}
			return nil, nil
		},
		pacttest.StateOrderMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateSessionPending: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedPendingCheckout(t, pacttest.UserID)
			}
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	repo     *checkoutmemory.Repository
	sessions *checkoutmemory.SessionStore
	cart     *checkoutmemory.CartStore
	server   *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	repo := checkoutmemory.NewRepository()
	sessions := checkoutmemory.NewSessionStore()
	cart := checkoutmemory.NewCartStore()
	service := checkoutobs.New(checkoutapp.NewService(repo, checkoutmemory.NewGateway(), cart, sessions))

	handlers := checkoutserver.ApiHandleFunctions{
		CheckoutAPI: checkoutserver.NewCheckoutAPI(service),
		OrdersAPI:   checkoutserver.NewOrdersAPI(service),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router = checkoutserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	app := &contractProviderApp{
		repo:     repo,
		sessions: sessions,
		cart:     cart,
		server:   server,
	}
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, a.sessions.Delete(ctx, pacttest.UserID))
	require.NoError(t, a.cart.Clear(ctx, pacttest.UserID))
}

func (a *contractProviderApp) seedCart(userID string) {
	a.cart.Put(userID, domainLineItems())
}

func (a *contractProviderApp) seedPendingCheckout(t testing.TB, userID string) {
	t.Helper()
	ctx := context.Background()

	order, err := checkoutdomain.NewOrder(userID, domainLineItems(), checkoutdomain.Address{
		Street:  "22 Bole Road",
		City:    "Addis Ababa",
		State:   "AA",
		ZipCode: "1000",
		Country: "ET",
		Phone:   "+251911000000",
	}, checkoutdomain.MethodTelebirr)
	require.NoError(t, err)

	expiry := time.Now().Add(15 * time.Minute)
	saved, err := a.repo.Save(ctx, order)
	require.NoError(t, err)
	require.NoError(t, saved.AttachTransaction("tx-pending-1", &expiry))
	saved, err = a.repo.Save(ctx, saved)
	require.NoError(t, err)

	require.NoError(t, a.sessions.Save(ctx, checkoutports.CheckoutSession{
		UserID:           userID,
		State:            checkoutdomain.StatePaymentPending,
		OrderID:          saved.ID,
		PaymentMethod:    checkoutdomain.MethodTelebirr,
		PaymentStatus:    checkoutdomain.PaymentPending,
		TransactionID:    saved.TransactionID,
		PaymentExpiresAt: saved.PaymentExpiresAt,
		UpdatedAt:        time.Now(),
	}))
}

func domainLineItems() []checkoutdomain.LineItem {
	return []checkoutdomain.LineItem{
		{ProductID: "p-1", Name: "Wireless Mouse", Quantity: 2, UnitPrice: 10},
	}
}
