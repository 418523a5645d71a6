//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/19jem-ila/ecommerce-checkout/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	ID            string  `json:"id"`
	UserID        string  `json:"userId"`
	Total         float64 `json:"total"`
	OrderStatus   string  `json:"orderStatus"`
	PaymentStatus string  `json:"paymentStatus"`
}

type placeOrderResult struct {
	Order         orderPayload `json:"order"`
	CheckoutState string       `json:"checkoutState"`
}

type resumeResult struct {
	Resumed       bool   `json:"resumed"`
	OrderID       string `json:"orderId"`
	TransactionID string `json:"transactionId"`
	CheckoutState string `json:"checkoutState"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestStorefrontCheckoutContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	orderMatcher := matchers.Map{
		"id":            matchers.Like("5f2a6c9e-8f1b-4a7d-9c3e-000000000001"),
		"userId":        matchers.S(pacttest.UserID),
		"total":         matchers.Like(26.59),
		"orderStatus":   matchers.Term("created", "created|processing|shipped|delivered|cancelled"),
		"paymentStatus": matchers.Term("none", "none|pending|completed|failed"),
	}

	pact.AddInteraction().
		Given(pacttest.StateCartSeeded).
		UponReceiving("a cash on delivery order placement").
		WithRequest("POST", "/v1/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("X-User-ID", matchers.S(pacttest.UserID))
			b.JSONBody(matchers.Map{
				"shippingAddress": addressMatcher(),
				"paymentMethod":   matchers.S("cash_on_delivery"),
			})
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"order":         orderMatcher,
				"checkoutState": matchers.S("completed"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrderMissing).
		UponReceiving("a request for a missing order").
		WithRequest("GET", fmt.Sprintf("/v1/orders/%s", pacttest.MissingOrderID), func(b *pactconsumer.V2RequestBuilder) {
			b.Header("X-User-ID", matchers.S(pacttest.UserID))
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateSessionPending).
		UponReceiving("a checkout resume after reload").
		WithRequest("POST", "/v1/checkout/resume", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("X-User-ID", matchers.S(pacttest.UserID))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"resumed":       matchers.Like(true),
				"orderId":       matchers.Like("5f2a6c9e-8f1b-4a7d-9c3e-000000000001"),
				"transactionId": matchers.Like("tx-pending-1"),
				"checkoutState": matchers.S("payment_pending"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newStorefrontClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		placed, err := client.PlaceOrder(ctx, pacttest.UserID, "cash_on_delivery")
		if err != nil {
			return fmt.Errorf("place order: %w", err)
		}
		if placed.CheckoutState != "completed" {
			return fmt.Errorf("expected completed checkout, got %q", placed.CheckoutState)
		}
		if placed.Order.ID == "" {
			return fmt.Errorf("expected order id to be set")
		}

		if _, err := client.GetOrder(ctx, pacttest.UserID, pacttest.MissingOrderID); err == nil {
			return fmt.Errorf("expected 404 for order %s", pacttest.MissingOrderID)
		} else if apiErr, ok := err.(apiError); ok && apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %d", apiErr.Status())
		}

		resumed, err := client.ResumeCheckout(ctx, pacttest.UserID)
		if err != nil {
			return fmt.Errorf("resume checkout: %w", err)
		}
		if !resumed.Resumed || resumed.TransactionID == "" {
			return fmt.Errorf("expected resumable pending checkout, got %+v", resumed)
		}

		return nil
	})
	require.NoError(t, err)
}

func addressMatcher() matchers.Map {
	address := pacttest.ExampleShippingAddress()
	out := make(matchers.Map, len(address))
	for key, value := range address {
		out[key] = matchers.Like(value)
	}
	return out
}

type storefrontClient struct {
	baseURL    string
	httpClient *http.Client
}

func newStorefrontClient(config pactconsumer.MockServerConfig) *storefrontClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &storefrontClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *storefrontClient) PlaceOrder(ctx context.Context, userID, method string) (*placeOrderResult, error) {
	body, err := json.Marshal(map[string]any{
		"shippingAddress": pacttest.ExampleShippingAddress(),
		"paymentMethod":   method,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload placeOrderResult
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *storefrontClient) GetOrder(ctx context.Context, userID, orderID string) (*orderPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/orders/%s", c.baseURL, orderID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-User-ID", userID)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload orderPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *storefrontClient) ResumeCheckout(ctx context.Context, userID string) (*resumeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/resume", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-User-ID", userID)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload resumeResult
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}
