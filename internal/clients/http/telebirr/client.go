package telebirr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

var _ ports.PaymentGateway = (*Client)(nil)

// Client talks to the telebirr payment API over JSON.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries uint64
}

// Option configures the client.
type Option func(*Client)

// WithAPIKey sets the bearer credential attached to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = strings.TrimSpace(key) }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithMaxRetries bounds how many times a confirm is retried on 5xx answers.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// NewClient instantiates the telebirr client with sane defaults.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("telebirr base URL is required")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type initiateRequest struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
	Phone   string  `json:"phone"`
}

type initiateResponse struct {
	TransactionID string    `json:"transactionId"`
	PaymentURL    string    `json:"paymentUrl"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type confirmRequest struct {
	TransactionID string            `json:"transactionId"`
	Status        string            `json:"status"`
	Data          map[string]string `json:"data,omitempty"`
}

type confirmResponse struct {
	OrderID       string `json:"orderId"`
	PaymentStatus string `json:"paymentStatus"`
}

type apiError struct {
	Message string `json:"message"`
}

// Initiate starts a payment transaction. Initiation is never retried here: a
// timed-out request may still have created a transaction on the provider side,
// and only the orchestrator knows whether one is already attached.
func (c *Client) Initiate(ctx context.Context, req ports.InitiateRequest) (*ports.InitiateResult, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("telebirr client not configured")
	}
	var resp initiateResponse
	if err := c.post(ctx, "/v1/payments/initiate", initiateRequest{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Phone:   req.Phone,
	}, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.TransactionID) == "" {
		return nil, ports.ErrNoTransactionID
	}
	return &ports.InitiateResult{
		TransactionID: resp.TransactionID,
		PaymentURL:    resp.PaymentURL,
		ExpiresAt:     resp.ExpiresAt,
	}, nil
}

// Confirm reports the transaction outcome, retrying transient provider
// failures with fibonacci backoff. Confirm is safe to retry: the provider
// settles a transaction at most once.
func (c *Client) Confirm(ctx context.Context, req ports.ConfirmRequest) (*ports.ConfirmResult, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("telebirr client not configured")
	}
	var resp confirmResponse
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return c.post(ctx, "/v1/payments/confirm", confirmRequest{
			TransactionID: req.TransactionID,
			Status:        req.Status,
			Data:          req.Data,
		}, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &ports.ConfirmResult{
		OrderID:       resp.OrderID,
		PaymentStatus: resp.PaymentStatus,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode telebirr request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telebirr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.RetryableError(fmt.Errorf("call telebirr API: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode telebirr response: %w", err)
		}
		return nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return retry.RetryableError(fmt.Errorf("telebirr API unavailable: %s", readError(resp)))
	default:
		return fmt.Errorf("telebirr API error: %s", readError(resp))
	}
}

func readError(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(raw) == 0 {
		return resp.Status
	}
	var body apiError
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Message) != "" {
		return body.Message
	}
	return resp.Status
}
