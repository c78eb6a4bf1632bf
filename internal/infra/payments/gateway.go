package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"retreat/internal/app/policies"
)

// Client implements policies.PaymentsPort against a hosted-checkout HTTP
// API. Every failure is wrapped in policies.ErrGateway so callers can
// treat the whole class as retryable.
type Client struct {
	BaseURL    string
	APIKey     string
	SuccessURL string
	CancelURL  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewClient(baseURL, apiKey, successURL, cancelURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

type checkoutPayload struct {
	AmountCents   int64             `json:"amount_cents"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	SuccessURL    string            `json:"success_url,omitempty"`
	CancelURL     string            `json:"cancel_url,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type checkoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *Client) CreateCheckout(ctx context.Context, req policies.CheckoutRequest) (policies.Checkout, error) {
	payload := checkoutPayload{
		AmountCents:   req.Amount.Amount,
		Currency:      req.Amount.Currency,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    c.SuccessURL,
		CancelURL:     c.CancelURL,
		Metadata:      req.Metadata,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return policies.Checkout{}, fmt.Errorf("%w: encode checkout: %v", policies.ErrGateway, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return policies.Checkout{}, fmt.Errorf("%w: build request: %v", policies.ErrGateway, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return policies.Checkout{}, fmt.Errorf("%w: %v", policies.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if c.Logger != nil {
			c.Logger.Warn("checkout creation rejected", "status", resp.StatusCode, "body", string(raw))
		}
		return policies.Checkout{}, fmt.Errorf("%w: checkout rejected with status %d", policies.ErrGateway, resp.StatusCode)
	}

	var decoded checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return policies.Checkout{}, fmt.Errorf("%w: decode response: %v", policies.ErrGateway, err)
	}
	if decoded.ID == "" || decoded.URL == "" {
		return policies.Checkout{}, fmt.Errorf("%w: response missing checkout reference or url", policies.ErrGateway)
	}
	return policies.Checkout{Reference: decoded.ID, RedirectURL: decoded.URL}, nil
}

var _ policies.PaymentsPort = (*Client)(nil)
