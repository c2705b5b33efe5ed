package payment

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

	"github.com/shopspring/decimal"
)

// Processor executes the external payment leg of an investment. The gateway
// is awaited within the request; failures surface to the caller as retryable
// errors and never roll back already-created records.
type Processor interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// ChargeRequest describes one charge attempt. Reference is the investment id
// and doubles as the gateway-side idempotency reference so a retried step
// never double-charges.
type ChargeRequest struct {
	Reference string
	Amount    decimal.Decimal
	Currency  string
	Method    string
}

// ChargeResult is the gateway's acknowledgment of a completed charge.
type ChargeResult struct {
	TransactionID string
	ProcessedAt   time.Time
}

const defaultTimeout = 30 * time.Second

// Options configures the HTTP gateway client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the payment gateway over HTTP.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient builds a gateway client. The API key is required; it is loaded
// from the environment or the credentials store by the caller.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("payment: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("payment: base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{apiKey: opts.APIKey, baseURL: baseURL, client: client}, nil
}

type chargeBody struct {
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Method    string `json:"method"`
}

type chargeResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	ProcessedAt   string `json:"processed_at"`
	Message       string `json:"message"`
}

// Charge submits the charge and waits for the gateway's decision.
func (c *Client) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.Reference == "" {
		return nil, errors.New("payment: reference is required")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("payment: non-positive amount %s", req.Amount)
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	payload, err := json.Marshal(chargeBody{
		Reference: req.Reference,
		Amount:    req.Amount.StringFixed(2),
		Currency:  currency,
		Method:    req.Method,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Idempotency-Key", req.Reference)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment: gateway request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("payment: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment: gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded chargeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("payment: decode response: %w", err)
	}
	if decoded.Status != "succeeded" {
		return nil, fmt.Errorf("payment: charge %s: %s", decoded.Status, decoded.Message)
	}
	processedAt, _ := time.Parse(time.RFC3339, decoded.ProcessedAt)
	return &ChargeResult{TransactionID: decoded.TransactionID, ProcessedAt: processedAt}, nil
}

var _ Processor = (*Client)(nil)
