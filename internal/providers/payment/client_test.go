package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestChargeSendsIdempotencyReference(t *testing.T) {
	var gotIdempotency, gotAuth string
	var gotBody chargeBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdempotency = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(chargeResponse{
			TransactionID: "tx-1",
			Status:        "succeeded",
			ProcessedAt:   "2026-03-15T10:00:00Z",
		})
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "key", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	result, err := client.Charge(context.Background(), ChargeRequest{
		Reference: "inv-1",
		Amount:    decimal.RequireFromString("1575.00"),
		Method:    "card",
	})
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if result.TransactionID != "tx-1" {
		t.Fatalf("transaction id = %q", result.TransactionID)
	}
	if gotIdempotency != "inv-1" {
		t.Fatalf("idempotency key = %q, want inv-1", gotIdempotency)
	}
	if gotAuth != "Bearer key" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotBody.Amount != "1575.00" || gotBody.Currency != "USD" {
		t.Fatalf("body = %+v", gotBody)
	}
}

func TestChargeSurfacesGatewayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "key", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Charge(context.Background(), ChargeRequest{
		Reference: "inv-1",
		Amount:    decimal.NewFromInt(100),
		Method:    "card",
	}); err == nil {
		t.Fatal("gateway 502 must surface as an error")
	}
}

func TestChargeRejectsDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chargeResponse{Status: "declined", Message: "insufficient funds"})
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "key", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Charge(context.Background(), ChargeRequest{
		Reference: "inv-1",
		Amount:    decimal.NewFromInt(100),
		Method:    "card",
	}); err == nil {
		t.Fatal("declined charge must surface as an error")
	}
}

func TestNewClientRequiresConfig(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "https://gateway.example.com"}); err == nil {
		t.Fatal("missing api key must be rejected")
	}
	if _, err := NewClient(Options{APIKey: "key"}); err == nil {
		t.Fatal("missing base url must be rejected")
	}
}
