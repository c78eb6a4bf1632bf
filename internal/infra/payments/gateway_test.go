package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retreat/internal/app/policies"
	"retreat/internal/domain/shared/money"
)

func TestCreateCheckout(t *testing.T) {
	var captured checkoutPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{
			"id":  "cs_test_123",
			"url": "https://pay.example.com/cs_test_123",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test", "https://app/success", "https://app/cancel", time.Second, nil)
	checkout, err := client.CreateCheckout(context.Background(), policies.CheckoutRequest{
		IntentID:      "intent-1",
		Amount:        money.Must(115020, "USD"),
		CustomerEmail: "guest@example.com",
		Metadata: map[string]string{
			"check_in":  "2025-12-24",
			"check_out": "2025-12-27",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_123", checkout.Reference)
	assert.Equal(t, "https://pay.example.com/cs_test_123", checkout.RedirectURL)
	assert.Equal(t, int64(115020), captured.AmountCents)
	assert.Equal(t, "USD", captured.Currency)
	assert.Equal(t, "https://app/success", captured.SuccessURL)
	assert.Equal(t, "2025-12-24", captured.Metadata["check_in"])
}

func TestCreateCheckoutWrapsRejections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such account", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_bad", "", "", time.Second, nil)
	_, err := client.CreateCheckout(context.Background(), policies.CheckoutRequest{
		Amount: money.Must(100, "USD"),
	})
	assert.ErrorIs(t, err, policies.ErrGateway)
}

func TestCreateCheckoutWrapsTransportFailures(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "sk_test", "", "", 200*time.Millisecond, nil)
	_, err := client.CreateCheckout(context.Background(), policies.CheckoutRequest{
		Amount: money.Must(100, "USD"),
	})
	assert.ErrorIs(t, err, policies.ErrGateway)
}

func TestCreateCheckoutRejectsIncompleteResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "cs_1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test", "", "", time.Second, nil)
	_, err := client.CreateCheckout(context.Background(), policies.CheckoutRequest{
		Amount: money.Must(100, "USD"),
	})
	assert.ErrorIs(t, err, policies.ErrGateway)
}
