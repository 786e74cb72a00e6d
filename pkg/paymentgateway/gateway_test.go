package paymentgateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adi-0903/wallet-service/pkg/httpclient"
	"github.com/adi-0903/wallet-service/pkg/paymentgateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, baseURL string, maxRetries int) paymentgateway.Gateway {
	t.Helper()

	cfg := paymentgateway.Config{
		BaseURL:    baseURL,
		KeyID:      "key_test",
		KeySecret:  "secret_test",
		Timeout:    5 * time.Second,
		MaxRetries: maxRetries,
		Currency:   "INR",
	}

	return paymentgateway.NewGateway(cfg, httpclient.NewHTTPClient(cfg.Timeout))
}

func TestGateway_CreateOrder(t *testing.T) {
	t.Run("Sends amount in subunits with basic auth", func(t *testing.T) {
		var captured paymentgateway.CreateOrderRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/orders", r.URL.Path)

			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "key_test", user)
			assert.Equal(t, "secret_test", pass)

			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(paymentgateway.Order{
				ID: "order_123", Amount: captured.Amount, Currency: "INR", Status: "created",
			})
		}))
		defer server.Close()

		gw := newGateway(t, server.URL, 3)

		order, err := gw.CreateOrder(context.Background(), 50000, "wallet_10_abc123")

		require.NoError(t, err)
		assert.Equal(t, "order_123", order.ID)
		assert.Equal(t, int64(50000), captured.Amount)
		assert.Equal(t, "INR", captured.Currency)
		assert.Equal(t, "wallet_10_abc123", captured.Receipt)
		assert.Equal(t, 1, captured.PaymentCapture)
	})

	t.Run("Retries server errors until success", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(paymentgateway.Order{ID: "order_123"})
		}))
		defer server.Close()

		gw := newGateway(t, server.URL, 5)

		order, err := gw.CreateOrder(context.Background(), 50000, "receipt")

		require.NoError(t, err)
		assert.Equal(t, "order_123", order.ID)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Does not retry a provider rejection", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		gw := newGateway(t, server.URL, 5)

		_, err := gw.CreateOrder(context.Background(), 50000, "receipt")

		assert.ErrorIs(t, err, paymentgateway.ErrBadRequest)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Unexpected client errors are terminal", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		gw := newGateway(t, server.URL, 5)

		_, err := gw.CreateOrder(context.Background(), 50000, "receipt")

		assert.ErrorIs(t, err, paymentgateway.ErrBadRequest)
		assert.False(t, paymentgateway.Retryable(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		gw := newGateway(t, server.URL, 3)

		_, err := gw.CreateOrder(context.Background(), 50000, "receipt")

		assert.ErrorIs(t, err, paymentgateway.ErrUnavailable)
		assert.Equal(t, int32(3), calls.Load())
	})
}

func TestGateway_FetchStatus(t *testing.T) {
	t.Run("Maps the order payload including the first payment", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/orders/order_123", r.URL.Path)

			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{
				"id": "order_123",
				"status": "paid",
				"amount_paid": 50000,
				"payments": [{"payment_id": "pay_456"}]
			}`))
		}))
		defer server.Close()

		gw := newGateway(t, server.URL, 3)

		status, err := gw.FetchStatus(context.Background(), "order_123")

		require.NoError(t, err)
		assert.Equal(t, "order_123", status.OrderID)
		assert.Equal(t, paymentgateway.OrderStatePaid, status.State)
		assert.Equal(t, int64(50000), status.AmountPaid)
		assert.Equal(t, "pay_456", status.PaymentID)
	})

	t.Run("Unknown order is terminal", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		gw := newGateway(t, server.URL, 3)

		_, err := gw.FetchStatus(context.Background(), "order_missing")

		assert.ErrorIs(t, err, paymentgateway.ErrOrderNotFound)
		assert.False(t, paymentgateway.Retryable(err))
	})
}

func TestSignatures(t *testing.T) {
	payload := []byte("order_123|pay_456")

	t.Run("Round trip verifies", func(t *testing.T) {
		signature := paymentgateway.Sign("secret", payload)
		assert.True(t, paymentgateway.VerifySignature("secret", payload, signature))
	})

	t.Run("Wrong secret fails", func(t *testing.T) {
		signature := paymentgateway.Sign("secret", payload)
		assert.False(t, paymentgateway.VerifySignature("other", payload, signature))
	})

	t.Run("Tampered payload fails", func(t *testing.T) {
		signature := paymentgateway.Sign("secret", payload)
		assert.False(t, paymentgateway.VerifySignature("secret", []byte("order_123|pay_999"), signature))
	})
}
