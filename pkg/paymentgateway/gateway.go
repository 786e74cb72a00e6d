package paymentgateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/adi-0903/wallet-service/pkg/httpclient"
)

const (
	ordersEndpoint = "/orders"

	baseBackoff = 500 * time.Millisecond
	maxBackoff  = 8 * time.Second
)

type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, receipt string) (Order, error)
	FetchStatus(ctx context.Context, orderID string) (PaymentStatus, error)
}

type gateway struct {
	client httpclient.HTTPClient
	config Config
}

func NewGateway(cfg Config, client httpclient.HTTPClient) Gateway {
	return &gateway{config: cfg, client: client}
}

func (g *gateway) CreateOrder(ctx context.Context, amount int64, receipt string) (Order, error) {
	request := CreateOrderRequest{
		Amount:         amount,
		Currency:       g.config.Currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return Order{}, fmt.Errorf("encoding error: %w", err)
	}

	var order Order
	err := g.withRetry(ctx, func(ctx context.Context) error {
		resp, err := g.client.Post(ctx, g.config.BaseURL+ordersEndpoint, bytes.NewReader(buf.Bytes()), g.headers())
		if err != nil {
			return mapTransportError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return MapStatusToError(resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
			return fmt.Errorf("decoding error: %w", err)
		}

		return nil
	})
	if err != nil {
		return Order{}, err
	}

	return order, nil
}

func (g *gateway) FetchStatus(ctx context.Context, orderID string) (PaymentStatus, error) {
	url := fmt.Sprintf("%s%s/%s", g.config.BaseURL, ordersEndpoint, orderID)

	var parsed orderStatusResponse
	err := g.withRetry(ctx, func(ctx context.Context) error {
		resp, err := g.client.Get(ctx, url, g.headers())
		if err != nil {
			return mapTransportError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return MapStatusToError(resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("decoding error: %w", err)
		}

		return nil
	})
	if err != nil {
		return PaymentStatus{}, err
	}

	status := PaymentStatus{
		OrderID:    parsed.ID,
		State:      parsed.Status,
		AmountPaid: parsed.AmountPaid,
	}
	if len(parsed.Payments) > 0 {
		status.PaymentID = parsed.Payments[0].ID
	}

	return status, nil
}

// withRetry runs fn up to MaxRetries times, backing off exponentially
// with jitter between attempts. Only transport failures, 429 and 5xx
// are retried; provider rejections surface immediately.
func (g *gateway) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := g.config.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, backoffWithJitter(attempt)); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !Retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

func backoffWithJitter(attempt int) time.Duration {
	backoff := baseBackoff << (attempt - 1)
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff + time.Duration(rand.Int63n(int64(backoff/2)+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrUnavailable
}

func (g *gateway) headers() map[string]string {
	auth := base64.StdEncoding.EncodeToString([]byte(g.config.KeyID + ":" + g.config.KeySecret))
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Basic " + auth,
	}
}
