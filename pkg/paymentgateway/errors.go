package paymentgateway

import "errors"

const (
	ErrCodeBadRequest  = "GATEWAY_BAD_REQUEST"
	ErrCodeNotFound    = "GATEWAY_ORDER_NOT_FOUND"
	ErrCodeUnavailable = "GATEWAY_UNAVAILABLE"
	ErrCodeTimeout     = "GATEWAY_TIMEOUT"
)

var (
	// ErrBadRequest is terminal: the provider rejected the request and
	// a retry cannot change the outcome.
	ErrBadRequest    = errors.New(ErrCodeBadRequest)
	ErrOrderNotFound = errors.New(ErrCodeNotFound)
	// ErrUnavailable covers 429, 5xx and network failures; callers may
	// retry and the circuit breaker counts it.
	ErrUnavailable = errors.New(ErrCodeUnavailable)
	ErrTimeout     = errors.New(ErrCodeTimeout)
)

var statusErrorMap = map[int]error{
	404: ErrOrderNotFound,
	429: ErrUnavailable,
}

// MapStatusToError translates a provider HTTP status: 429 and 5xx are
// retryable, every other 4xx is terminal.
func MapStatusToError(statusCode int) error {
	if err, exists := statusErrorMap[statusCode]; exists {
		return err
	}

	if statusCode >= 400 && statusCode < 500 {
		return ErrBadRequest
	}

	return ErrUnavailable
}

// Retryable reports whether the error is worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}
