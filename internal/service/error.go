package service

import "errors"

const (
	ErrCodeDatabase = "DATABASE_ERROR"
)

var (
	ErrTransactionNotFound = errors.New("TRANSACTION_NOT_FOUND")
	ErrAlreadyTerminal     = errors.New("TRANSACTION_ALREADY_TERMINAL")
	ErrInsufficientFunds   = errors.New("INSUFFICIENT_FUNDS")
	ErrSweepAlreadyRunning = errors.New("SWEEP_ALREADY_RUNNING")
)

type Error struct {
	Code  string
	Cause error
}

func NewServiceError(code string, cause error) error {
	return Error{Code: code, Cause: cause}
}

func (e Error) Error() string {
	return e.Cause.Error()
}

func (e Error) Unwrap() error {
	return e.Cause
}
