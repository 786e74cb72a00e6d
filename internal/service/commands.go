package service

import "github.com/shopspring/decimal"

type CreateOrderCommand struct {
	UserID string
	Amount decimal.Decimal
}

type CreateOrderResult struct {
	OrderID     string
	Amount      decimal.Decimal
	BonusAmount decimal.Decimal
	Currency    string
	KeyID       string
}

type CompleteSuccessCommand struct {
	OrderID        string
	PaymentID      string
	ObservedAmount *decimal.Decimal
}

type MarkFailedCommand struct {
	OrderID string
	Reason  string
}

type ProvisionWalletCommand struct {
	UserID string
}

// DebitForFeeCommand charges the wallet either a literal amount or a
// per-kilogram collection fee when QuantityKg is set.
type DebitForFeeCommand struct {
	UserID      string
	Amount      decimal.Decimal
	QuantityKg  decimal.Decimal
	Description string
}

type ListTransactionsQuery struct {
	UserID string
	Limit  int
	Offset int
}

// VerifyJob is the unit of work carried on the verification queues.
// Attempt counts runtime reschedules, not gateway retries.
type VerifyJob struct {
	OrderID string `json:"order_id"`
	Attempt int    `json:"attempt"`
}
