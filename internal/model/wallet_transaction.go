package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindCredit TransactionKind = "CREDIT"
	TransactionKindDebit  TransactionKind = "DEBIT"
)

type TransactionStatus string

// PENDING is the only non-terminal status. SUCCESS and FAILED are
// immutable once written.
const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

type WalletTransaction struct {
	ID          int64             `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	WalletID    int64             `gorm:"column:wallet_id;not null;index;<-:create"`
	Amount      decimal.Decimal   `gorm:"column:amount;type:decimal(10,2);not null"`
	Kind        TransactionKind   `gorm:"column:kind;type:enum('CREDIT','DEBIT');not null;index"`
	Status      TransactionStatus `gorm:"column:status;type:enum('PENDING','SUCCESS','FAILED');not null;default:PENDING;index:idx_status_created"`
	OrderID     *string           `gorm:"column:order_id;type:varchar(100);uniqueIndex"`
	PaymentID   *string           `gorm:"column:payment_id;type:varchar(100);index"`
	Description string            `gorm:"column:description;type:varchar(255)"`
	ParentID    *int64            `gorm:"column:parent_id;index"`
	CreatedAt   time.Time         `gorm:"column:created_at;index:idx_status_created"`
	UpdatedAt   time.Time         `gorm:"column:updated_at"`

	Wallet Wallet `gorm:"foreignKey:WalletID"`
}

// Terminal reports whether the transaction has reached a final state.
func (t *WalletTransaction) Terminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}
