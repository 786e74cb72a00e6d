package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID        int64           `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	UserID    string          `gorm:"column:user_id;type:varchar(64);uniqueIndex;not null"`
	Balance   decimal.Decimal `gorm:"column:balance;type:decimal(10,2);not null;default:0"`
	Active    bool            `gorm:"column:active;not null;default:true;index"`
	Deleted   bool            `gorm:"column:deleted;not null;default:false;index"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}
