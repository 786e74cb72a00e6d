package repository

import (
	"context"
	"errors"
	"time"

	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrWalletNotFound = errors.New("WALLET_NOT_FOUND")
var ErrWalletDuplicate = errors.New("WALLET_DUPLICATE")
var ErrNoRowsAffected = errors.New("NO_ROWS_AFFECTED")

type WalletRepository interface {
	Create(ctx context.Context, wallet *model.Wallet) error
	GetByUserID(userID string, activeOnly bool) (*model.Wallet, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Wallet, error)
	AddBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error
	SubtractBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error
	SetBalance(ctx context.Context, walletID int64, balance decimal.Decimal) error
	SoftDelete(ctx context.Context, walletID int64) error
}

type Wallet struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &Wallet{db: db}
}

func (w *Wallet) Create(ctx context.Context, wallet *model.Wallet) error {
	db := GetTx(ctx, w.db)
	err := db.Create(wallet).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrWalletDuplicate
	}

	return err
}

func (w *Wallet) GetByUserID(userID string, activeOnly bool) (*model.Wallet, error) {
	var wallet model.Wallet

	query := w.db.Where("user_id = ? AND deleted = ?", userID, false)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	err := query.First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWalletNotFound
	}

	return nil, err
}

func (w *Wallet) GetByIDForUpdate(ctx context.Context, id int64) (*model.Wallet, error) {
	db := GetTx(ctx, w.db)

	var wallet model.Wallet
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND deleted = ?", id, false).
		First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWalletNotFound
	}

	return nil, err
}

// AddBalance increments the balance in a single guarded UPDATE so
// concurrent credits on the same wallet serialize on the row.
func (w *Wallet) AddBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	db := GetTx(ctx, w.db)

	result := db.Model(&model.Wallet{}).
		Where("id = ? AND deleted = ?", walletID, false).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}

	return nil
}

// SubtractBalance debits the wallet only when the balance covers the
// amount. ErrNoRowsAffected means insufficient funds; the balance is
// left untouched.
func (w *Wallet) SubtractBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	db := GetTx(ctx, w.db)

	result := db.Model(&model.Wallet{}).
		Where("id = ? AND deleted = ? AND balance >= ?", walletID, false, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (w *Wallet) SetBalance(ctx context.Context, walletID int64, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return ErrNoRowsAffected
	}

	db := GetTx(ctx, w.db)

	result := db.Model(&model.Wallet{}).
		Where("id = ? AND deleted = ?", walletID, false).
		Updates(map[string]interface{}{
			"balance":    balance,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}

	return nil
}

func (w *Wallet) SoftDelete(ctx context.Context, walletID int64) error {
	db := GetTx(ctx, w.db)

	return db.Model(&model.Wallet{}).
		Where("id = ?", walletID).
		Updates(map[string]interface{}{
			"deleted":    true,
			"active":     false,
			"updated_at": time.Now(),
		}).Error
}
