package repository

import (
	"context"
	"errors"
	"time"

	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTransactionNotFound = errors.New("TRANSACTION_NOT_FOUND")
var ErrOrderDuplicate = errors.New("ORDER_DUPLICATE")

// PendingFilter selects PENDING gateway transactions for the sweeper.
// CreatedAfter/CreatedBefore bound the age bucket; NotUpdatedSince
// keeps freshly touched rows out of the batch.
type PendingFilter struct {
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
	NotUpdatedSince time.Time
	Limit           int
}

type WalletTransactionRepository interface {
	Create(ctx context.Context, txn *model.WalletTransaction) error
	Update(ctx context.Context, txn *model.WalletTransaction) error
	GetByOrderID(orderID string) (*model.WalletTransaction, error)
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*model.WalletTransaction, error)
	GetPendingChildrenForUpdate(ctx context.Context, parentID int64) ([]model.WalletTransaction, error)
	CountRecentPending(walletID int64, since time.Time) (int64, error)
	CountByStatus(status model.TransactionStatus) (int64, error)
	ListByWallet(walletID int64, limit, offset int) ([]model.WalletTransaction, error)
	ListPending(filter PendingFilter) ([]model.WalletTransaction, error)
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
	FailPendingChildren(ctx context.Context, parentID int64) error
}

type WalletTransactionRepo struct {
	db *gorm.DB
}

func NewWalletTransactionRepository(db *gorm.DB) WalletTransactionRepository {
	return &WalletTransactionRepo{db: db}
}

func (r *WalletTransactionRepo) Create(ctx context.Context, txn *model.WalletTransaction) error {
	db := GetTx(ctx, r.db)
	err := db.Create(txn).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrOrderDuplicate
	}

	return err
}

func (r *WalletTransactionRepo) Update(ctx context.Context, txn *model.WalletTransaction) error {
	db := GetTx(ctx, r.db)
	return db.Model(txn).Where("id = ?", txn.ID).Updates(txn).Error
}

func (r *WalletTransactionRepo) GetByOrderID(orderID string) (*model.WalletTransaction, error) {
	var txn model.WalletTransaction

	err := r.db.Where("order_id = ?", orderID).First(&txn).Error
	if err == nil {
		return &txn, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

func (r *WalletTransactionRepo) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*model.WalletTransaction, error) {
	db := GetTx(ctx, r.db)

	var txn model.WalletTransaction
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		First(&txn).Error
	if err == nil {
		return &txn, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

func (r *WalletTransactionRepo) GetPendingChildrenForUpdate(ctx context.Context, parentID int64) ([]model.WalletTransaction, error) {
	db := GetTx(ctx, r.db)

	var children []model.WalletTransaction
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("parent_id = ? AND status = ?", parentID, model.TransactionStatusPending).
		Find(&children).Error
	if err != nil {
		return nil, err
	}

	return children, nil
}

func (r *WalletTransactionRepo) CountRecentPending(walletID int64, since time.Time) (int64, error) {
	var count int64

	err := r.db.Model(&model.WalletTransaction{}).
		Where("wallet_id = ? AND status = ? AND created_at >= ?",
			walletID, model.TransactionStatusPending, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *WalletTransactionRepo) CountByStatus(status model.TransactionStatus) (int64, error) {
	var count int64

	err := r.db.Model(&model.WalletTransaction{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *WalletTransactionRepo) ListByWallet(walletID int64, limit, offset int) ([]model.WalletTransaction, error) {
	var txns []model.WalletTransaction

	err := r.db.Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}

	return txns, nil
}

func (r *WalletTransactionRepo) ListPending(filter PendingFilter) ([]model.WalletTransaction, error) {
	query := r.db.
		Where("status = ? AND order_id IS NOT NULL", model.TransactionStatusPending).
		Where("updated_at <= ?", filter.NotUpdatedSince)

	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	var txns []model.WalletTransaction
	err := query.Order("updated_at ASC").Limit(filter.Limit).Find(&txns).Error
	if err != nil {
		return nil, err
	}

	return txns, nil
}

// ExpirePendingBefore bulk-fails PENDING transactions older than the
// cutoff regardless of gateway state so nothing stays in limbo forever.
func (r *WalletTransactionRepo) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db := GetTx(ctx, r.db)

	result := db.Model(&model.WalletTransaction{}).
		Where("status = ? AND created_at < ?", model.TransactionStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":     model.TransactionStatusFailed,
			"updated_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *WalletTransactionRepo) FailPendingChildren(ctx context.Context, parentID int64) error {
	db := GetTx(ctx, r.db)

	return db.Model(&model.WalletTransaction{}).
		Where("parent_id = ? AND status = ?", parentID, model.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":     model.TransactionStatusFailed,
			"updated_at": time.Now(),
		}).Error
}
