package mocks

import (
	"context"
	"time"

	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/stretchr/testify/mock"
)

type WalletTransactionRepository struct {
	mock.Mock
}

func (m *WalletTransactionRepository) Create(ctx context.Context, txn *model.WalletTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *WalletTransactionRepository) Update(ctx context.Context, txn *model.WalletTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *WalletTransactionRepository) GetByOrderID(orderID string) (*model.WalletTransaction, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *WalletTransactionRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*model.WalletTransaction, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *WalletTransactionRepository) GetPendingChildrenForUpdate(ctx context.Context, parentID int64) ([]model.WalletTransaction, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WalletTransaction), args.Error(1)
}

func (m *WalletTransactionRepository) CountRecentPending(walletID int64, since time.Time) (int64, error) {
	args := m.Called(walletID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *WalletTransactionRepository) CountByStatus(status model.TransactionStatus) (int64, error) {
	args := m.Called(status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *WalletTransactionRepository) ListByWallet(walletID int64, limit, offset int) ([]model.WalletTransaction, error) {
	args := m.Called(walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WalletTransaction), args.Error(1)
}

func (m *WalletTransactionRepository) ListPending(filter repository.PendingFilter) ([]model.WalletTransaction, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WalletTransaction), args.Error(1)
}

func (m *WalletTransactionRepository) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *WalletTransactionRepository) FailPendingChildren(ctx context.Context, parentID int64) error {
	args := m.Called(ctx, parentID)
	return args.Error(0)
}
