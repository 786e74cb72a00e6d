package mocks

import (
	"context"

	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type WalletRepository struct {
	mock.Mock
}

func (m *WalletRepository) Create(ctx context.Context, wallet *model.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *WalletRepository) GetByUserID(userID string, activeOnly bool) (*model.Wallet, error) {
	args := m.Called(userID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *WalletRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *WalletRepository) AddBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, walletID, amount)
	return args.Error(0)
}

func (m *WalletRepository) SubtractBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, walletID, amount)
	return args.Error(0)
}

func (m *WalletRepository) SetBalance(ctx context.Context, walletID int64, balance decimal.Decimal) error {
	args := m.Called(ctx, walletID, balance)
	return args.Error(0)
}

func (m *WalletRepository) SoftDelete(ctx context.Context, walletID int64) error {
	args := m.Called(ctx, walletID)
	return args.Error(0)
}
