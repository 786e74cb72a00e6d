package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/constants"
	"github.com/adi-0903/wallet-service/internal/mocks"
	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/adi-0903/wallet-service/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func walletConfig() *config.Config {
	return &config.Config{
		Wallet: config.Wallet{
			WelcomeBonus: config.WelcomeBonus{
				Enabled:     true,
				Amount:      decimal.NewFromInt(500),
				Description: "Welcome bonus for new registration",
			},
			FeePerKg:          decimal.NewFromFloat(0.024),
			TransactionsLimit: 50,
		},
	}
}

func TestWallet_ProvisionWallet(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	cmd := service.ProvisionWalletCommand{UserID: "user123"}

	t.Run("Creates wallet with welcome bonus", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewWalletService(mockWallets, mockTxns, mockTx, walletConfig(), logger)

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockWallets.On("Create", mock.Anything, mock.Anything).Return(nil)
		mockTxns.On("Create", mock.Anything, mock.MatchedBy(func(txn *model.WalletTransaction) bool {
			return txn.Kind == model.TransactionKindCredit &&
				txn.Status == model.TransactionStatusSuccess &&
				txn.Amount.Equal(decimal.NewFromInt(500))
		})).Return(nil)
		mockWallets.On("SetBalance", mock.Anything, mock.Anything,
			mock.MatchedBy(func(balance decimal.Decimal) bool {
				return balance.Equal(decimal.NewFromInt(500))
			})).Return(nil)

		created, err := svc.ProvisionWallet(ctx, cmd)

		assert.NoError(t, err)
		assert.Equal(t, "user123", created.UserID)
		assert.True(t, created.Balance.Equal(decimal.NewFromInt(500)))
		assert.True(t, created.Active)

		mockWallets.AssertExpectations(t)
		mockTxns.AssertExpectations(t)
	})

	t.Run("Welcome bonus disabled leaves balance at zero", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		cfg := walletConfig()
		cfg.Wallet.WelcomeBonus.Enabled = false

		svc := service.NewWalletService(mockWallets, mockTxns, mockTx, cfg, logger)

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockWallets.On("Create", mock.Anything, mock.Anything).Return(nil)

		created, err := svc.ProvisionWallet(ctx, cmd)

		assert.NoError(t, err)
		assert.True(t, created.Balance.IsZero())
		mockTxns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate wallet is rejected", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewWalletService(mockWallets, mockTxns, mockTx, walletConfig(), logger)

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockWallets.On("Create", mock.Anything, mock.Anything).Return(repository.ErrWalletDuplicate)

		_, err := svc.ProvisionWallet(ctx, cmd)

		var serviceErr service.Error
		assert.True(t, errors.As(err, &serviceErr))
		assert.Equal(t, constants.ErrCodeWalletExists, serviceErr.Code)
	})
}

func TestWallet_DebitForFee(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	userWallet := &model.Wallet{ID: 10, UserID: "user123", Balance: decimal.NewFromInt(100), Active: true}

	cmd := service.DebitForFeeCommand{
		UserID:      "user123",
		Amount:      decimal.NewFromFloat(12.48),
		Description: "Collection fee for 520kg",
	}

	t.Run("Debits balance and records transaction", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewWalletService(mockWallets, mockTxns, mockTx, walletConfig(), logger)

		mockWallets.On("GetByUserID", "user123", true).Return(userWallet, nil)
		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockWallets.On("SubtractBalance", mock.Anything, int64(10),
			mock.MatchedBy(func(amount decimal.Decimal) bool {
				return amount.Equal(decimal.NewFromFloat(12.48))
			})).Return(nil)
		mockTxns.On("Create", mock.Anything, mock.MatchedBy(func(txn *model.WalletTransaction) bool {
			return txn.Kind == model.TransactionKindDebit &&
				txn.Status == model.TransactionStatusSuccess
		})).Return(nil)

		txn, err := svc.DebitForFee(ctx, cmd)

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionKindDebit, txn.Kind)
		mockWallets.AssertExpectations(t)
	})

	t.Run("Computes the fee from collected quantity", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewWalletService(mockWallets, mockTxns, mockTx, walletConfig(), logger)

		mockWallets.On("GetByUserID", "user123", true).Return(userWallet, nil)
		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		// 520kg at 0.024 per kg.
		mockWallets.On("SubtractBalance", mock.Anything, int64(10),
			mock.MatchedBy(func(amount decimal.Decimal) bool {
				return amount.Equal(decimal.NewFromFloat(12.48))
			})).Return(nil)
		mockTxns.On("Create", mock.Anything, mock.Anything).Return(nil)

		txn, err := svc.DebitForFee(ctx, service.DebitForFeeCommand{
			UserID:     "user123",
			QuantityKg: decimal.NewFromInt(520),
		})

		assert.NoError(t, err)
		assert.True(t, txn.Amount.Equal(decimal.NewFromFloat(12.48)))
	})

	t.Run("Insufficient balance is rejected without a transaction", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewWalletService(mockWallets, mockTxns, mockTx, walletConfig(), logger)

		mockWallets.On("GetByUserID", "user123", true).Return(userWallet, nil)
		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockWallets.On("SubtractBalance", mock.Anything, int64(10), mock.Anything).
			Return(repository.ErrNoRowsAffected)

		_, err := svc.DebitForFee(ctx, cmd)

		var serviceErr service.Error
		assert.True(t, errors.As(err, &serviceErr))
		assert.Equal(t, constants.ErrCodeInsufficientFunds, serviceErr.Code)
		mockTxns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Rejects non-positive amount", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewWalletService(mockWallets, mockTxns, mockTx, walletConfig(), logger)

		_, err := svc.DebitForFee(ctx, service.DebitForFeeCommand{UserID: "user123", Amount: decimal.Zero})

		var serviceErr service.Error
		assert.True(t, errors.As(err, &serviceErr))
		assert.Equal(t, constants.ErrCodeInvalidAmount, serviceErr.Code)
		mockWallets.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
	})
}

func TestWallet_ListTransactions(t *testing.T) {
	logger := zap.NewNop()

	userWallet := &model.Wallet{ID: 10, UserID: "user123", Active: true}

	t.Run("Clamps the page size to the configured limit", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewWalletService(mockWallets, mockTxns, mockTx, walletConfig(), logger)

		mockWallets.On("GetByUserID", "user123", false).Return(userWallet, nil)
		mockTxns.On("ListByWallet", int64(10), 50, 0).Return([]model.WalletTransaction{}, nil)

		_, err := svc.ListTransactions(service.ListTransactionsQuery{UserID: "user123", Limit: 500})

		assert.NoError(t, err)
		mockTxns.AssertCalled(t, "ListByWallet", int64(10), 50, 0)
	})

	t.Run("Unknown wallet is rejected", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewWalletService(mockWallets, mockTxns, mockTx, walletConfig(), logger)

		mockWallets.On("GetByUserID", "ghost", false).Return(nil, repository.ErrWalletNotFound)

		_, err := svc.ListTransactions(service.ListTransactionsQuery{UserID: "ghost"})

		var serviceErr service.Error
		assert.True(t, errors.As(err, &serviceErr))
		assert.Equal(t, constants.ErrCodeWalletNotFound, serviceErr.Code)
	})
}
