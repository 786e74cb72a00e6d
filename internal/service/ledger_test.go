package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/adi-0903/wallet-service/internal/mocks"
	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/adi-0903/wallet-service/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func pendingTransaction(orderID string, amount int64) *model.WalletTransaction {
	return &model.WalletTransaction{
		ID:        1,
		WalletID:  10,
		Amount:    decimal.NewFromInt(amount),
		Kind:      model.TransactionKindCredit,
		Status:    model.TransactionStatusPending,
		OrderID:   &orderID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestLedger_CompleteSuccess(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	cmd := service.CompleteSuccessCommand{OrderID: "order_123", PaymentID: "pay_456"}

	t.Run("Settles pending order and credits bonus children", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewLedgerService(mockWallets, mockTxns, mockTx, logger)

		parent := pendingTransaction("order_123", 500)
		child := model.WalletTransaction{
			ID:       2,
			WalletID: 10,
			Amount:   decimal.NewFromInt(25),
			Kind:     model.TransactionKindCredit,
			Status:   model.TransactionStatusPending,
			ParentID: &parent.ID,
		}

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockTxns.On("GetByOrderIDForUpdate", mock.Anything, "order_123").Return(parent, nil)
		mockTxns.On("Update", mock.Anything, mock.Anything).Return(nil)
		mockTxns.On("GetPendingChildrenForUpdate", mock.Anything, int64(1)).
			Return([]model.WalletTransaction{child}, nil)
		mockWallets.On("AddBalance", mock.Anything, int64(10),
			mock.MatchedBy(func(amount decimal.Decimal) bool {
				return amount.Equal(decimal.NewFromInt(525))
			})).Return(nil)

		settled, err := svc.CompleteSuccess(ctx, cmd)

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatusSuccess, settled.Status)
		assert.Equal(t, "pay_456", *settled.PaymentID)

		mockWallets.AssertExpectations(t)
		mockTxns.AssertExpectations(t)
		mockTxns.AssertNumberOfCalls(t, "Update", 2)
	})

	t.Run("Already settled order is a no-op", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewLedgerService(mockWallets, mockTxns, mockTx, logger)

		settled := pendingTransaction("order_123", 500)
		settled.Status = model.TransactionStatusSuccess

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockTxns.On("GetByOrderIDForUpdate", mock.Anything, "order_123").Return(settled, nil)

		result, err := svc.CompleteSuccess(ctx, cmd)

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatusSuccess, result.Status)

		mockWallets.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
		mockTxns.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Failed order cannot be settled", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewLedgerService(mockWallets, mockTxns, mockTx, logger)

		failed := pendingTransaction("order_123", 500)
		failed.Status = model.TransactionStatusFailed

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockTxns.On("GetByOrderIDForUpdate", mock.Anything, "order_123").Return(failed, nil)

		_, err := svc.CompleteSuccess(ctx, cmd)

		assert.ErrorIs(t, err, service.ErrAlreadyTerminal)
		mockWallets.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown order returns not found", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewLedgerService(mockWallets, mockTxns, mockTx, logger)

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockTxns.On("GetByOrderIDForUpdate", mock.Anything, "order_123").
			Return(nil, repository.ErrTransactionNotFound)

		_, err := svc.CompleteSuccess(ctx, cmd)

		assert.ErrorIs(t, err, service.ErrTransactionNotFound)
	})
}

func TestLedger_MarkFailed(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	cmd := service.MarkFailedCommand{OrderID: "order_123", Reason: "gateway reported expired"}

	t.Run("Fails pending order and its children", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewLedgerService(mockWallets, mockTxns, mockTx, logger)

		parent := pendingTransaction("order_123", 500)
		parent.Description = "Wallet recharge"

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockTxns.On("GetByOrderIDForUpdate", mock.Anything, "order_123").Return(parent, nil)
		mockTxns.On("Update", mock.Anything, mock.MatchedBy(func(txn *model.WalletTransaction) bool {
			return txn.Status == model.TransactionStatusFailed &&
				txn.Description == "Wallet recharge | gateway reported expired"
		})).Return(nil)
		mockTxns.On("FailPendingChildren", mock.Anything, int64(1)).Return(nil)

		failed, err := svc.MarkFailed(ctx, cmd)

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatusFailed, failed.Status)

		mockTxns.AssertExpectations(t)
		mockWallets.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failing an already failed order succeeds quietly", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewLedgerService(mockWallets, mockTxns, mockTx, logger)

		failed := pendingTransaction("order_123", 500)
		failed.Status = model.TransactionStatusFailed

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockTxns.On("GetByOrderIDForUpdate", mock.Anything, "order_123").Return(failed, nil)

		result, err := svc.MarkFailed(ctx, cmd)

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatusFailed, result.Status)
		mockTxns.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Settled order is returned unchanged", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewLedgerService(mockWallets, mockTxns, mockTx, logger)

		settled := pendingTransaction("order_123", 500)
		settled.Status = model.TransactionStatusSuccess

		mockTx.On("WithTx", ctx, mock.Anything).Return(nil)
		mockTxns.On("GetByOrderIDForUpdate", mock.Anything, "order_123").Return(settled, nil)

		result, err := svc.MarkFailed(ctx, cmd)

		assert.NoError(t, err)
		assert.Equal(t, model.TransactionStatusSuccess, result.Status)
		mockTxns.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		mockTxns.AssertNotCalled(t, "FailPendingChildren", mock.Anything, mock.Anything)
	})
}

func TestLedger_ExpirePendingOlderThan(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("Returns the expired row count", func(t *testing.T) {
		mockWallets := &mocks.WalletRepository{}
		mockTxns := &mocks.WalletTransactionRepository{}
		mockTx := &mocks.TxManager{}

		svc := service.NewLedgerService(mockWallets, mockTxns, mockTx, logger)

		cutoff := time.Now().Add(-48 * time.Hour)
		mockTxns.On("ExpirePendingBefore", ctx, cutoff).Return(int64(7), nil)

		expired, err := svc.ExpirePendingOlderThan(ctx, cutoff)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), expired)
	})
}
