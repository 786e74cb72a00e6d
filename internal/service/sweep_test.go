package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/mocks"
	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/adi-0903/wallet-service/internal/scheduler"
	"github.com/adi-0903/wallet-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func sweeperConfig() *config.Config {
	return &config.Config{
		Sweeper: config.Sweeper{
			Interval:     time.Minute,
			LockTTL:      50 * time.Second,
			RecentLimit:  20,
			MediumLimit:  15,
			OldLimit:     10,
			ExpiryPeriod: 48 * time.Hour,
		},
	}
}

func pendingBatch(orderIDs ...string) []model.WalletTransaction {
	txns := make([]model.WalletTransaction, 0, len(orderIDs))
	for i, id := range orderIDs {
		orderID := id
		txns = append(txns, model.WalletTransaction{
			ID:       int64(i + 1),
			WalletID: 10,
			Status:   model.TransactionStatusPending,
			OrderID:  &orderID,
		})
	}
	return txns
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("Dispatches each age bucket to its queue", func(t *testing.T) {
		mockTxns := &mocks.WalletTransactionRepository{}
		mockLedger := &mocks.LedgerService{}
		mockDispatcher := &mocks.Dispatcher{}
		mockLocker := &mocks.Locker{}

		svc := service.NewSweepService(mockTxns, mockLedger, mockDispatcher, mockLocker, sweeperConfig(), logger)

		mockLocker.On("Acquire", ctx, "sweep:pending", 50*time.Second).Return("token", true, nil)
		mockLocker.On("Release", ctx, "sweep:pending", "token").Return(nil)

		recent := pendingBatch("order_r1", "order_r2")
		medium := pendingBatch("order_m1")
		old := pendingBatch("order_o1")

		mockTxns.On("ListPending", mock.MatchedBy(func(f repository.PendingFilter) bool {
			return f.Limit == 20
		})).Return(recent, nil)
		mockTxns.On("ListPending", mock.MatchedBy(func(f repository.PendingFilter) bool {
			return f.Limit == 15
		})).Return(medium, nil)
		mockTxns.On("ListPending", mock.MatchedBy(func(f repository.PendingFilter) bool {
			return f.Limit == 10
		})).Return(old, nil)

		mockDispatcher.On("EnqueueIn", ctx, scheduler.QueueVerifyHigh, mock.Anything, mock.Anything).Return(nil)
		mockDispatcher.On("EnqueueIn", ctx, scheduler.QueueVerifyDefault, mock.Anything, mock.Anything).Return(nil)
		mockDispatcher.On("EnqueueIn", ctx, scheduler.QueueVerifyLow, mock.Anything, mock.Anything).Return(nil)

		mockLedger.On("ExpirePendingOlderThan", ctx, mock.Anything).Return(int64(0), nil)

		result, err := svc.Sweep(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, result.Recent)
		assert.Equal(t, 1, result.Medium)
		assert.Equal(t, 1, result.Old)
		assert.Equal(t, 4, result.Dispatched())

		// Four pending orders keep the minimum stagger: factors 1, 2
		// and 3 seconds plus the index within the batch.
		mockDispatcher.AssertCalled(t, "EnqueueIn", ctx, scheduler.QueueVerifyHigh, mock.Anything, 1*time.Second)
		mockDispatcher.AssertCalled(t, "EnqueueIn", ctx, scheduler.QueueVerifyHigh, mock.Anything, 2*time.Second)
		mockDispatcher.AssertCalled(t, "EnqueueIn", ctx, scheduler.QueueVerifyDefault, mock.Anything, 2*time.Second)
		mockDispatcher.AssertCalled(t, "EnqueueIn", ctx, scheduler.QueueVerifyLow, mock.Anything, 3*time.Second)

		mockLocker.AssertExpectations(t)
	})

	t.Run("Concurrent sweep is rejected by the lock", func(t *testing.T) {
		mockTxns := &mocks.WalletTransactionRepository{}
		mockLedger := &mocks.LedgerService{}
		mockDispatcher := &mocks.Dispatcher{}
		mockLocker := &mocks.Locker{}

		svc := service.NewSweepService(mockTxns, mockLedger, mockDispatcher, mockLocker, sweeperConfig(), logger)

		mockLocker.On("Acquire", ctx, "sweep:pending", 50*time.Second).Return("", false, nil)

		_, err := svc.Sweep(ctx)

		assert.ErrorIs(t, err, service.ErrSweepAlreadyRunning)
		mockTxns.AssertNotCalled(t, "ListPending", mock.Anything)
	})

	t.Run("Expiry count is reported", func(t *testing.T) {
		mockTxns := &mocks.WalletTransactionRepository{}
		mockLedger := &mocks.LedgerService{}
		mockDispatcher := &mocks.Dispatcher{}
		mockLocker := &mocks.Locker{}

		svc := service.NewSweepService(mockTxns, mockLedger, mockDispatcher, mockLocker, sweeperConfig(), logger)

		mockLocker.On("Acquire", ctx, "sweep:pending", 50*time.Second).Return("token", true, nil)
		mockLocker.On("Release", ctx, "sweep:pending", "token").Return(nil)
		mockTxns.On("ListPending", mock.Anything).Return([]model.WalletTransaction{}, nil)
		mockLedger.On("ExpirePendingOlderThan", ctx, mock.Anything).Return(int64(3), nil)

		result, err := svc.Sweep(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, result.Dispatched())
		assert.Equal(t, int64(3), result.Expired)
	})
}
