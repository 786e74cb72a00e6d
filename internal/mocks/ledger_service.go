package mocks

import (
	"context"
	"time"

	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/internal/service"
	"github.com/stretchr/testify/mock"
)

type LedgerService struct {
	mock.Mock
}

func (l *LedgerService) CompleteSuccess(ctx context.Context, cmd service.CompleteSuccessCommand) (*model.WalletTransaction, error) {
	args := l.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (l *LedgerService) MarkFailed(ctx context.Context, cmd service.MarkFailedCommand) (*model.WalletTransaction, error) {
	args := l.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (l *LedgerService) ExpirePendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := l.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
