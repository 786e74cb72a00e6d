package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/constants"
	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/adi-0903/wallet-service/pkg/breaker"
	"github.com/adi-0903/wallet-service/pkg/paymentgateway"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const paisePerRupee = 100

// TopupService starts wallet recharges: it creates the gateway order
// and records the PENDING ledger rows the verification pipeline later
// settles.
type TopupService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error)
}

type topup struct {
	walletRepo repository.WalletRepository
	txnRepo    repository.WalletTransactionRepository
	txManager  repository.TxManager
	gateway    paymentgateway.Gateway
	breaker    breaker.CircuitBreaker
	cfg        config.Wallet
	gwCfg      config.Gateway
	logger     *zap.Logger
}

func NewTopupService(walletRepo repository.WalletRepository, txnRepo repository.WalletTransactionRepository,
	txManager repository.TxManager, gateway paymentgateway.Gateway, cb breaker.CircuitBreaker,
	cfg *config.Config, logger *zap.Logger) TopupService {
	return &topup{walletRepo: walletRepo, txnRepo: txnRepo, txManager: txManager,
		gateway: gateway, breaker: cb, cfg: cfg.Wallet, gwCfg: cfg.Gateway, logger: logger}
}

func (t *topup) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*CreateOrderResult, error) {
	if !cmd.Amount.IsPositive() {
		return nil, NewServiceError(constants.ErrCodeInvalidAmount, errors.New(constants.ErrCodeInvalidAmount))
	}

	userWallet, err := t.walletRepo.GetByUserID(cmd.UserID, true)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return nil, NewServiceError(constants.ErrCodeWalletNotFound, err)
		}
		return nil, NewServiceError(ErrCodeDatabase, err)
	}

	// Back-pressure: a wallet with too many unsettled orders in the
	// recent window has to let them resolve before starting another.
	since := time.Now().Add(-t.cfg.PendingWindow)
	pending, err := t.txnRepo.CountRecentPending(userWallet.ID, since)
	if err != nil {
		return nil, NewServiceError(ErrCodeDatabase, err)
	}

	if pending >= int64(t.cfg.MaxPending) {
		t.logger.Warn("Too many pending recharges",
			zap.String("userID", cmd.UserID),
			zap.Int64("pending", pending))
		return nil, NewServiceError(constants.ErrCodeTooManyPending, errors.New(constants.ErrCodeTooManyPending))
	}

	if !t.breaker.Allow(ctx) {
		return nil, NewServiceError(constants.ErrCodeGatewayUnavailable, paymentgateway.ErrUnavailable)
	}

	receipt := fmt.Sprintf("wallet_%d_%s", userWallet.ID, uuid.NewString()[:8])
	paise := cmd.Amount.Mul(decimal.NewFromInt(paisePerRupee)).IntPart()

	order, err := t.gateway.CreateOrder(ctx, paise, receipt)
	if err != nil {
		if paymentgateway.Retryable(err) {
			t.breaker.RecordFailure(ctx)
		}
		t.logger.Error("Gateway order creation failed",
			zap.String("userID", cmd.UserID),
			zap.Error(err))
		return nil, NewServiceError(constants.ErrCodeGatewayUnavailable, err)
	}

	t.breaker.RecordSuccess(ctx)

	bonusAmount, bonusDescription := CalculateBonus(t.cfg.BonusTiers, cmd.Amount)

	now := time.Now()
	parent := model.WalletTransaction{
		WalletID:    userWallet.ID,
		Amount:      cmd.Amount,
		Kind:        model.TransactionKindCredit,
		Status:      model.TransactionStatusPending,
		OrderID:     &order.ID,
		Description: "Wallet recharge",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = t.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := t.txnRepo.Create(ctx, &parent); err != nil {
			return NewServiceError(ErrCodeDatabase, err)
		}

		if !bonusAmount.IsPositive() {
			return nil
		}

		child := model.WalletTransaction{
			WalletID:    userWallet.ID,
			Amount:      bonusAmount,
			Kind:        model.TransactionKindCredit,
			Status:      model.TransactionStatusPending,
			ParentID:    &parent.ID,
			Description: bonusDescription,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := t.txnRepo.Create(ctx, &child); err != nil {
			return NewServiceError(ErrCodeDatabase, err)
		}

		return nil
	})
	if err != nil {
		// The gateway order exists but the ledger rows do not, so
		// nothing will ever credit it. Surface the failure.
		t.logger.Error("Failed to record recharge order",
			zap.String("orderID", order.ID),
			zap.Error(err))
		return nil, err
	}

	t.logger.Info("Recharge order created",
		zap.String("userID", cmd.UserID),
		zap.String("orderID", order.ID),
		zap.String("amount", cmd.Amount.String()),
		zap.String("bonus", bonusAmount.String()))

	return &CreateOrderResult{
		OrderID:     order.ID,
		Amount:      cmd.Amount,
		BonusAmount: bonusAmount,
		Currency:    t.gwCfg.Currency,
		KeyID:       t.gwCfg.KeyID,
	}, nil
}
