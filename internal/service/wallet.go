package service

import (
	"context"
	"errors"
	"time"

	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/constants"
	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type WalletService interface {
	ProvisionWallet(ctx context.Context, cmd ProvisionWalletCommand) (*model.Wallet, error)
	GetWallet(userID string) (*model.Wallet, error)
	ListTransactions(query ListTransactionsQuery) ([]model.WalletTransaction, error)
	DebitForFee(ctx context.Context, cmd DebitForFeeCommand) (*model.WalletTransaction, error)
}

type wallet struct {
	walletRepo repository.WalletRepository
	txnRepo    repository.WalletTransactionRepository
	txManager  repository.TxManager
	cfg        config.Wallet
	logger     *zap.Logger
}

func NewWalletService(walletRepo repository.WalletRepository, txnRepo repository.WalletTransactionRepository,
	txManager repository.TxManager, cfg *config.Config, logger *zap.Logger) WalletService {
	return &wallet{walletRepo: walletRepo, txnRepo: txnRepo, txManager: txManager,
		cfg: cfg.Wallet, logger: logger}
}

// ProvisionWallet creates the user's wallet exactly once, crediting the
// welcome bonus in the same transaction when enabled. The user-creation
// workflow calls this synchronously and surfaces any error to the
// caller instead of losing it in a background hook.
func (w *wallet) ProvisionWallet(ctx context.Context, cmd ProvisionWalletCommand) (*model.Wallet, error) {
	newWallet := model.Wallet{
		UserID:    cmd.UserID,
		Balance:   decimal.Zero,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := w.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := w.walletRepo.Create(ctx, &newWallet); err != nil {
			if errors.Is(err, repository.ErrWalletDuplicate) {
				w.logger.Warn("Wallet already provisioned", zap.String("userID", cmd.UserID))
				return NewServiceError(constants.ErrCodeWalletExists, err)
			}
			return NewServiceError(ErrCodeDatabase, err)
		}

		bonus := w.cfg.WelcomeBonus
		if !bonus.Enabled || !bonus.Amount.IsPositive() {
			return nil
		}

		bonusTxn := model.WalletTransaction{
			WalletID:    newWallet.ID,
			Amount:      bonus.Amount,
			Kind:        model.TransactionKindCredit,
			Status:      model.TransactionStatusSuccess,
			Description: bonus.Description,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		if err := w.txnRepo.Create(ctx, &bonusTxn); err != nil {
			return NewServiceError(ErrCodeDatabase, err)
		}

		if err := w.walletRepo.SetBalance(ctx, newWallet.ID, bonus.Amount); err != nil {
			return NewServiceError(ErrCodeDatabase, err)
		}

		newWallet.Balance = bonus.Amount
		return nil
	})

	if err != nil {
		return nil, err
	}

	w.logger.Info("Wallet provisioned",
		zap.String("userID", cmd.UserID),
		zap.Int64("walletID", newWallet.ID),
		zap.String("balance", newWallet.Balance.String()))

	return &newWallet, nil
}

func (w *wallet) GetWallet(userID string) (*model.Wallet, error) {
	found, err := w.walletRepo.GetByUserID(userID, false)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return nil, NewServiceError(constants.ErrCodeWalletNotFound, err)
		}
		return nil, NewServiceError(ErrCodeDatabase, err)
	}

	return found, nil
}

func (w *wallet) ListTransactions(query ListTransactionsQuery) ([]model.WalletTransaction, error) {
	found, err := w.walletRepo.GetByUserID(query.UserID, false)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return nil, NewServiceError(constants.ErrCodeWalletNotFound, err)
		}
		return nil, NewServiceError(ErrCodeDatabase, err)
	}

	limit := query.Limit
	if limit <= 0 || limit > w.cfg.TransactionsLimit {
		limit = w.cfg.TransactionsLimit
	}

	txns, err := w.txnRepo.ListByWallet(found.ID, limit, query.Offset)
	if err != nil {
		return nil, NewServiceError(ErrCodeDatabase, err)
	}

	return txns, nil
}

// DebitForFee is the collaborator surface for collection billing. It
// reuses the guarded subtract primitive, so the non-negative balance
// invariant holds on this path exactly as it does for credits.
func (w *wallet) DebitForFee(ctx context.Context, cmd DebitForFeeCommand) (*model.WalletTransaction, error) {
	amount := cmd.Amount
	if amount.IsZero() && cmd.QuantityKg.IsPositive() {
		amount = cmd.QuantityKg.Mul(w.cfg.FeePerKg).Round(2)
	}

	if !amount.IsPositive() {
		return nil, NewServiceError(constants.ErrCodeInvalidAmount, errors.New(constants.ErrCodeInvalidAmount))
	}

	found, err := w.walletRepo.GetByUserID(cmd.UserID, true)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return nil, NewServiceError(constants.ErrCodeWalletNotFound, err)
		}
		return nil, NewServiceError(ErrCodeDatabase, err)
	}

	debitTxn := model.WalletTransaction{
		WalletID:    found.ID,
		Amount:      amount,
		Kind:        model.TransactionKindDebit,
		Status:      model.TransactionStatusSuccess,
		Description: cmd.Description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	err = w.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := w.walletRepo.SubtractBalance(ctx, found.ID, amount); err != nil {
			if errors.Is(err, repository.ErrNoRowsAffected) {
				return NewServiceError(constants.ErrCodeInsufficientFunds, ErrInsufficientFunds)
			}
			return NewServiceError(ErrCodeDatabase, err)
		}

		if err := w.txnRepo.Create(ctx, &debitTxn); err != nil {
			return NewServiceError(ErrCodeDatabase, err)
		}

		return nil
	})

	if err != nil {
		w.logger.Warn("Fee debit rejected",
			zap.String("userID", cmd.UserID),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, err
	}

	w.logger.Info("Fee debited",
		zap.String("userID", cmd.UserID),
		zap.String("amount", amount.String()),
		zap.String("description", cmd.Description))

	return &debitTxn, nil
}
