package service

import (
	"context"
	"errors"
	"time"

	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/internal/repository"
	"go.uber.org/zap"
)

// LedgerService owns every transition out of PENDING. Settlement is
// serialized on the transaction row, so the webhook, the verification
// worker and the client callback can all race on the same order and
// the wallet is credited exactly once.
type LedgerService interface {
	CompleteSuccess(ctx context.Context, cmd CompleteSuccessCommand) (*model.WalletTransaction, error)
	MarkFailed(ctx context.Context, cmd MarkFailedCommand) (*model.WalletTransaction, error)
	ExpirePendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type ledger struct {
	walletRepo repository.WalletRepository
	txnRepo    repository.WalletTransactionRepository
	txManager  repository.TxManager
	logger     *zap.Logger
}

func NewLedgerService(walletRepo repository.WalletRepository, txnRepo repository.WalletTransactionRepository,
	txManager repository.TxManager, logger *zap.Logger) LedgerService {
	return &ledger{walletRepo: walletRepo, txnRepo: txnRepo, txManager: txManager, logger: logger}
}

// CompleteSuccess settles the order: the parent credit goes SUCCESS,
// the wallet balance absorbs the amount, and any pending bonus
// children are credited in the same transaction. Calling it again for
// the same order is a no-op returning the settled row.
func (l *ledger) CompleteSuccess(ctx context.Context, cmd CompleteSuccessCommand) (*model.WalletTransaction, error) {
	var settled *model.WalletTransaction

	err := l.txManager.WithTx(ctx, func(ctx context.Context) error {
		txn, err := l.txnRepo.GetByOrderIDForUpdate(ctx, cmd.OrderID)
		if err != nil {
			if errors.Is(err, repository.ErrTransactionNotFound) {
				return ErrTransactionNotFound
			}
			return NewServiceError(ErrCodeDatabase, err)
		}

		if txn.Status == model.TransactionStatusSuccess {
			l.logger.Info("Order already settled, skipping",
				zap.String("orderID", cmd.OrderID))
			settled = txn
			return nil
		}

		if txn.Status == model.TransactionStatusFailed {
			l.logger.Warn("Refusing to settle failed order",
				zap.String("orderID", cmd.OrderID))
			return ErrAlreadyTerminal
		}

		if cmd.ObservedAmount != nil && !cmd.ObservedAmount.Equal(txn.Amount) {
			// The ledger row is authoritative; the mismatch is only
			// flagged for reconciliation.
			l.logger.Warn("Gateway amount differs from ledger amount",
				zap.String("orderID", cmd.OrderID),
				zap.String("ledgerAmount", txn.Amount.String()),
				zap.String("observedAmount", cmd.ObservedAmount.String()))
		}

		now := time.Now()
		txn.Status = model.TransactionStatusSuccess
		if cmd.PaymentID != "" {
			txn.PaymentID = &cmd.PaymentID
		}
		txn.UpdatedAt = now

		if err := l.txnRepo.Update(ctx, txn); err != nil {
			return NewServiceError(ErrCodeDatabase, err)
		}

		credit := txn.Amount

		children, err := l.txnRepo.GetPendingChildrenForUpdate(ctx, txn.ID)
		if err != nil {
			return NewServiceError(ErrCodeDatabase, err)
		}

		for i := range children {
			children[i].Status = model.TransactionStatusSuccess
			children[i].UpdatedAt = now
			if err := l.txnRepo.Update(ctx, &children[i]); err != nil {
				return NewServiceError(ErrCodeDatabase, err)
			}
			credit = credit.Add(children[i].Amount)
		}

		if err := l.walletRepo.AddBalance(ctx, txn.WalletID, credit); err != nil {
			return NewServiceError(ErrCodeDatabase, err)
		}

		l.logger.Info("Order settled",
			zap.String("orderID", cmd.OrderID),
			zap.String("paymentID", cmd.PaymentID),
			zap.String("credited", credit.String()),
			zap.Int("bonusChildren", len(children)))

		settled = txn
		return nil
	})

	if err != nil {
		return nil, err
	}

	return settled, nil
}

// MarkFailed finalizes the order as FAILED together with its pending
// bonus children. Terminal orders are left untouched and returned
// unchanged, so retries and late failure signals stay cheap.
func (l *ledger) MarkFailed(ctx context.Context, cmd MarkFailedCommand) (*model.WalletTransaction, error) {
	var failed *model.WalletTransaction

	err := l.txManager.WithTx(ctx, func(ctx context.Context) error {
		txn, err := l.txnRepo.GetByOrderIDForUpdate(ctx, cmd.OrderID)
		if err != nil {
			if errors.Is(err, repository.ErrTransactionNotFound) {
				return ErrTransactionNotFound
			}
			return NewServiceError(ErrCodeDatabase, err)
		}

		if txn.Status == model.TransactionStatusFailed {
			failed = txn
			return nil
		}

		if txn.Status == model.TransactionStatusSuccess {
			l.logger.Warn("Ignoring failure signal for settled order",
				zap.String("orderID", cmd.OrderID))
			failed = txn
			return nil
		}

		txn.Status = model.TransactionStatusFailed
		if cmd.Reason != "" {
			txn.Description = txn.Description + " | " + cmd.Reason
		}
		txn.UpdatedAt = time.Now()

		if err := l.txnRepo.Update(ctx, txn); err != nil {
			return NewServiceError(ErrCodeDatabase, err)
		}

		if err := l.txnRepo.FailPendingChildren(ctx, txn.ID); err != nil {
			return NewServiceError(ErrCodeDatabase, err)
		}

		l.logger.Info("Order failed",
			zap.String("orderID", cmd.OrderID),
			zap.String("reason", cmd.Reason))

		failed = txn
		return nil
	})

	if err != nil {
		return nil, err
	}

	return failed, nil
}

// ExpirePendingOlderThan bulk-fails orders that outlived the pending
// ceiling. No balances move; the orders were never credited.
func (l *ledger) ExpirePendingOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	expired, err := l.txnRepo.ExpirePendingBefore(ctx, cutoff)
	if err != nil {
		return 0, NewServiceError(ErrCodeDatabase, err)
	}

	if expired > 0 {
		l.logger.Info("Expired stale pending transactions",
			zap.Int64("count", expired),
			zap.Time("cutoff", cutoff))
	}

	return expired, nil
}
