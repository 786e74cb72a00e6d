package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/adi-0903/wallet-service/internal/scheduler"
	"github.com/adi-0903/wallet-service/pkg/breaker"
	"github.com/adi-0903/wallet-service/pkg/lock"
	"github.com/adi-0903/wallet-service/pkg/paymentgateway"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Verification outcomes, logged with every run so operators can trace
// what happened to an order without reading the state machine.
const (
	OutcomeSettled         = "settled"
	OutcomeFailed          = "failed"
	OutcomeForceFailed     = "force_failed"
	OutcomeRescheduled     = "rescheduled"
	OutcomeSkippedBreaker  = "skipped_circuit_open"
	OutcomeSkippedLocked   = "skipped_locked"
	OutcomeSkippedTerminal = "skipped_terminal"
	OutcomeSkippedMissing  = "skipped_missing"
)

// VerifyService reconciles a single PENDING order against the gateway.
// It is driven by the queue consumers; every run either finalizes the
// order or reschedules itself through the dispatcher.
type VerifyService interface {
	Verify(ctx context.Context, job VerifyJob) (outcome string, err error)
}

type verify struct {
	txnRepo    repository.WalletTransactionRepository
	ledger     LedgerService
	gateway    paymentgateway.Gateway
	breaker    breaker.CircuitBreaker
	locker     lock.Locker
	dispatcher scheduler.Dispatcher
	cfg        config.Verifier
	ceiling    time.Duration
	logger     *zap.Logger
}

func NewVerifyService(txnRepo repository.WalletTransactionRepository, ledger LedgerService,
	gateway paymentgateway.Gateway, cb breaker.CircuitBreaker, locker lock.Locker,
	dispatcher scheduler.Dispatcher, cfg *config.Config, logger *zap.Logger) VerifyService {
	return &verify{txnRepo: txnRepo, ledger: ledger, gateway: gateway, breaker: cb,
		locker: locker, dispatcher: dispatcher, cfg: cfg.Verifier,
		ceiling: cfg.Wallet.PendingCeiling, logger: logger}
}

func LockKey(orderID string) string {
	return "payment_verification_" + orderID
}

func (v *verify) Verify(ctx context.Context, job VerifyJob) (string, error) {
	started := time.Now()

	if !v.breaker.Allow(ctx) {
		// No point hammering a tripped gateway; park the job past the
		// breaker window instead of burning an attempt.
		if err := v.reschedule(ctx, job, v.cfg.BreakerRetryIn, false); err != nil {
			return OutcomeSkippedBreaker, err
		}
		v.logger.Info("Verification deferred, circuit open",
			zap.String("orderID", job.OrderID))
		return OutcomeSkippedBreaker, nil
	}

	token, acquired, err := v.locker.Acquire(ctx, LockKey(job.OrderID), v.cfg.LockTTL)
	if err != nil {
		return "", fmt.Errorf("acquiring verification lock: %w", err)
	}

	if !acquired {
		// Another worker (or the webhook path) holds the order.
		if err := v.reschedule(ctx, job, v.cfg.LockRetryIn, false); err != nil {
			return OutcomeSkippedLocked, err
		}
		return OutcomeSkippedLocked, nil
	}

	defer func() {
		if err := v.locker.Release(ctx, LockKey(job.OrderID), token); err != nil {
			v.logger.Warn("Failed to release verification lock",
				zap.String("orderID", job.OrderID), zap.Error(err))
		}
	}()

	outcome, err := v.verifyLocked(ctx, job)

	v.logger.Info("Verification run finished",
		zap.String("orderID", job.OrderID),
		zap.Int("attempt", job.Attempt),
		zap.String("outcome", outcome),
		zap.Duration("duration", time.Since(started)))

	return outcome, err
}

func (v *verify) verifyLocked(ctx context.Context, job VerifyJob) (string, error) {
	txn, err := v.txnRepo.GetByOrderID(job.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			v.logger.Warn("Verification job for unknown order",
				zap.String("orderID", job.OrderID))
			return OutcomeSkippedMissing, nil
		}
		return "", NewServiceError(ErrCodeDatabase, err)
	}

	if txn.Terminal() {
		return OutcomeSkippedTerminal, nil
	}

	if time.Since(txn.CreatedAt) > v.ceiling {
		return v.forceFail(ctx, job.OrderID, "verification window expired")
	}

	if job.Attempt >= v.cfg.MaxAttempts {
		return v.forceFail(ctx, job.OrderID, "max verification attempts reached")
	}

	status, err := v.gateway.FetchStatus(ctx, job.OrderID)
	if err != nil {
		if paymentgateway.Retryable(err) {
			v.breaker.RecordFailure(ctx)
		}

		if errors.Is(err, paymentgateway.ErrBadRequest) || errors.Is(err, paymentgateway.ErrOrderNotFound) {
			// The gateway will never answer differently for this
			// order; polling again is pointless.
			return v.forceFail(ctx, job.OrderID, "gateway rejected order lookup")
		}

		if rescheduleErr := v.reschedule(ctx, job, v.backoff(job.Attempt), true); rescheduleErr != nil {
			return OutcomeRescheduled, rescheduleErr
		}
		return OutcomeRescheduled, nil
	}

	v.breaker.RecordSuccess(ctx)

	switch status.State {
	case paymentgateway.OrderStatePaid:
		observed := decimal.NewFromInt(status.AmountPaid).Div(decimal.NewFromInt(paisePerRupee))
		_, err := v.ledger.CompleteSuccess(ctx, CompleteSuccessCommand{
			OrderID:        job.OrderID,
			PaymentID:      status.PaymentID,
			ObservedAmount: &observed,
		})
		if err != nil {
			if errors.Is(err, ErrAlreadyTerminal) {
				return OutcomeSkippedTerminal, nil
			}
			return "", err
		}
		return OutcomeSettled, nil

	case paymentgateway.OrderStateCancelled, paymentgateway.OrderStateExpired:
		_, err := v.ledger.MarkFailed(ctx, MarkFailedCommand{
			OrderID: job.OrderID,
			Reason:  "gateway reported " + string(status.State),
		})
		if err != nil {
			if errors.Is(err, ErrAlreadyTerminal) {
				return OutcomeSkippedTerminal, nil
			}
			return "", err
		}
		return OutcomeFailed, nil

	default:
		// Still "created". A fresh order may yet be paid; a stale one
		// means the customer abandoned the checkout.
		if time.Since(txn.CreatedAt) > v.cfg.StalenessWindow {
			_, err := v.ledger.MarkFailed(ctx, MarkFailedCommand{
				OrderID: job.OrderID,
				Reason:  "payment not completed within staleness window",
			})
			if err != nil {
				if errors.Is(err, ErrAlreadyTerminal) {
					return OutcomeSkippedTerminal, nil
				}
				return "", err
			}
			return OutcomeFailed, nil
		}

		if err := v.reschedule(ctx, job, v.backoff(job.Attempt), true); err != nil {
			return OutcomeRescheduled, err
		}
		return OutcomeRescheduled, nil
	}
}

func (v *verify) forceFail(ctx context.Context, orderID, reason string) (string, error) {
	_, err := v.ledger.MarkFailed(ctx, MarkFailedCommand{OrderID: orderID, Reason: reason})
	if err != nil {
		if errors.Is(err, ErrAlreadyTerminal) {
			return OutcomeSkippedTerminal, nil
		}
		return "", err
	}

	v.logger.Warn("Order force-failed",
		zap.String("orderID", orderID),
		zap.String("reason", reason))

	return OutcomeForceFailed, nil
}

// backoff doubles per attempt from the base, capped so an order is
// never left unpolled for more than the cap.
func (v *verify) backoff(attempt int) time.Duration {
	delay := v.cfg.BackoffBase
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= v.cfg.BackoffCap {
			return v.cfg.BackoffCap
		}
	}
	return delay
}

// reschedule re-queues the job on the default queue. countAttempt is
// false for lock and breaker deferrals, which say nothing about the
// order itself.
func (v *verify) reschedule(ctx context.Context, job VerifyJob, delay time.Duration, countAttempt bool) error {
	next := job
	if countAttempt {
		next.Attempt++
	}

	body, err := json.Marshal(next)
	if err != nil {
		return err
	}

	return v.dispatcher.EnqueueIn(ctx, scheduler.QueueVerifyDefault, body, delay)
}
