package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/adi-0903/wallet-service/internal/scheduler"
	"github.com/adi-0903/wallet-service/pkg/lock"
	"go.uber.org/zap"
)

const sweepLockKey = "sweep:pending"

// SweepResult summarizes one reconciliation pass.
type SweepResult struct {
	Recent  int
	Medium  int
	Old     int
	Expired int64
}

func (r SweepResult) Dispatched() int {
	return r.Recent + r.Medium + r.Old
}

// SweepService is the safety net under the event-driven verification
// path: on every pass it finds PENDING orders nothing has touched
// lately and re-enqueues them, staggered so a large backlog does not
// land on the gateway at once.
type SweepService interface {
	Sweep(ctx context.Context) (SweepResult, error)
}

type sweep struct {
	txnRepo    repository.WalletTransactionRepository
	ledger     LedgerService
	dispatcher scheduler.Dispatcher
	locker     lock.Locker
	cfg        config.Sweeper
	logger     *zap.Logger
}

func NewSweepService(txnRepo repository.WalletTransactionRepository, ledger LedgerService,
	dispatcher scheduler.Dispatcher, locker lock.Locker, cfg *config.Config, logger *zap.Logger) SweepService {
	return &sweep{txnRepo: txnRepo, ledger: ledger, dispatcher: dispatcher, locker: locker,
		cfg: cfg.Sweeper, logger: logger}
}

// bucket pairs an age range of pending orders with the queue and
// per-item quiet period appropriate for that age. Recent orders are
// most likely to settle, so they get the largest batch and the highest
// priority; ancient ones are almost certainly dead and only trickle.
type bucket struct {
	name            string
	createdAfter    *time.Duration
	createdBefore   *time.Duration
	notUpdatedSince time.Duration
	limit           int
	queue           string
	countdownFactor int
}

func (s *sweep) buckets() []bucket {
	recent := 30 * time.Minute
	medium := 6 * time.Hour

	return []bucket{
		{name: "recent", createdAfter: &recent, notUpdatedSince: 2 * time.Minute,
			limit: s.cfg.RecentLimit, queue: scheduler.QueueVerifyHigh, countdownFactor: 1},
		{name: "medium", createdAfter: &medium, createdBefore: &recent, notUpdatedSince: 10 * time.Minute,
			limit: s.cfg.MediumLimit, queue: scheduler.QueueVerifyDefault, countdownFactor: 2},
		{name: "old", createdBefore: &medium, notUpdatedSince: time.Hour,
			limit: s.cfg.OldLimit, queue: scheduler.QueueVerifyLow, countdownFactor: 3},
	}
}

func (s *sweep) Sweep(ctx context.Context) (SweepResult, error) {
	token, acquired, err := s.locker.Acquire(ctx, sweepLockKey, s.cfg.LockTTL)
	if err != nil {
		return SweepResult{}, err
	}

	if !acquired {
		return SweepResult{}, ErrSweepAlreadyRunning
	}

	defer func() {
		if err := s.locker.Release(ctx, sweepLockKey, token); err != nil {
			s.logger.Warn("Failed to release sweep lock", zap.Error(err))
		}
	}()

	started := time.Now()
	result := SweepResult{}

	counts := make(map[string][]model.WalletTransaction, 3)
	total := 0

	for _, b := range s.buckets() {
		txns, err := s.txnRepo.ListPending(s.filterFor(b, started))
		if err != nil {
			return result, NewServiceError(ErrCodeDatabase, err)
		}
		counts[b.name] = txns
		total += len(txns)
	}

	// Spread dispatches further apart when the backlog is large so a
	// burst of sweeps does not stampede the gateway.
	delayFactor := total / 5
	if delayFactor < 1 {
		delayFactor = 1
	}
	if delayFactor > 10 {
		delayFactor = 10
	}

	for _, b := range s.buckets() {
		dispatched, err := s.dispatch(ctx, counts[b.name], b, delayFactor)
		if err != nil {
			return result, err
		}

		switch b.name {
		case "recent":
			result.Recent = dispatched
		case "medium":
			result.Medium = dispatched
		case "old":
			result.Old = dispatched
		}
	}

	expired, err := s.ledger.ExpirePendingOlderThan(ctx, started.Add(-s.cfg.ExpiryPeriod))
	if err != nil {
		return result, err
	}
	result.Expired = expired

	if result.Dispatched() > 0 || result.Expired > 0 {
		s.logger.Info("Sweep pass finished",
			zap.Int("recent", result.Recent),
			zap.Int("medium", result.Medium),
			zap.Int("old", result.Old),
			zap.Int64("expired", result.Expired),
			zap.Int("delayFactorSeconds", delayFactor),
			zap.Duration("duration", time.Since(started)))
	}

	return result, nil
}

func (s *sweep) filterFor(b bucket, now time.Time) repository.PendingFilter {
	filter := repository.PendingFilter{
		NotUpdatedSince: now.Add(-b.notUpdatedSince),
		Limit:           b.limit,
	}

	if b.createdAfter != nil {
		after := now.Add(-*b.createdAfter)
		filter.CreatedAfter = &after
	}
	if b.createdBefore != nil {
		before := now.Add(-*b.createdBefore)
		filter.CreatedBefore = &before
	}

	return filter
}

func (s *sweep) dispatch(ctx context.Context, txns []model.WalletTransaction, b bucket, delayFactor int) (int, error) {
	dispatched := 0

	for idx, txn := range txns {
		if txn.OrderID == nil {
			continue
		}

		body, err := json.Marshal(VerifyJob{OrderID: *txn.OrderID})
		if err != nil {
			return dispatched, err
		}

		countdown := time.Duration(delayFactor*b.countdownFactor+idx) * time.Second
		if err := s.dispatcher.EnqueueIn(ctx, b.queue, body, countdown); err != nil {
			return dispatched, err
		}

		dispatched++
	}

	return dispatched, nil
}
