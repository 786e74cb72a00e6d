package service

import (
	"context"
	"os"
	"time"

	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/adi-0903/wallet-service/internal/scheduler"
	"github.com/adi-0903/wallet-service/pkg/mq"
	"github.com/redis/go-redis/v9"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// HealthReport is a point-in-time snapshot of the reconciliation
// pipeline and the worker process hosting it.
type HealthReport struct {
	Time          time.Time      `json:"time"`
	MemoryMB      float64        `json:"memory_mb"`
	CPUPercent    float64        `json:"cpu_percent"`
	PendingCount  int64          `json:"pending_count"`
	ActiveLocks   int            `json:"active_locks"`
	QueueDepths   map[string]int `json:"queue_depths"`
	DelayedJobs   int64          `json:"delayed_jobs"`
	Warnings      []string       `json:"warnings,omitempty"`
}

type HealthService interface {
	Check(ctx context.Context) (HealthReport, error)
	Run(ctx context.Context)
}

type health struct {
	txnRepo   repository.WalletTransactionRepository
	redis     *redis.Client
	broker    *mq.RabbitMQ
	scheduler *scheduler.Scheduler
	cfg       config.Health
	logger    *zap.Logger
}

func NewHealthService(txnRepo repository.WalletTransactionRepository, client *redis.Client,
	broker *mq.RabbitMQ, sched *scheduler.Scheduler, cfg *config.Config, logger *zap.Logger) HealthService {
	return &health{txnRepo: txnRepo, redis: client, broker: broker, scheduler: sched,
		cfg: cfg.Health, logger: logger}
}

// Check gathers the snapshot. Each probe degrades independently: a
// dead broker still leaves memory and pending counts in the report.
func (h *health) Check(ctx context.Context) (HealthReport, error) {
	report := HealthReport{
		Time:        time.Now(),
		QueueDepths: make(map[string]int, 3),
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			report.MemoryMB = float64(mem.RSS) / (1024 * 1024)
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			report.CPUPercent = cpu
		}
	}

	pending, err := h.txnRepo.CountByStatus(model.TransactionStatusPending)
	if err != nil {
		h.logger.Warn("Health probe: pending count failed", zap.Error(err))
	} else {
		report.PendingCount = pending
	}

	keys, err := h.redis.Keys(ctx, LockKey("*")).Result()
	if err != nil {
		h.logger.Warn("Health probe: lock scan failed", zap.Error(err))
	} else {
		report.ActiveLocks = len(keys)
	}

	for _, queue := range scheduler.Queues() {
		depth, err := h.broker.QueueDepth(queue)
		if err != nil {
			h.logger.Warn("Health probe: queue depth failed",
				zap.String("queue", queue), zap.Error(err))
			continue
		}
		report.QueueDepths[queue] = depth
	}

	delayed, err := h.scheduler.Depth(ctx)
	if err != nil {
		h.logger.Warn("Health probe: delayed depth failed", zap.Error(err))
	} else {
		report.DelayedJobs = delayed
	}

	report.Warnings = h.warnings(report)

	return report, nil
}

func (h *health) warnings(report HealthReport) []string {
	var warnings []string

	if h.cfg.MaxMemoryMB > 0 && report.MemoryMB > h.cfg.MaxMemoryMB {
		warnings = append(warnings, "memory usage above threshold")
	}
	if h.cfg.MaxLocks > 0 && report.ActiveLocks > h.cfg.MaxLocks {
		warnings = append(warnings, "too many active verification locks")
	}
	if h.cfg.MaxPendingWarning > 0 && report.PendingCount > h.cfg.MaxPendingWarning {
		warnings = append(warnings, "pending transaction backlog above threshold")
	}

	return warnings
}

// Run logs a snapshot on every interval until the context is
// cancelled. Warnings log at Warn so alerting can key off the level.
func (h *health) Run(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("health monitor stopped")
			return
		case <-ticker.C:
			report, err := h.Check(ctx)
			if err != nil {
				h.logger.Error("health check failed", zap.Error(err))
				continue
			}

			fields := []zap.Field{
				zap.Float64("memoryMB", report.MemoryMB),
				zap.Float64("cpuPercent", report.CPUPercent),
				zap.Int64("pending", report.PendingCount),
				zap.Int("activeLocks", report.ActiveLocks),
				zap.Int64("delayedJobs", report.DelayedJobs),
				zap.Any("queueDepths", report.QueueDepths),
			}

			if len(report.Warnings) > 0 {
				h.logger.Warn("health check", append(fields, zap.Strings("warnings", report.Warnings))...)
			} else {
				h.logger.Info("health check", fields...)
			}
		}
	}
}
