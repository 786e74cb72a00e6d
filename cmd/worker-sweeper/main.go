package main

import (
	"context"
	"errors"
	"time"

	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/adi-0903/wallet-service/internal/scheduler"
	"github.com/adi-0903/wallet-service/internal/service"
	"github.com/adi-0903/wallet-service/pkg/lock"
	"github.com/adi-0903/wallet-service/pkg/mq"
	"github.com/adi-0903/wallet-service/pkg/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			NewConnectionDB,
			NewRedisClient,
			NewMQConnection,
			NewMQPublisher,
			NewScheduler,
			NewDispatcher,

			repository.NewWalletRepository,
			repository.NewWalletTransactionRepository,
			repository.NewTransactionManager,
			lock.NewRedisLocker,

			service.NewLedgerService,
			service.NewSweepService,
			service.NewHealthService,
		),
		fx.Invoke(runSweeper),
	).Run()
}

func runSweeper(cfg *config.Config, sweeper service.SweepService, health service.HealthService,
	sched *scheduler.Scheduler, logger *zap.Logger, rabbit *mq.RabbitMQ, lc fx.Lifecycle,
) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology(scheduler.Queues()); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			go sched.Run(appCtx)
			go health.Run(appCtx)

			go func() {
				ticker := time.NewTicker(cfg.Sweeper.Interval)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						if _, err := sweeper.Sweep(appCtx); err != nil {
							if errors.Is(err, service.ErrSweepAlreadyRunning) {
								continue
							}
							logger.Error("sweep pass failed", zap.Error(err))
						}
					case <-appCtx.Done():
						logger.Info("sweeper context cancelled")
						return
					}
				}
			}()

			logger.Info("sweeper started", zap.Duration("interval", cfg.Sweeper.Interval))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping sweeper")
			cancel()
			return rabbit.Close()
		},
	})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.RabbitMQ, logger)
}

func NewMQPublisher(rabbitMQ *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbitMQ.CreatePublisher()
}

func NewScheduler(client *redis.Client, publisher mq.Publisher, logger *zap.Logger) *scheduler.Scheduler {
	return scheduler.New(client, publisher, logger)
}

func NewDispatcher(s *scheduler.Scheduler) scheduler.Dispatcher {
	return s
}
