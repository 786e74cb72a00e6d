package main

import (
	"context"

	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/consumers"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/adi-0903/wallet-service/internal/scheduler"
	"github.com/adi-0903/wallet-service/internal/service"
	"github.com/adi-0903/wallet-service/pkg/breaker"
	"github.com/adi-0903/wallet-service/pkg/httpclient"
	"github.com/adi-0903/wallet-service/pkg/lock"
	"github.com/adi-0903/wallet-service/pkg/mq"
	"github.com/adi-0903/wallet-service/pkg/mysql"
	"github.com/adi-0903/wallet-service/pkg/paymentgateway"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const consumerPrefetch = 5

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			NewConnectionDB,
			NewRedisClient,
			NewMQConnection,
			NewMQPublisher,
			NewPaymentGateway,
			NewCircuitBreaker,
			NewScheduler,
			NewDispatcher,

			repository.NewWalletRepository,
			repository.NewWalletTransactionRepository,
			repository.NewTransactionManager,
			lock.NewRedisLocker,

			service.NewLedgerService,
			service.NewVerifyService,

			NewVerifyConsumer,
		),
		fx.Invoke(runVerifyConsumer),
	).Run()
}

func runVerifyConsumer(consumer *consumers.VerifyConsumer, logger *zap.Logger,
	rabbit *mq.RabbitMQ, lc fx.Lifecycle,
) {
	appCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology(scheduler.Queues()); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			if err := consumer.Start(appCtx); err != nil {
				logger.Error("failed to start verification consumers", zap.Error(err))
				return err
			}

			logger.Info("verification worker started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping verification worker")
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

func NewPaymentGateway(cfg *config.Config) paymentgateway.Gateway {
	client := httpclient.NewHTTPClient(cfg.Gateway.Timeout)
	return paymentgateway.NewGateway(cfg.Gateway.Config, client)
}

func NewCircuitBreaker(cfg *config.Config, client *redis.Client, logger *zap.Logger) breaker.CircuitBreaker {
	store := breaker.NewRedisStore(client)
	return breaker.New("payment_gateway", breaker.Config{
		Threshold:     cfg.Breaker.Threshold,
		BaseTimeout:   cfg.Breaker.BaseTimeout,
		MaxTimeout:    cfg.Breaker.MaxTimeout,
		TimeoutFactor: cfg.Breaker.TimeoutFactor,
	}, store, logger)
}

func NewScheduler(client *redis.Client, publisher mq.Publisher, logger *zap.Logger) *scheduler.Scheduler {
	return scheduler.New(client, publisher, logger)
}

func NewDispatcher(s *scheduler.Scheduler) scheduler.Dispatcher {
	return s
}

func NewVerifyConsumer(rabbit *mq.RabbitMQ, verifier service.VerifyService, logger *zap.Logger) *consumers.VerifyConsumer {
	return consumers.NewVerifyConsumer(rabbit, verifier, consumerPrefetch, logger)
}
