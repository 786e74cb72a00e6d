package main

import (
	"context"

	"github.com/adi-0903/wallet-service/internal/api"
	"github.com/adi-0903/wallet-service/internal/api/middleware"
	v1 "github.com/adi-0903/wallet-service/internal/api/v1"
	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/repository"
	"github.com/adi-0903/wallet-service/internal/service"
	"github.com/adi-0903/wallet-service/pkg/breaker"
	"github.com/adi-0903/wallet-service/pkg/httpclient"
	"github.com/adi-0903/wallet-service/pkg/mysql"
	"github.com/adi-0903/wallet-service/pkg/paymentgateway"
	"github.com/gofiber/fiber/v2"
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
			NewFiberApp,
			NewConnectionDB,
			NewRedisClient,
			NewPaymentGateway,
			NewCircuitBreaker,

			repository.NewWalletRepository,
			repository.NewWalletTransactionRepository,
			repository.NewTransactionManager,

			service.NewWalletService,
			service.NewTopupService,
			service.NewLedgerService,

			v1.NewHandler,
		),
		fx.Invoke(startServer),
	).Run()
}

func startServer(app *fiber.App, handler *v1.Handler, cfg *config.Config, lc fx.Lifecycle) {
	api.SetupRoutes(app, handler)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go app.Listen(cfg.API.Port)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

func NewFiberApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
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
