package main

import (
	"context"
	"log"

	"github.com/adi-0903/wallet-service/internal/config"
	"github.com/adi-0903/wallet-service/internal/model"
	"github.com/adi-0903/wallet-service/pkg/mysql"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := mysql.NewConnection(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(&model.Wallet{}, &model.WalletTransaction{}); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	logger.Info("migration completed")
}
