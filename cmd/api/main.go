package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/database"
	"github.com/pantrychef/backend/internal/logging"
	"github.com/pantrychef/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewGorm(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	healthDB, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open health check connection", zap.Error(err))
	}
	defer healthDB.Close()

	if err := database.RunMigrations(db, "migrations", logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		// Rate limiting and the generation cache degrade gracefully.
		logger.Warn("redis unavailable, continuing without cache and rate limiting", zap.Error(err))
		redisClient = nil
	}

	srv := server.New(cfg, db, healthDB, redisClient, logger)
	if err := srv.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
