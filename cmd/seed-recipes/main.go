package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/database"
	"github.com/pantrychef/backend/internal/logging"
	"github.com/pantrychef/backend/internal/seed"
	"github.com/pantrychef/backend/internal/service"
)

func main() {
	corpusPath := flag.String("corpus", "data/recipes.jsonl", "path to the JSONL recipe corpus")
	flag.Parse()

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
	if err := database.RunMigrations(db, "migrations", logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	embedder := service.NewEmbedderClient(cfg.EmbedderURL, cfg.LLMTimeout)
	recipes := service.NewRecipeService(db, embedder, cfg.RetrievalModel, logger)

	f, err := os.Open(*corpusPath)
	if err != nil {
		logger.Fatal("failed to open corpus", zap.String("path", *corpusPath), zap.Error(err))
	}
	defer f.Close()

	res, err := seed.FromJSONL(context.Background(), f, recipes, logger)
	if err != nil {
		logger.Fatal("seeding failed", zap.Int("seeded", res.Seeded), zap.Error(err))
	}

	logger.Info("seeding complete",
		zap.Int("seeded", res.Seeded),
		zap.Int("skipped", res.Skipped),
	)
}
