package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/api"
	"github.com/pantrychef/backend/internal/database"
	"github.com/pantrychef/backend/internal/middleware"
	"github.com/pantrychef/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *zap.Logger
	cfg    *config.Config
}

// New assembles the full application: model clients, detectors, the
// generation pipeline and the HTTP surface.
func New(cfg *config.Config, db *gorm.DB, healthDB *database.DB, redisClient *redis.Client, logger *zap.Logger) *Server {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	embedder := service.NewEmbedderClient(cfg.EmbedderURL, cfg.LLMTimeout)

	// Detection backends are optional. When a model endpoint is not
	// configured the corresponding detector contributes nothing.
	var visual service.Detector = service.NoopDetector{}
	if cfg.EmbedderURL != "" {
		visual = service.NewVisualMatcher(embedder, cfg.VisualModel, cfg.VisualThreshold, logger)
	}
	var text service.Detector = service.NoopDetector{}
	if cfg.OCRURL != "" {
		ocr := service.NewOCRClient(cfg.OCRURL, cfg.LLMTimeout)
		text = service.NewTextMatcher(ocr, logger)
	}
	detection := service.NewDetectionService(visual, text, logger)

	recipes := service.NewRecipeService(db, embedder, cfg.RetrievalModel, logger)
	completer := service.NewCompletionClient(cfg.LLMURL, cfg.LLMTimeout, logger)

	var cache *service.GenerationCache
	if cfg.CacheEnabled && redisClient != nil {
		cache = service.NewGenerationCache(redisClient, cfg.CacheTTL)
	}
	chef := service.NewChefService(recipes, completer, cache, cfg.LLMMaxTokens, logger)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	var limiter gin.HandlerFunc
	if redisClient != nil {
		limiter = middleware.NewGenerationRateLimiter(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow).RateLimitMiddleware()
	}

	var pinger api.Pinger
	if healthDB != nil {
		pinger = healthDB
	}
	health := api.NewHealthHandler(pinger, redisClient)
	handlers := api.NewHandlers(detection, chef, recipes, health, cfg.MaxImageBytes, logger)
	handlers.Register(router, limiter)

	return &Server{
		router: router,
		logger: logger,
		cfg:    cfg,
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    ":" + s.cfg.ServerPort,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("port", s.cfg.ServerPort))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
