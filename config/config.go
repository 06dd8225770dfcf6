package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment
	LogLevel    string

	// Server configuration
	ServerHost string
	ServerPort string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Embedding backend (shared by the visual matcher and the recipe store)
	EmbedderURL     string
	VisualModel     string
	RetrievalModel  string
	VisualThreshold float64

	// OCR backend
	OCRURL string

	// Generation backend (llama.cpp-style completion server)
	LLMURL       string
	LLMMaxTokens int
	LLMTimeout   time.Duration

	// Image input limits
	MaxImageBytes int64

	// Generation result cache
	CacheEnabled bool
	CacheTTL     time.Duration

	// Rate limiting on the generation endpoint
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// CORS
	AllowedOrigins []string
}

// LoadConfig creates a new Config instance from environment variables,
// falling back to development defaults. A .env file is loaded first when
// present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment may be set by the deployment.
	_ = godotenv.Load()

	cfg := &Config{
		Environment: GetEnvironment(),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "pantrychef"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisURL:      getEnv("REDIS_URL", ""),

		EmbedderURL:     getEnv("EMBEDDER_URL", ""),
		VisualModel:     getEnv("VISUAL_MODEL", "clip-ViT-B-32"),
		RetrievalModel:  getEnv("RETRIEVAL_MODEL", "all-MiniLM-L6-v2"),
		VisualThreshold: getEnvFloat("VISUAL_THRESHOLD", 0.22),

		OCRURL: getEnv("OCR_URL", ""),

		LLMURL:       getEnv("LLM_URL", "http://localhost:8081"),
		LLMMaxTokens: getEnvInt("LLM_MAX_TOKENS", 1024),
		LLMTimeout:   getEnvDuration("LLM_TIMEOUT", 2*time.Minute),

		MaxImageBytes: int64(getEnvInt("MAX_IMAGE_BYTES", 10*1024*1024)),

		CacheEnabled: getEnvBool("CACHE_ENABLED", true),
		CacheTTL:     getEnvDuration("CACHE_TTL", 24*time.Hour),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
