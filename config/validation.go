package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the loaded configuration is internally
// consistent before any service is constructed from it.
func ValidateConfig(cfg *Config) error {
	if cfg.ServerPort == "" {
		return ValidationError{Field: "SERVER_PORT", Message: "must not be empty"}
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" {
		return ValidationError{Field: "DB_HOST/DB_PORT/DB_NAME", Message: "database endpoint is required"}
	}

	// The visual threshold is exclusive on both ends: 0 would admit the whole
	// vocabulary for every image, 1 would admit nothing.
	if cfg.VisualThreshold <= 0 || cfg.VisualThreshold >= 1 {
		return ValidationError{Field: "VISUAL_THRESHOLD", Message: "must be in (0, 1)"}
	}

	if cfg.LLMMaxTokens <= 0 {
		return ValidationError{Field: "LLM_MAX_TOKENS", Message: "must be positive"}
	}
	if cfg.MaxImageBytes <= 0 {
		return ValidationError{Field: "MAX_IMAGE_BYTES", Message: "must be positive"}
	}

	if cfg.CacheEnabled && cfg.CacheTTL <= 0 {
		return ValidationError{Field: "CACHE_TTL", Message: "must be positive when caching is enabled"}
	}
	if cfg.RateLimitRequests <= 0 || cfg.RateLimitWindow <= 0 {
		return ValidationError{Field: "RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW", Message: "must be positive"}
	}

	return nil
}
