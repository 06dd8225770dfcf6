package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// GenerationCache stores finished generation results in redis so a repeated
// ingredient/preference combination does not pay for another multi-second
// generation call. Cache misses and cache errors look the same to callers.
type GenerationCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewGenerationCache creates a generation cache with the given TTL.
func NewGenerationCache(client *redis.Client, ttl time.Duration) *GenerationCache {
	return &GenerationCache{redis: client, ttl: ttl}
}

// CachedGeneration is the cached payload for one generation request.
type CachedGeneration struct {
	Recipe  GeneratedRecipe `json:"recipe"`
	Results []QueryResult   `json:"results"`
}

// CacheKey derives a stable key from the ingredient list and preferences.
// Ingredient order does not affect the key.
func CacheKey(ingredients []string, prefs string) string {
	sorted := make([]string, len(ingredients))
	copy(sorted, ingredients)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.Join(sorted, ",") + "|" + strings.ToLower(strings.TrimSpace(prefs))))
	return "recipe:generated:" + hex.EncodeToString(sum[:])
}

// Get returns the cached generation for the key, or (nil, nil) on a miss.
func (c *GenerationCache) Get(ctx context.Context, key string) (*CachedGeneration, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	var cached CachedGeneration
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached generation: %w", err)
	}
	return &cached, nil
}

// Set stores the generation result under the key with the cache TTL.
func (c *GenerationCache) Set(ctx context.Context, key string, value *CachedGeneration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal generation for cache: %w", err)
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache store failed: %w", err)
	}
	return nil
}
