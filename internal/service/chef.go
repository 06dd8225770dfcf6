package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrNoIngredients is returned when generation is requested with an empty
// ingredient list. This is the only condition for which the pipeline refuses
// to proceed, and it is checked before any expensive work begins.
var ErrNoIngredients = errors.New("at least one ingredient is required")

// retrievalTopK is how many cookbook entries ground the generation prompt.
const retrievalTopK = 2

// GeneratedRecipe is the displayable result of one generation request.
type GeneratedRecipe struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ChefService runs the retrieval-augmented generation pipeline: retrieve
// similar cookbook entries, build a constrained prompt, invoke the
// completion backend and parse its output into a structured recipe.
type ChefService struct {
	retriever Retriever
	completer Completer
	cache     *GenerationCache // nil when caching is disabled
	maxTokens int
	logger    *zap.Logger
}

// NewChefService assembles the generation pipeline. cache may be nil.
func NewChefService(retriever Retriever, completer Completer, cache *GenerationCache, maxTokens int, logger *zap.Logger) *ChefService {
	return &ChefService{
		retriever: retriever,
		completer: completer,
		cache:     cache,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// GenerateRecipe produces a recipe from the confirmed ingredient list plus
// the ranked retrieval candidates that grounded it. Store failures
// propagate; generation backend failures degrade to a default recipe shell.
func (s *ChefService) GenerateRecipe(ctx context.Context, ingredients []string, prefs string) (*GeneratedRecipe, []QueryResult, error) {
	if len(ingredients) == 0 {
		return nil, nil, ErrNoIngredients
	}

	key := CacheKey(ingredients, prefs)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("generation cache lookup failed", zap.Error(err))
		} else if cached != nil {
			s.logger.Debug("generation cache hit", zap.String("key", key))
			return &cached.Recipe, cached.Results, nil
		}
	}

	similar, err := s.retriever.QuerySimilar(ctx, ingredients, retrievalTopK)
	if err != nil {
		return nil, nil, err
	}

	prompt := BuildPrompt(ingredients, prefs, similar)
	raw := s.completer.Complete(ctx, prompt, s.maxTokens)
	parsed := ParseRecipe(raw)

	recipe := &GeneratedRecipe{Title: parsed.Title, Body: parsed.Body()}

	if s.cache != nil && raw != GenerationUnavailable {
		if err := s.cache.Set(ctx, key, &CachedGeneration{Recipe: *recipe, Results: similar}); err != nil {
			s.logger.Warn("failed to cache generation", zap.Error(err))
		}
	}

	return recipe, similar, nil
}
