package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/service"
)

// RecipeHandler handles recipe generation and cookbook browsing
type RecipeHandler struct {
	chef    *service.ChefService
	recipes *service.RecipeService
	logger  *zap.Logger
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(chef *service.ChefService, recipes *service.RecipeService, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		chef:    chef,
		recipes: recipes,
		logger:  logger,
	}
}

// RegisterRoutes registers the recipe routes. The rate limiter guards only
// the generation endpoint, where the expensive model calls happen.
func (h *RecipeHandler) RegisterRoutes(r *gin.RouterGroup, limiter gin.HandlerFunc) {
	if limiter != nil {
		r.POST("/recipes/generate", limiter, h.Generate)
	} else {
		r.POST("/recipes/generate", h.Generate)
	}
	r.GET("/recipes", h.List)
	r.GET("/recipes/:id", h.Get)
}

// SplitIngredients turns the frontend's comma-separated ingredient string
// into a clean list, dropping empty entries.
func SplitIngredients(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Generate runs the full generation pipeline for a confirmed ingredient
// list and returns the recipe plus the cookbook entries that grounded it.
func (h *RecipeHandler) Generate(c *gin.Context) {
	var req GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": err.Error(),
		})
		return
	}

	ingredients := SplitIngredients(req.Ingredients)
	recipe, results, err := h.chef.GenerateRecipe(c.Request.Context(), ingredients, req.DietaryPreferences)
	if err != nil {
		if errors.Is(err, service.ErrNoIngredients) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}
		h.logger.Error("recipe generation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Generation failed",
			"message": "could not generate a recipe, please try again",
		})
		return
	}

	recommendations := make([]RecommendationResponse, 0, len(results))
	for _, r := range results {
		recommendations = append(recommendations, RecommendationResponse{
			ID:          r.ID,
			Title:       r.Title,
			Ingredients: r.Ingredients,
			RecipeText:  r.RecipeText,
			MatchScore:  matchScore(r.Distance),
		})
	}

	c.JSON(http.StatusOK, GenerateRecipeResponse{
		Title:           recipe.Title,
		Body:            recipe.Body,
		Recommendations: recommendations,
	})
}

// matchScore converts a cosine distance into a 0..1 similarity score.
func matchScore(distance float64) float64 {
	score := 1 - distance
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// List returns all cookbook entries ordered by title.
func (h *RecipeHandler) List(c *gin.Context) {
	recipes, err := h.recipes.ListRecipes(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Lookup failed",
			"message": "could not load the cookbook",
		})
		return
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, RecipeResponse{
			ID:          r.ID,
			Title:       r.Title,
			RecipeText:  r.RecipeText,
			Ingredients: r.Ingredients,
		})
	}
	c.JSON(http.StatusOK, gin.H{"recipes": out})
}

// Get returns a single cookbook entry by id.
func (h *RecipeHandler) Get(c *gin.Context) {
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not found",
				"message": "no recipe with that id",
			})
			return
		}
		h.logger.Error("failed to load recipe", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Lookup failed",
			"message": "could not load the recipe",
		})
		return
	}

	c.JSON(http.StatusOK, RecipeResponse{
		ID:          recipe.ID,
		Title:       recipe.Title,
		RecipeText:  recipe.RecipeText,
		Ingredients: recipe.Ingredients,
	})
}
