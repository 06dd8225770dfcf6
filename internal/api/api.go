package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/service"
)

// Handlers groups everything the router mounts under /api/v1.
type Handlers struct {
	Ingredients *IngredientHandler
	Recipes     *RecipeHandler
	Health      *HealthHandler
}

// NewHandlers builds the API handlers from the assembled services.
func NewHandlers(detection *service.DetectionService, chef *service.ChefService, recipes *service.RecipeService, health *HealthHandler, maxImageBytes int64, logger *zap.Logger) *Handlers {
	return &Handlers{
		Ingredients: NewIngredientHandler(detection, maxImageBytes, logger),
		Recipes:     NewRecipeHandler(chef, recipes, logger),
		Health:      health,
	}
}

// Register mounts all routes on the router. generationLimiter may be nil
// when rate limiting is disabled.
func (h *Handlers) Register(router *gin.Engine, generationLimiter gin.HandlerFunc) {
	h.Health.RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	{
		h.Ingredients.RegisterRoutes(v1)
		h.Recipes.RegisterRoutes(v1, generationLimiter)
	}
}
