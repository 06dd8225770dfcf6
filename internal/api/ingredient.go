package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/service"
)

// IngredientHandler handles pantry photo analysis requests
type IngredientHandler struct {
	detection     *service.DetectionService
	maxImageBytes int64
	logger        *zap.Logger
}

// NewIngredientHandler creates a new ingredient handler
func NewIngredientHandler(detection *service.DetectionService, maxImageBytes int64, logger *zap.Logger) *IngredientHandler {
	return &IngredientHandler{
		detection:     detection,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

// RegisterRoutes registers the ingredient routes
func (h *IngredientHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/ingredients/detect", h.Detect)
}

// Detect accepts a pantry photo as multipart form data under the "image"
// field and returns the recognized ingredients. An unreadable photo yields
// an empty list, not an error.
func (h *IngredientHandler) Detect(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "an image file is required under the 'image' field",
		})
		return
	}

	if file.Size > h.maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   "Image too large",
			"message": "the uploaded image exceeds the maximum allowed size",
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"message": "could not read the uploaded image",
		})
		return
	}
	defer src.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(src, h.maxImageBytes+1))
	if err != nil || int64(len(imageBytes)) > h.maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   "Image too large",
			"message": "the uploaded image exceeds the maximum allowed size",
		})
		return
	}

	ingredients := h.detection.ExtractIngredients(c.Request.Context(), imageBytes)
	if ingredients == nil {
		ingredients = []string{}
	}

	c.JSON(http.StatusOK, DetectIngredientsResponse{Ingredients: ingredients})
}
