package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pantrychef/backend/internal/model"
	"github.com/pantrychef/backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubDetector struct {
	items []string
}

func (d stubDetector) Detect(context.Context, image.Image) service.DetectionSet {
	set := service.DetectionSet{}
	for _, item := range d.items {
		set.Add(item)
	}
	return set
}

type stubRetriever struct {
	results []service.QueryResult
	err     error
}

func (r stubRetriever) QuerySimilar(context.Context, []string, int) ([]service.QueryResult, error) {
	return r.results, r.err
}

type stubCompleter struct {
	output string
}

func (c stubCompleter) Complete(context.Context, string, int) string {
	return c.output
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func multipartImage(t *testing.T, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("image", "pantry.png")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func detectRouter(maxBytes int64, items ...string) *gin.Engine {
	detection := service.NewDetectionService(stubDetector{items: items}, service.NoopDetector{}, zap.NewNop())
	handler := NewIngredientHandler(detection, maxBytes, zap.NewNop())
	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestDetect(t *testing.T) {
	t.Run("returns detected ingredients", func(t *testing.T) {
		r := detectRouter(1<<20, "tomato", "garlic")
		body, contentType := multipartImage(t, pngBytes(t))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ingredients/detect", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp DetectIngredientsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"garlic", "tomato"}, resp.Ingredients)
	})

	t.Run("unreadable image yields an empty list", func(t *testing.T) {
		r := detectRouter(1<<20, "tomato")
		body, contentType := multipartImage(t, []byte("not an image"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ingredients/detect", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp DetectIngredientsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Ingredients)
	})

	t.Run("missing image field", func(t *testing.T) {
		r := detectRouter(1 << 20)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ingredients/detect", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized image is rejected", func(t *testing.T) {
		r := detectRouter(16, "tomato")
		body, contentType := multipartImage(t, pngBytes(t))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ingredients/detect", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func generateRouter(retriever service.Retriever, completer service.Completer) *gin.Engine {
	chef := service.NewChefService(retriever, completer, nil, 256, zap.NewNop())
	handler := NewRecipeHandler(chef, nil, zap.NewNop())
	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/v1"), nil)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerate(t *testing.T) {
	t.Run("returns the recipe and scored recommendations", func(t *testing.T) {
		retriever := stubRetriever{results: []service.QueryResult{
			{ID: "tomato_soup", Title: "Tomato Soup", Ingredients: "tomato, onion", RecipeText: "Simmer tomatoes.", Distance: 0.25},
		}}
		completer := stubCompleter{output: "Title: Pantry Pasta\n- tomato\n- garlic"}
		r := generateRouter(retriever, completer)

		w := postJSON(t, r, "/api/v1/recipes/generate", GenerateRecipeRequest{
			Ingredients: "tomato, garlic",
		})

		require.Equal(t, http.StatusOK, w.Code)
		var resp GenerateRecipeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Pantry Pasta", resp.Title)
		assert.Contains(t, resp.Body, "<li>tomato</li>")
		require.Len(t, resp.Recommendations, 1)
		assert.Equal(t, "tomato_soup", resp.Recommendations[0].ID)
		assert.Equal(t, "Simmer tomatoes.", resp.Recommendations[0].RecipeText)
		assert.InDelta(t, 0.75, resp.Recommendations[0].MatchScore, 1e-9)
	})

	t.Run("blank ingredient string is rejected", func(t *testing.T) {
		r := generateRouter(stubRetriever{}, stubCompleter{})
		w := postJSON(t, r, "/api/v1/recipes/generate", GenerateRecipeRequest{Ingredients: " , , "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing ingredients field is rejected", func(t *testing.T) {
		r := generateRouter(stubRetriever{}, stubCompleter{})
		w := postJSON(t, r, "/api/v1/recipes/generate", gin.H{"dietary_preferences": "vegan"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure is a bad gateway", func(t *testing.T) {
		r := generateRouter(stubRetriever{err: errors.New("store offline")}, stubCompleter{})
		w := postJSON(t, r, "/api/v1/recipes/generate", GenerateRecipeRequest{Ingredients: "tomato"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestMatchScore(t *testing.T) {
	assert.InDelta(t, 0.75, matchScore(0.25), 1e-9)
	assert.Equal(t, 0.0, matchScore(1.5))
	assert.Equal(t, 1.0, matchScore(-0.1))
}

func TestSplitIngredients(t *testing.T) {
	assert.Equal(t, []string{"tomato", "garlic"}, SplitIngredients(" tomato , garlic ,, "))
	assert.Empty(t, SplitIngredients("  ,  "))
}

func cookbookRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Recipe{}))

	recipes := service.NewRecipeService(db, nil, "", zap.NewNop())
	handler := NewRecipeHandler(nil, recipes, zap.NewNop())
	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/v1"), nil)
	return r, db
}

func TestCookbook(t *testing.T) {
	r, db := cookbookRouter(t)
	require.NoError(t, db.Create(&model.Recipe{
		ID:          "tomato_soup",
		Title:       "Tomato Soup",
		RecipeText:  "Simmer tomatoes.",
		Ingredients: model.JSONBStringArray{"tomato", "onion"},
	}).Error)

	t.Run("get by id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recipes/tomato_soup", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp RecipeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Tomato Soup", resp.Title)
		assert.Equal(t, []string{"tomato", "onion"}, resp.Ingredients)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recipes/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Recipes []RecipeResponse `json:"recipes"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Recipes, 1)
		assert.Equal(t, "tomato_soup", resp.Recipes[0].ID)
	})
}

type failingPinger struct{}

func (failingPinger) HealthCheck(context.Context) error { return errors.New("down") }

type okPinger struct{}

func (okPinger) HealthCheck(context.Context) error { return nil }

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		r := gin.New()
		NewHealthHandler(okPinger{}, nil).RegisterRoutes(r)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"healthy"`)
	})

	t.Run("degraded when the database is unreachable", func(t *testing.T) {
		r := gin.New()
		NewHealthHandler(failingPinger{}, nil).RegisterRoutes(r)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"degraded"`)
	})
}
