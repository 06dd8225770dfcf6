package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pantrychef/backend/internal/model"
)

// QueryResult is one ranked retrieval candidate. Distance is the cosine
// distance reported by the index; lower means more similar.
type QueryResult struct {
	ID          string  `json:"id"`
	Distance    float64 `json:"distance"`
	Title       string  `json:"title"`
	Ingredients string  `json:"ingredients"`
	RecipeText  string  `json:"recipe_text"`
}

// RecipeService persists cookbook entries with precomputed embeddings and
// answers similarity queries over them. Index and query embeddings are
// produced by the same retrieval model; switching models invalidates the
// store and requires reseeding every recipe.
type RecipeService struct {
	db       *gorm.DB
	embedder Embedder
	model    string
	logger   *zap.Logger
}

// NewRecipeService creates the recipe store using the given retrieval
// embedding model.
func NewRecipeService(db *gorm.DB, embedder Embedder, model string, logger *zap.Logger) *RecipeService {
	return &RecipeService{db: db, embedder: embedder, model: model, logger: logger}
}

// semanticString composes the text that gets embedded for indexing. The
// structured summary is embedded instead of the prose body to keep retrieval
// ingredient-centric.
func semanticString(title string, ingredients []string) string {
	return fmt.Sprintf("%s | Ingredients: %s", title, strings.Join(ingredients, ", "))
}

// AddRecipe embeds the recipe's semantic summary and upserts the entry by
// id. Re-adding an existing id overwrites rather than duplicates.
func (s *RecipeService) AddRecipe(ctx context.Context, id, title, text string, ingredients []string) error {
	vectors, err := s.embedder.EmbedText(ctx, s.model, []string{semanticString(title, ingredients)})
	if err != nil {
		return fmt.Errorf("failed to embed recipe %q: %w", id, err)
	}

	recipe := model.Recipe{
		ID:          id,
		Title:       title,
		RecipeText:  text,
		Ingredients: model.JSONBStringArray(ingredients),
		Embedding:   pgvector.NewVector(vectors[0]),
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&recipe).Error; err != nil {
		return fmt.Errorf("failed to store recipe %q: %w", id, err)
	}
	return nil
}

// similarRow is the scan target for the postgres nearest-neighbor query.
type similarRow struct {
	ID          string
	Title       string
	RecipeText  string
	Ingredients model.JSONBStringArray
	Distance    float64
}

// QuerySimilar embeds a query built from the ingredient list and returns up
// to topK recipes ordered by ascending cosine distance. Storage errors
// propagate: an empty result set is a valid "no match" and must stay
// distinguishable from a backend outage.
func (s *RecipeService) QuerySimilar(ctx context.Context, ingredients []string, topK int) ([]QueryResult, error) {
	queryText := "Recipes containing: " + strings.Join(ingredients, ", ")
	vectors, err := s.embedder.EmbedText(ctx, s.model, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if s.db.Dialector.Name() == "postgres" {
		return s.querySimilarPostgres(ctx, vectors[0], topK)
	}
	return s.querySimilarScan(ctx, vectors[0], topK)
}

func (s *RecipeService) querySimilarPostgres(ctx context.Context, query []float32, topK int) ([]QueryResult, error) {
	var rows []similarRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, title, recipe_text, ingredients, embedding <=> ? AS distance
		 FROM recipes
		 ORDER BY distance ASC
		 LIMIT ?`,
		pgvector.NewVector(query), topK,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}
	return rowsToResults(rows), nil
}

// querySimilarScan is the non-postgres path: load every entry and rank by
// cosine distance in memory. The cookbook corpus is small, so a full scan is
// acceptable for development and tests.
func (s *RecipeService) querySimilarScan(ctx context.Context, query []float32, topK int) ([]QueryResult, error) {
	var recipes []model.Recipe
	if err := s.db.WithContext(ctx).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("similarity scan failed: %w", err)
	}

	rows := make([]similarRow, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, similarRow{
			ID:          r.ID,
			Title:       r.Title,
			RecipeText:  r.RecipeText,
			Ingredients: r.Ingredients,
			Distance:    1 - cosineSimilarity(query, r.Embedding.Slice()),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Distance < rows[j].Distance })
	if len(rows) > topK {
		rows = rows[:topK]
	}
	return rowsToResults(rows), nil
}

func rowsToResults(rows []similarRow) []QueryResult {
	results := make([]QueryResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, QueryResult{
			ID:          row.ID,
			Distance:    row.Distance,
			Title:       row.Title,
			Ingredients: strings.Join(row.Ingredients, ", "),
			RecipeText:  row.RecipeText,
		})
	}
	return results
}

// GetRecipe retrieves a cookbook entry by id.
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns every cookbook entry ordered by title.
func (s *RecipeService) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := s.db.WithContext(ctx).Order("title").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}
