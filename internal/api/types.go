package api

// DetectIngredientsResponse lists the pantry items recognized in an
// uploaded photo, normalized and alphabetically sorted.
type DetectIngredientsResponse struct {
	Ingredients []string `json:"ingredients"`
}

// GenerateRecipeRequest carries the confirmed ingredient list as a single
// comma-separated string, matching what the frontend submits.
type GenerateRecipeRequest struct {
	Ingredients        string `json:"ingredients" binding:"required"`
	DietaryPreferences string `json:"dietary_preferences"`
}

// RecommendationResponse is one retrieved cookbook entry that grounded the
// generation, with its similarity to the query expressed as a match score.
type RecommendationResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Ingredients string  `json:"ingredients"`
	RecipeText  string  `json:"recipe_text"`
	MatchScore  float64 `json:"match_score"`
}

// GenerateRecipeResponse is the generated recipe plus the cookbook entries
// it was grounded on.
type GenerateRecipeResponse struct {
	Title           string                   `json:"title"`
	Body            string                   `json:"body"`
	Recommendations []RecommendationResponse `json:"recommendations"`
}

// RecipeResponse represents one stored cookbook entry.
type RecipeResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	RecipeText  string   `json:"recipe_text"`
	Ingredients []string `json:"ingredients"`
}
