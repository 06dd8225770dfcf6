package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDim is the output dimension of the retrieval embedding model.
// The recipes table vector column is declared with this dimension, so
// switching retrieval models requires a migration and a full reseed.
const EmbeddingDim = 384

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is a persisted cookbook entry. The ID is caller-supplied (or
// derived from the title during seeding); re-adding the same ID overwrites
// the existing row. Rows are never mutated outside of that upsert.
type Recipe struct {
	ID          string           `gorm:"size:64;primary_key" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	RecipeText  string           `gorm:"type:text" json:"recipe_text"`
	Ingredients JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Embedding   pgvector.Vector  `gorm:"type:vector(384)" json:"-"`
}
