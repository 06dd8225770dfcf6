// Package seed loads cookbook entries from a JSONL corpus into the
// recipe store, embedding each entry as it goes.
package seed

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"go.uber.org/zap"
)

// idMaxLen bounds the derived recipe id length.
const idMaxLen = 12

// Entry is one line of the recipe corpus. Either Text or Instructions
// must be present; Text wins when both are. ID is optional and derived
// from the title when absent.
type Entry struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Text         string   `json:"text"`
	Instructions string   `json:"instructions"`
	Ingredients  []string `json:"ingredients"`
}

// RecipeAdder stores one cookbook entry, embedding it for retrieval.
type RecipeAdder interface {
	AddRecipe(ctx context.Context, id, title, text string, ingredients []string) error
}

// RecipeID derives a stable identifier from a title: the first 12
// characters, with spaces replaced by underscores.
func RecipeID(title string) string {
	runes := []rune(title)
	if len(runes) > idMaxLen {
		runes = runes[:idMaxLen]
	}
	return strings.ReplaceAll(string(runes), " ", "_")
}

// StoreID returns the entry's identifier, preferring an explicit id over
// the title-derived one.
func (e Entry) StoreID() string {
	if e.ID != "" {
		return e.ID
	}
	return RecipeID(e.Title)
}

// Body returns the recipe text, preferring Text over Instructions.
func (e Entry) Body() string {
	if e.Text != "" {
		return e.Text
	}
	return e.Instructions
}

// Valid reports whether the entry carries enough to be stored.
func (e Entry) Valid() bool {
	return e.Title != "" && e.Body() != ""
}

// Result summarizes one seeding run.
type Result struct {
	Seeded  int
	Skipped int
}

// FromJSONL reads the corpus line by line and stores every valid entry.
// Malformed or incomplete lines are skipped with a warning rather than
// aborting the run; store errors abort.
func FromJSONL(ctx context.Context, r io.Reader, store RecipeAdder, logger *zap.Logger) (Result, error) {
	var res Result
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			logger.Warn("skipping malformed corpus line", zap.Int("line", line), zap.Error(err))
			res.Skipped++
			continue
		}
		if !entry.Valid() {
			logger.Warn("skipping incomplete corpus entry", zap.Int("line", line), zap.String("title", entry.Title))
			res.Skipped++
			continue
		}

		if err := store.AddRecipe(ctx, entry.StoreID(), entry.Title, entry.Body(), entry.Ingredients); err != nil {
			return res, err
		}
		res.Seeded++
	}
	if err := scanner.Err(); err != nil {
		return res, err
	}
	return res, nil
}
