package service

import (
	"context"
	"image"
)

// DetectionSet is an unordered collection of canonical ingredient names
// produced by one detector.
type DetectionSet map[string]struct{}

// Add inserts a term into the set.
func (s DetectionSet) Add(term string) {
	s[term] = struct{}{}
}

// Union merges other into s. Union is commutative and idempotent.
func (s DetectionSet) Union(other DetectionSet) {
	for term := range other {
		s[term] = struct{}{}
	}
}

// Embedder produces fixed-length semantic vectors for text and images.
// The visual matcher and the recipe store both consume this capability;
// the store relies on index and query vectors coming from the same model.
type Embedder interface {
	EmbedText(ctx context.Context, model string, inputs []string) ([][]float32, error)
	EmbedImage(ctx context.Context, model string, imagePNG []byte) ([]float32, error)
}

// TextExtractor runs OCR over an encoded image and returns free text.
type TextExtractor interface {
	ExtractText(ctx context.Context, imagePNG []byte) (string, error)
}

// Completer sends a prompt to a text-completion backend. Implementations
// must not fail: backend unavailability is reported through a sentinel
// response string so the pipeline can degrade instead of erroring.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) string
}

// Detector produces a DetectionSet from a decoded image. Detectors are
// best-effort and may legitimately contribute nothing.
type Detector interface {
	Detect(ctx context.Context, img image.Image) DetectionSet
}

// Retriever answers similarity queries over the cookbook corpus.
type Retriever interface {
	QuerySimilar(ctx context.Context, ingredients []string, topK int) ([]QueryResult, error)
}
