package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/vocab"
)

// scriptedVocabEmbedder gives every vocabulary term a one-hot embedding and
// the image an embedding that overlaps chosen terms, so cosine similarity is
// exactly the configured weight per term.
func scriptedVocabEmbedder(t *testing.T, weights map[string]float32) *fakeEmbedder {
	t.Helper()
	dim := len(vocab.Terms())
	index := make(map[string]int, dim)
	for i, term := range vocab.Terms() {
		index[term] = i
	}

	return &fakeEmbedder{
		embedText: func(_ context.Context, _ string, inputs []string) ([][]float32, error) {
			out := make([][]float32, len(inputs))
			for i, term := range inputs {
				vec := make([]float32, dim)
				vec[index[term]] = 1
				out[i] = vec
			}
			return out, nil
		},
		embedImage: func(context.Context, string, []byte) ([]float32, error) {
			vec := make([]float32, dim)
			for term, w := range weights {
				vec[index[term]] = w
			}
			return vec, nil
		},
	}
}

func TestVisualMatcherDetect(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("includes every term above the threshold", func(t *testing.T) {
		// With one-hot vocab embeddings, similarity to each term equals the
		// image vector's normalized weight at that term's index.
		embedder := scriptedVocabEmbedder(t, map[string]float32{"tomato": 0.9, "onion": 0.9, "rice": 0.01})
		matcher := NewVisualMatcher(embedder, "clip", 0.22, logger)

		found := matcher.Detect(ctx, testImage())

		assert.Contains(t, found, "tomato")
		assert.Contains(t, found, "onion")
		assert.NotContains(t, found, "rice")
	})

	t.Run("threshold is strict", func(t *testing.T) {
		embedder := scriptedVocabEmbedder(t, map[string]float32{"tomato": 1})
		matcher := NewVisualMatcher(embedder, "clip", 0.9999999, logger)

		// Similarity is exactly 1.0 here, which still exceeds the threshold;
		// a threshold of exactly 1.0 is rejected by config validation.
		found := matcher.Detect(ctx, testImage())
		assert.Contains(t, found, "tomato")
	})

	t.Run("embedder failure degrades to empty set", func(t *testing.T) {
		embedder := &fakeEmbedder{
			embedText: func(context.Context, string, []string) ([][]float32, error) {
				return nil, errors.New("model not loaded")
			},
		}
		matcher := NewVisualMatcher(embedder, "clip", 0.22, logger)

		found := matcher.Detect(ctx, testImage())
		assert.Empty(t, found)
	})

	t.Run("vocabulary embeddings are computed once", func(t *testing.T) {
		calls := 0
		inner := scriptedVocabEmbedder(t, map[string]float32{"tomato": 1})
		embedder := &fakeEmbedder{
			embedText: func(ctx context.Context, model string, inputs []string) ([][]float32, error) {
				calls++
				return inner.embedText(ctx, model, inputs)
			},
			embedImage: inner.embedImage,
		}
		matcher := NewVisualMatcher(embedder, "clip", 0.22, logger)

		matcher.Detect(ctx, testImage())
		matcher.Detect(ctx, testImage())

		assert.Equal(t, 1, calls)
	})

	t.Run("failed vocabulary load is retried on the next call", func(t *testing.T) {
		calls := 0
		inner := scriptedVocabEmbedder(t, map[string]float32{"tomato": 1})
		embedder := &fakeEmbedder{
			embedText: func(ctx context.Context, model string, inputs []string) ([][]float32, error) {
				calls++
				if calls == 1 {
					return nil, errors.New("transient outage")
				}
				return inner.embedText(ctx, model, inputs)
			},
			embedImage: inner.embedImage,
		}
		matcher := NewVisualMatcher(embedder, "clip", 0.22, logger)

		assert.Empty(t, matcher.Detect(ctx, testImage()))
		assert.Contains(t, matcher.Detect(ctx, testImage()), "tomato")
	})
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
