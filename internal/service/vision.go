package service

import (
	"context"
	"image"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/vocab"
)

// VisualMatcher embeds an image and the fixed vocabulary into a shared
// representation space and returns every term whose cosine similarity to the
// image strictly exceeds the threshold. Deliberately no top-k cutoff: a
// pantry photo usually contains several items, and downstream stages tolerate
// false positives better than false negatives.
type VisualMatcher struct {
	embedder  Embedder
	model     string
	threshold float64
	logger    *zap.Logger

	// Vocabulary embeddings are computed once per process. Failures are not
	// cached so a transient backend outage does not disable the matcher for
	// the process lifetime.
	mu       sync.Mutex
	vocabEmb [][]float32
}

// NewVisualMatcher creates a visual matcher using the given embedding model
// and similarity threshold.
func NewVisualMatcher(embedder Embedder, model string, threshold float64, logger *zap.Logger) *VisualMatcher {
	return &VisualMatcher{
		embedder:  embedder,
		model:     model,
		threshold: threshold,
		logger:    logger,
	}
}

// vocabEmbeddings lazily computes and caches embeddings for the flattened
// vocabulary. The returned slice is parallel to vocab.Terms().
func (m *VisualMatcher) vocabEmbeddings(ctx context.Context) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vocabEmb != nil {
		return m.vocabEmb, nil
	}

	m.logger.Info("embedding vocabulary", zap.String("model", m.model), zap.Int("terms", len(vocab.Terms())))
	emb, err := m.embedder.EmbedText(ctx, m.model, vocab.Terms())
	if err != nil {
		return nil, err
	}
	m.vocabEmb = emb
	return emb, nil
}

// Detect returns the vocabulary terms visually present in the image. Any
// embedding backend failure degrades to an empty set so the pipeline stays
// usable in OCR-only mode.
func (m *VisualMatcher) Detect(ctx context.Context, img image.Image) DetectionSet {
	found := make(DetectionSet)

	vocabEmb, err := m.vocabEmbeddings(ctx)
	if err != nil {
		m.logger.Warn("visual matcher unavailable", zap.Error(err))
		return found
	}

	png, err := encodePNG(img)
	if err != nil {
		m.logger.Warn("failed to encode image for embedding", zap.Error(err))
		return found
	}

	imageEmb, err := m.embedder.EmbedImage(ctx, m.model, png)
	if err != nil {
		m.logger.Warn("image embedding failed", zap.Error(err))
		return found
	}

	terms := vocab.Terms()
	for i, termEmb := range vocabEmb {
		if cosineSimilarity(imageEmb, termEmb) > m.threshold {
			found.Add(terms[i])
		}
	}
	return found
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0
// when either vector is degenerate.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
