package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// EmbedderClient talks to the embedding sidecar over HTTP. The sidecar
// serves both the CLIP-style visual model (shared image/text space) and the
// sentence model used for retrieval; the model name is chosen per call.
type EmbedderClient struct {
	client *resty.Client
}

// NewEmbedderClient creates an embedder client for the given base URL.
func NewEmbedderClient(baseURL string, timeout time.Duration) *EmbedderClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &EmbedderClient{client: client}
}

type textEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type textEmbeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type imageEmbeddingRequest struct {
	Model string `json:"model"`
	Image string `json:"image"`
}

type imageEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// EmbedText returns one embedding per input string, in input order.
func (c *EmbedderClient) EmbedText(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	var result textEmbeddingResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(textEmbeddingRequest{Model: model, Input: inputs}).
		SetResult(&result).
		Post("/v1/embeddings/text")
	if err != nil {
		return nil, fmt.Errorf("embedder request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("embedder returned status %d", resp.StatusCode())
	}
	if len(result.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("embedder returned %d embeddings for %d inputs", len(result.Embeddings), len(inputs))
	}
	return result.Embeddings, nil
}

// EmbedImage returns the embedding of a PNG-encoded image in the given
// model's space.
func (c *EmbedderClient) EmbedImage(ctx context.Context, model string, imagePNG []byte) ([]float32, error) {
	var result imageEmbeddingResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(imageEmbeddingRequest{
			Model: model,
			Image: base64.StdEncoding.EncodeToString(imagePNG),
		}).
		SetResult(&result).
		Post("/v1/embeddings/image")
	if err != nil {
		return nil, fmt.Errorf("embedder request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("embedder returned status %d", resp.StatusCode())
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("embedder returned an empty image embedding")
	}
	return result.Embedding, nil
}
