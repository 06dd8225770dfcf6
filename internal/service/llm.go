package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// GenerationUnavailable is returned in place of generated text when the
// completion backend cannot be reached. Downstream parsing degrades to a
// default recipe shell instead of surfacing an error to the caller.
const GenerationUnavailable = "System Error: Model could not be loaded."

// Fixed sampling parameters for recipe generation.
const (
	generationTemperature = 0.7
	generationTopP        = 0.9
)

// stopSequences prevent the backend from hallucinating a new dialogue turn.
var stopSequences = []string{"[INST]", "User:"}

// CompletionClient adapts a llama.cpp-style completion server to the
// pipeline's prompt-in/text-out contract.
type CompletionClient struct {
	client *resty.Client
	logger *zap.Logger
}

// NewCompletionClient creates a completion client for the given base URL.
// The timeout bounds the whole generation call, which is the dominant
// latency source in the pipeline.
func NewCompletionClient(baseURL string, timeout time.Duration, logger *zap.Logger) *CompletionClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &CompletionClient{client: client, logger: logger}
}

type completionRequest struct {
	Prompt      string   `json:"prompt"`
	NPredict    int      `json:"n_predict"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop"`
}

type completionResponse struct {
	Content string `json:"content"`
}

// Complete sends the prompt to the completion backend in the Mistral/Llama
// instruction format. Unavailability never propagates as an error; the
// sentinel text is returned instead.
func (c *CompletionClient) Complete(ctx context.Context, prompt string, maxTokens int) string {
	var result completionResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(completionRequest{
			Prompt:      "[INST] " + prompt + " [/INST]",
			NPredict:    maxTokens,
			Temperature: generationTemperature,
			TopP:        generationTopP,
			Stop:        stopSequences,
		}).
		SetResult(&result).
		Post("/completion")
	if err != nil {
		c.logger.Warn("generation backend unreachable", zap.Error(err))
		return GenerationUnavailable
	}
	if resp.IsError() {
		c.logger.Warn("generation backend error", zap.Int("status", resp.StatusCode()))
		return GenerationUnavailable
	}

	return strings.TrimSpace(result.Content)
}
