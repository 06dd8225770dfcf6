package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/vocab"
)

// contrastFactor is the fixed contrast multiplier applied before OCR to
// improve legibility of low-contrast packaging labels.
const contrastFactor = 1.8

// OCRClient talks to the OCR sidecar over HTTP.
type OCRClient struct {
	client *resty.Client
}

// NewOCRClient creates an OCR client for the given base URL.
func NewOCRClient(baseURL string, timeout time.Duration) *OCRClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &OCRClient{client: client}
}

type ocrRequest struct {
	Image string `json:"image"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

// ExtractText runs OCR over a PNG-encoded image.
func (c *OCRClient) ExtractText(ctx context.Context, imagePNG []byte) (string, error) {
	var result ocrResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(ocrRequest{Image: base64.StdEncoding.EncodeToString(imagePNG)}).
		SetResult(&result).
		Post("/v1/ocr")
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ocr returned status %d", resp.StatusCode())
	}
	return result.Text, nil
}

// TextMatcher extracts text from an image and returns vocabulary terms that
// appear as whole words. Matching is token-based: the term's tokens must
// appear as a contiguous run in the extracted text, which handles multi-word
// terms like "bell pepper" with the same rule as single words and prevents
// substring matches like "rice" inside "price".
type TextMatcher struct {
	extractor TextExtractor
	logger    *zap.Logger
}

// NewTextMatcher creates a text matcher backed by the given OCR extractor.
func NewTextMatcher(extractor TextExtractor, logger *zap.Logger) *TextMatcher {
	return &TextMatcher{extractor: extractor, logger: logger}
}

// Detect returns the vocabulary terms found in the image's text. Any OCR
// failure degrades to an empty set; this matcher is best-effort.
func (m *TextMatcher) Detect(ctx context.Context, img image.Image) DetectionSet {
	found := make(DetectionSet)

	enhanced := imaging.AdjustContrast(img, (contrastFactor-1)*100)

	png, err := encodePNG(enhanced)
	if err != nil {
		m.logger.Warn("failed to encode image for ocr", zap.Error(err))
		return found
	}

	text, err := m.extractor.ExtractText(ctx, png)
	if err != nil {
		m.logger.Warn("ocr unavailable", zap.Error(err))
		return found
	}

	tokens := tokenize(text)
	for _, term := range vocab.Terms() {
		if containsTokenRun(tokens, strings.Fields(term)) {
			found.Add(term)
		}
	}
	return found
}

// tokenize lowercases the text, splits on whitespace and strips punctuation
// from token edges so "Rice," matches the vocabulary term "rice".
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := strings.Trim(f, ".,;:!?()[]\"'"); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// containsTokenRun reports whether run appears as a contiguous subsequence
// of tokens.
func containsTokenRun(tokens, run []string) bool {
	if len(run) == 0 || len(run) > len(tokens) {
		return false
	}
	for i := 0; i+len(run) <= len(tokens); i++ {
		match := true
		for j := range run {
			if tokens[i+j] != run[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
