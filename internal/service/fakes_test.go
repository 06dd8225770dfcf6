package service

import (
	"context"
	"errors"
	"image"
)

// fakeEmbedder lets tests script embedding behavior per call.
type fakeEmbedder struct {
	embedText  func(ctx context.Context, model string, inputs []string) ([][]float32, error)
	embedImage func(ctx context.Context, model string, imagePNG []byte) ([]float32, error)
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	if f.embedText == nil {
		return nil, errors.New("embedText not scripted")
	}
	return f.embedText(ctx, model, inputs)
}

func (f *fakeEmbedder) EmbedImage(ctx context.Context, model string, imagePNG []byte) ([]float32, error) {
	if f.embedImage == nil {
		return nil, errors.New("embedImage not scripted")
	}
	return f.embedImage(ctx, model, imagePNG)
}

// fakeExtractor returns fixed OCR text or an error.
type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(context.Context, []byte) (string, error) {
	return f.text, f.err
}

// fakeCompleter records the prompt it received and returns a fixed output.
type fakeCompleter struct {
	output string
	called bool
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, _ int) string {
	f.called = true
	f.prompt = prompt
	return f.output
}

// fakeRetriever returns fixed results or an error.
type fakeRetriever struct {
	results []QueryResult
	err     error
	called  bool
}

func (f *fakeRetriever) QuerySimilar(context.Context, []string, int) ([]QueryResult, error) {
	f.called = true
	return f.results, f.err
}

// fixedDetector always returns the same detection set.
type fixedDetector struct {
	terms []string
}

func (f fixedDetector) Detect(context.Context, image.Image) DetectionSet {
	set := make(DetectionSet)
	for _, t := range f.terms {
		set.Add(t)
	}
	return set
}
