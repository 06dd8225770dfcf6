package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sort"
	"sync"

	// Register the JPEG decoder; the png import above registers PNG.
	_ "image/jpeg"

	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/vocab"
)

// maxDetectionWidth bounds the pixel width of images sent to the detection
// backends. Phone photos are routinely 4000px wide; the backends neither
// need nor want that.
const maxDetectionWidth = 1024

// DetectionService fuses the visual and text matchers into one deduplicated,
// normalized ingredient list.
type DetectionService struct {
	visual Detector
	text   Detector
	logger *zap.Logger
}

// NewDetectionService creates the ingredient aggregator. Either detector may
// be a NoopDetector when its backend is not configured.
func NewDetectionService(visual, text Detector, logger *zap.Logger) *DetectionService {
	return &DetectionService{visual: visual, text: text, logger: logger}
}

// ExtractIngredients decodes the image, runs both detectors and returns the
// sorted union of their normalized findings. A decode failure is fatal for
// this call and yields an empty list; the caller must treat an empty result
// as "no detection", not as a crash. The returned list is a draft for user
// confirmation, never a final answer.
func (s *DetectionService) ExtractIngredients(ctx context.Context, imageBytes []byte) []string {
	img, format, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		s.logger.Error("image decode failed", zap.Error(err))
		return []string{}
	}
	s.logger.Debug("decoded pantry image",
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)

	if img.Bounds().Dx() > maxDetectionWidth {
		img = resize.Resize(maxDetectionWidth, 0, img, resize.Lanczos3)
	}

	// The matchers are independent and share only read-only caches, so they
	// run concurrently. Neither is authoritative.
	var visualSet, textSet DetectionSet
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		visualSet = s.visual.Detect(ctx, img)
	}()
	go func() {
		defer wg.Done()
		textSet = s.text.Detect(ctx, img)
	}()
	wg.Wait()

	return AggregateDetections(visualSet, textSet)
}

// AggregateDetections unions detector outputs, normalizes each term through
// the synonym map and returns the sorted, deduplicated canonical list.
func AggregateDetections(sets ...DetectionSet) []string {
	detected := make(DetectionSet)
	for _, s := range sets {
		detected.Union(s)
	}

	unique := make(map[string]struct{}, len(detected))
	for term := range detected {
		unique[vocab.Normalize(term)] = struct{}{}
	}

	result := make([]string, 0, len(unique))
	for term := range unique {
		result = append(result, term)
	}
	sort.Strings(result)
	return result
}

// NoopDetector is substituted for a matcher whose backend is not configured,
// selected at startup rather than checked per call.
type NoopDetector struct{}

// Detect always returns an empty set.
func (NoopDetector) Detect(context.Context, image.Image) DetectionSet {
	return make(DetectionSet)
}

// encodePNG serializes an image for transport to the detection backends.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
