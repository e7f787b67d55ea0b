// Package ocr provides core.TextExtractor implementations.
package ocr

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/internal/util"
)

// SampleText is the extraction result of a Static extractor without
// configured text.
const SampleText = `Extracted Text from Image:

This is a sample text extraction result. A real deployment plugs an OCR
engine in behind the same interface.

Document Analysis:
- Text quality: High
- Languages detected: English`

// Options configure a Static extractor.
type Options struct {
	Text       string
	Confidence float64
	// Delay simulates processing latency. It is interrupted by the context.
	Delay time.Duration
}

// Static returns the same extraction for every non-empty image.
type Static struct {
	opts Options
}

// NewStatic creates a Static extractor.
func NewStatic(optFns ...func(o *Options)) *Static {
	opts := Options{Text: SampleText, Confidence: 0.985}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Static{opts: opts}
}

// Extract implements core.TextExtractor.
func (s *Static) Extract(ctx context.Context, image []byte) (core.Extraction, error) {
	if err := util.Sleep(ctx, s.opts.Delay); err != nil {
		return core.Extraction{}, err
	}
	if len(image) == 0 {
		return core.Extraction{}, core.ExtractionError(errors.New("empty image"))
	}
	return core.Extraction{Text: s.opts.Text, Confidence: s.opts.Confidence}, nil
}
