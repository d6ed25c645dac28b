// Package extract turns raw document text into the structured field schema
// by way of an external extraction capability.
package extract

import (
	"context"
	"errors"

	"github.com/ppiankov/covercheck/internal/model"
)

var (
	// ErrUnavailable means the extraction capability could not produce a
	// usable answer: unreachable, timed out, refused, or unparseable
	ErrUnavailable = errors.New("extraction service unavailable")

	// ErrNotConfigured means the extractor cannot be built from the current configuration
	ErrNotConfigured = errors.New("extraction service not configured")
)

// Extractor converts raw text into a field schema. A successful result may
// have any number of nil fields; failures satisfy errors.Is(err, ErrUnavailable).
type Extractor interface {
	Extract(ctx context.Context, documentText string) (*model.ExtractedData, error)
}

// ExtractorFunc adapts a function to the Extractor interface
type ExtractorFunc func(ctx context.Context, documentText string) (*model.ExtractedData, error)

// Extract calls f
func (f ExtractorFunc) Extract(ctx context.Context, documentText string) (*model.ExtractedData, error) {
	return f(ctx, documentText)
}
