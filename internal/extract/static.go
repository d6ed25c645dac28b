package extract

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ppiankov/covercheck/internal/model"
)

// StaticExtractor returns a fixed result without calling out. It backs
// tests and the "static" provider used for offline dry runs.
type StaticExtractor struct {
	data  model.ExtractedData
	err   error
	calls atomic.Int64
}

// NewStaticExtractor returns data on every call
func NewStaticExtractor(data model.ExtractedData) *StaticExtractor {
	return &StaticExtractor{data: data.Clone()}
}

// NewFailingExtractor returns err on every call. err is wrapped so that it
// satisfies errors.Is(err, ErrUnavailable).
func NewFailingExtractor(err error) *StaticExtractor {
	if err == nil {
		err = ErrUnavailable
	}
	return &StaticExtractor{err: err}
}

// Extract implements Extractor
func (s *StaticExtractor) Extract(ctx context.Context, _ string) (*model.ExtractedData, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if s.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, s.err)
	}
	data := s.data.Clone()
	return &data, nil
}

// Calls reports how many times Extract was invoked
func (s *StaticExtractor) Calls() int64 {
	return s.calls.Load()
}
