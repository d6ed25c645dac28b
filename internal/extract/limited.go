package extract

import (
	"context"
	"fmt"

	"github.com/ppiankov/covercheck/internal/model"
	"github.com/ppiankov/covercheck/internal/worker"
)

// LimitedExtractor throttles calls to next through a shared limiter
type LimitedExtractor struct {
	next    Extractor
	limiter *worker.Limiter
	key     string
}

// NewLimitedExtractor wraps next; key selects the limiter bucket, usually the provider name
func NewLimitedExtractor(next Extractor, limiter *worker.Limiter, key string) *LimitedExtractor {
	return &LimitedExtractor{next: next, limiter: limiter, key: key}
}

// Extract implements Extractor
func (l *LimitedExtractor) Extract(ctx context.Context, documentText string) (*model.ExtractedData, error) {
	if err := l.limiter.Wait(ctx, l.key); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", ErrUnavailable, err)
	}
	return l.next.Extract(ctx, documentText)
}
