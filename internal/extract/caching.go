package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ppiankov/covercheck/internal/cache"
	"github.com/ppiankov/covercheck/internal/model"
)

// CachingExtractor serves repeat documents from a cache. Only successful
// extractions are stored. Entries are scoped to the provider and model
// that produced them.
type CachingExtractor struct {
	next     Extractor
	cache    cache.Cache
	provider string
	model    string
	ttl      time.Duration
	logger   *slog.Logger
}

// NewCachingExtractor wraps next with c. A zero ttl uses the cache default.
func NewCachingExtractor(next Extractor, c cache.Cache, provider, model string, ttl time.Duration, logger *slog.Logger) *CachingExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingExtractor{next: next, cache: c, provider: provider, model: model, ttl: ttl, logger: logger}
}

// Extract implements Extractor
func (c *CachingExtractor) Extract(ctx context.Context, documentText string) (*model.ExtractedData, error) {
	key := cache.Key(c.provider, c.model, documentText)

	if raw, found := c.cache.Get(key); found {
		var data model.ExtractedData
		if err := json.Unmarshal(raw, &data); err == nil {
			c.logger.Debug("extraction cache hit", "key", key)
			return &data, nil
		}
		c.logger.Warn("dropping corrupt cache entry", "key", key)
		_ = c.cache.Delete(key)
	}

	data, err := c.next.Extract(ctx, documentText)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn("cache encode failed", "error", err)
		return data, nil
	}
	if err := c.cache.Set(key, raw, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
	return data, nil
}
