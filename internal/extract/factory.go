package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/covercheck/internal/cache"
	"github.com/ppiankov/covercheck/internal/llm"
	"github.com/ppiankov/covercheck/internal/model"
	"github.com/ppiankov/covercheck/internal/worker"
)

// NewFromConfig builds the extractor chain described by cfg: the provider
// extractor, behind a rate limiter when one is configured, behind a cache
// when caching is enabled. A missing credential yields ErrNotConfigured.
func NewFromConfig(cfg *model.Config, logger *slog.Logger) (Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	name := strings.ToLower(cfg.Extraction.Provider)
	modelName := cfg.Extraction.Model
	if modelName == "" {
		modelName = llm.DefaultModel(name)
	}

	var ex Extractor
	if name == "static" {
		ex = NewStaticExtractor(model.ExtractedData{})
	} else {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.Extraction))
		if err != nil {
			if errors.Is(err, llm.ErrMissingAPIKey) {
				return nil, fmt.Errorf("%w: %s requires %s", ErrNotConfigured, name, llm.APIKeyEnv(name))
			}
			return nil, fmt.Errorf("%w: %w", ErrNotConfigured, err)
		}
		ex = NewLLMExtractor(provider, LLMOptions{
			Model:     modelName,
			MaxTokens: cfg.Extraction.MaxTokens,
			Timeout:   cfg.Extraction.Timeout,
			Logger:    logger,
		})

		if cfg.RateLimit.RequestsPerSecond > 0 {
			limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
			ex = NewLimitedExtractor(ex, limiter, provider.Name())
		}
	}

	if c := cache.New(cfg.Cache); c != nil && name != "static" {
		ex = NewCachingExtractor(ex, c, name, modelName, 0, logger)
	}

	logger.Debug("extractor ready", "provider", name, "model", modelName, "cache", cfg.Cache.Enabled)
	return ex, nil
}
