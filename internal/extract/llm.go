package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/covercheck/internal/llm"
	"github.com/ppiankov/covercheck/internal/model"
)

// LLMExtractor asks an llm.Provider to fill FieldSchema
type LLMExtractor struct {
	provider  llm.Provider
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *slog.Logger
}

// LLMOptions tunes an LLMExtractor. Zero values defer to the provider configuration.
type LLMOptions struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewLLMExtractor creates an extractor backed by provider
func NewLLMExtractor(provider llm.Provider, opts LLMOptions) *LLMExtractor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LLMExtractor{
		provider:  provider,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		timeout:   timeout,
		logger:    logger,
	}
}

// Provider returns the name of the backing provider
func (e *LLMExtractor) Provider() string {
	return e.provider.Name()
}

// Extract implements Extractor
func (e *LLMExtractor) Extract(ctx context.Context, documentText string) (*model.ExtractedData, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.provider.Extract(ctx, llm.ExtractRequest{
		System:    systemPrompt,
		Prompt:    buildPrompt(documentText),
		Schema:    FieldSchema,
		Model:     e.model,
		MaxTokens: e.maxTokens,
	})
	if err != nil {
		e.logger.Warn("extraction call failed", "provider", e.provider.Name(), "duration", time.Since(start), "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, e.provider.Name(), err)
	}

	decoded, err := Decode(resp.Content)
	if err != nil {
		e.logger.Warn("extraction reply rejected", "provider", e.provider.Name(), "model", resp.Model, "error", err)
		return nil, err
	}
	for _, w := range decoded.Warnings {
		e.logger.Warn("extraction field dropped", "provider", e.provider.Name(), "detail", w)
	}

	e.logger.Debug("extraction complete",
		"provider", e.provider.Name(),
		"model", resp.Model,
		"tokens", resp.TokensUsed,
		"duration", time.Since(start),
	)
	data := decoded.Data
	return &data, nil
}
