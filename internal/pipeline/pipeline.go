// Package pipeline runs one document through extraction, rule evaluation
// and report assembly.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/covercheck/internal/extract"
	"github.com/ppiankov/covercheck/internal/model"
	"github.com/ppiankov/covercheck/internal/report"
	"github.com/ppiankov/covercheck/internal/rules"
	"github.com/ppiankov/covercheck/internal/vessels"
)

// ErrEmptyDocument means the request carried no document text
var ErrEmptyDocument = errors.New("document_text must be a non-empty string")

// Pipeline orchestrates the complete validation of one document
type Pipeline struct {
	extractor extract.Extractor
	vessels   *vessels.Holder
	parallel  bool
	logger    *slog.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithParallelRules evaluates rules concurrently
func WithParallelRules() Option {
	return func(p *Pipeline) { p.parallel = true }
}

// WithLogger sets the pipeline logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a pipeline. extractor may be nil, in which case every
// validation fails with extract.ErrNotConfigured.
func New(extractor extract.Extractor, holder *vessels.Holder, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extractor,
		vessels:   holder,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ready reports whether the extractor and the vessel list are both present
func (p *Pipeline) Ready() (extractor bool, vesselList bool) {
	return p.extractor != nil, p.vesselList() != nil
}

func (p *Pipeline) vesselList() *vessels.List {
	if p.vessels == nil {
		return nil
	}
	return p.vessels.Current()
}

// Validate extracts the fields of text and evaluates every rule against
// them. Extraction failures are returned as errors and never produce a
// report; rule failures are part of the report.
func (p *Pipeline) Validate(ctx context.Context, text string) (*model.ValidationReport, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	if p.extractor == nil {
		return nil, extract.ErrNotConfigured
	}

	// One snapshot for the whole validation, even if a reload lands meanwhile
	list := p.vesselList()
	if list == nil {
		return nil, fmt.Errorf("%w: no list loaded", vessels.ErrNotFound)
	}

	start := time.Now()
	data, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("extract: %w: empty result", extract.ErrUnavailable)
	}
	extracted := data.Clone()

	engine := rules.NewEngine(list)
	var results []model.RuleResult
	if p.parallel {
		results, err = engine.EvaluateParallel(ctx, extracted)
		if err != nil {
			return nil, fmt.Errorf("evaluate rules: %w", err)
		}
	} else {
		results = engine.Evaluate(extracted)
	}

	rep := report.Build(&extracted, results)

	p.logger.Info("document validated",
		"passed", rep.Passed(),
		"failures", len(rep.Failures()),
		"empty_extraction", extracted.IsEmpty(),
		"duration", time.Since(start),
	)
	return rep, nil
}
