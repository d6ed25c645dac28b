// Package rules evaluates the fixed set of business rules against
// extracted insurance data. Every rule is a pure function of the data
// and the injected vessel list, so evaluation order never changes an
// outcome; the engine still reports verdicts in registration order.
package rules

import (
	"context"

	"github.com/ppiankov/covercheck/internal/model"
	"github.com/ppiankov/covercheck/internal/vessels"
	"golang.org/x/sync/errgroup"
)

// Engine runs an ordered list of rules
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with the standard rules, in order:
// Date Consistency, Value Check, Vessel Name Match, Completeness Check
func NewEngine(list *vessels.List) *Engine {
	return NewEngineWithRules(
		DateConsistency(),
		ValueCheck(),
		VesselNameMatch(list),
		CompletenessCheck(),
	)
}

// NewEngineWithRules creates an engine with a custom rule set
func NewEngineWithRules(rules ...Rule) *Engine {
	r := make([]Rule, len(rules))
	copy(r, rules)
	return &Engine{rules: r}
}

// RuleNames returns the registered rule names in order
func (e *Engine) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name()
	}
	return names
}

// Evaluate runs every rule and returns one verdict per rule, in order.
// A missing field fails the rules that need it; no rule is ever skipped.
func (e *Engine) Evaluate(data model.ExtractedData) []model.RuleResult {
	results := make([]model.RuleResult, len(e.rules))
	for i, r := range e.rules {
		results[i] = r.Evaluate(data.Clone())
	}
	return results
}

// EvaluateParallel runs every rule concurrently. The result is identical
// to Evaluate.
func (e *Engine) EvaluateParallel(ctx context.Context, data model.ExtractedData) ([]model.RuleResult, error) {
	results := make([]model.RuleResult, len(e.rules))
	g, ctx := errgroup.WithContext(ctx)
	for i, r := range e.rules {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.Evaluate(data.Clone())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
