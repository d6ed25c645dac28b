package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/covercheck/internal/extract"
	"github.com/ppiankov/covercheck/internal/logging"
	"github.com/ppiankov/covercheck/internal/model"
	"github.com/ppiankov/covercheck/internal/pipeline"
	"github.com/ppiankov/covercheck/internal/rules"
	"github.com/ppiankov/covercheck/internal/vessels"
)

// app bundles what every validating command needs
type app struct {
	cfg      *model.Config
	holder   *vessels.Holder
	pipeline *pipeline.Pipeline
}

// newApp loads the vessel list and the extractor chain. With degraded
// set, an unconfigured extractor is logged and left nil so the pipeline
// answers every request with extract.ErrNotConfigured.
func newApp(cfg *model.Config, degraded bool) (*app, error) {
	list, err := vessels.Load(cfg.Vessels.Path)
	if err != nil {
		return nil, fmt.Errorf("load vessel list: %w", err)
	}
	holder := vessels.NewHolder(list)

	logger := logging.New("extract")
	ex, err := extract.NewFromConfig(cfg, logger)
	if err != nil {
		if !degraded || !errors.Is(err, extract.ErrNotConfigured) {
			return nil, err
		}
		logger.Warn("extractor not configured, validation disabled", slog.Any("err", err))
		ex = nil
	}

	opts := []pipeline.Option{pipeline.WithLogger(logging.New("pipeline"))}
	if cfg.Rules.Parallel {
		opts = append(opts, pipeline.WithParallelRules())
	}
	p := pipeline.New(ex, holder, opts...)
	return &app{cfg: cfg, holder: holder, pipeline: p}, nil
}

// ruleSummary lists the rules every report carries and how they run
func ruleSummary(cfg *model.Config) string {
	mode := "sequential"
	if cfg.Rules.Parallel {
		mode = "parallel"
	}
	return fmt.Sprintf("%s (%s)", strings.Join(rules.NewEngine(nil).RuleNames(), ", "), mode)
}
