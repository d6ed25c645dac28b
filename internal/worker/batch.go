package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/covercheck/internal/model"
)

// Validator validates one document's text
type Validator interface {
	Validate(ctx context.Context, text string) (*model.ValidationReport, error)
}

// Document is one named input of a batch
type Document struct {
	Name string
	Text string
}

// ValidateJob validates a single document
type ValidateJob struct {
	Index     int
	Document  Document
	Validator Validator
}

// Execute executes the validation job
func (j *ValidateJob) Execute(ctx context.Context) Result {
	start := time.Now()
	report, err := j.Validator.Validate(ctx, j.Document.Text)
	return &DocumentResult{
		Index:    j.Index,
		Name:     j.Document.Name,
		Report:   report,
		Error:    err,
		Duration: time.Since(start),
	}
}

// DocumentResult represents the outcome for one document. Report is nil
// whenever Error is set.
type DocumentResult struct {
	Index    int
	Name     string
	Report   *model.ValidationReport
	Error    error
	Duration time.Duration
}

// GetError returns the error from the validation
func (r *DocumentResult) GetError() error {
	return r.Error
}

// Passed reports whether the document validated and every rule passed
func (r *DocumentResult) Passed() bool {
	return r.Error == nil && r.Report != nil && r.Report.Passed()
}

// Summary counts batch outcomes
type Summary struct {
	Total   int
	Passed  int
	Failed  int // Report produced with at least one failing rule
	Errored int // No report produced
}

// Summarize tallies a batch result set
func Summarize(results []*DocumentResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Error != nil || r.Report == nil:
			s.Errored++
		case r.Report.Passed():
			s.Passed++
		default:
			s.Failed++
		}
	}
	return s
}

// BatchProcessor validates many documents concurrently
type BatchProcessor struct {
	validator   Validator
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(validator Validator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		validator:   validator,
		concurrency: concurrency,
	}
}

// Process validates docs and returns one result per document in input order.
// Documents not started before ctx is cancelled report the context error.
func (b *BatchProcessor) Process(ctx context.Context, docs []Document) []*DocumentResult {
	out := make([]*DocumentResult, len(docs))
	if len(docs) == 0 {
		return out
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Results are drained while submitting so a full queue cannot stall the workers
	done := make(chan struct{})
	go func() {
		defer close(done)
		for result := range pool.Results() {
			r := result.(*DocumentResult)
			out[r.Index] = r
		}
	}()

	for i, doc := range docs {
		if !pool.Submit(&ValidateJob{Index: i, Document: doc, Validator: b.validator}) {
			break
		}
	}
	pool.Close()
	<-done

	for i, r := range out {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &DocumentResult{Index: i, Name: docs[i].Name, Error: err}
		}
	}
	return out
}

// ReadPaths reads paths from a list file (one per line). Blank lines and
// lines starting with '#' are skipped and duplicates are dropped.
func ReadPaths(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
