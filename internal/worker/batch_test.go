package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/covercheck/internal/model"
)

// mockValidator fails documents whose text contains "bad" and reports a
// failing rule for text containing "fail"
type mockValidator struct {
	calls int32
	delay time.Duration
}

func (m *mockValidator) Validate(ctx context.Context, text string) (*model.ValidationReport, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if strings.Contains(text, "bad") {
		return nil, errors.New("extraction failed")
	}
	status := model.StatusPass
	if strings.Contains(text, "fail") {
		status = model.StatusFail
	}
	return &model.ValidationReport{
		ExtractedData:     model.ExtractedData{PolicyNumber: model.StringPtr(text)},
		ValidationResults: []model.RuleResult{{Rule: "Completeness Check", Status: status}},
	}, nil
}

func TestBatchProcessor_Process(t *testing.T) {
	validator := &mockValidator{delay: 5 * time.Millisecond}
	processor := NewBatchProcessor(validator, 3)

	var docs []Document
	for i := 0; i < 12; i++ {
		name := "doc" + string(rune('a'+i))
		docs = append(docs, Document{Name: name, Text: name})
	}

	results := processor.Process(context.Background(), docs)

	if len(results) != len(docs) {
		t.Fatalf("expected %d results, got %d", len(docs), len(results))
	}
	for i, res := range results {
		if res.Name != docs[i].Name {
			t.Errorf("result %d: expected %s, got %s (order not preserved)", i, docs[i].Name, res.Name)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Name, res.Error)
		}
		if res.Report == nil || *res.Report.ExtractedData.PolicyNumber != docs[i].Text {
			t.Errorf("result %d carries the wrong report", i)
		}
	}
	if atomic.LoadInt32(&validator.calls) != int32(len(docs)) {
		t.Errorf("expected %d validations, got %d", len(docs), validator.calls)
	}
}

func TestBatchProcessor_Process_Mixed(t *testing.T) {
	processor := NewBatchProcessor(&mockValidator{}, 2)

	results := processor.Process(context.Background(), []Document{
		{Name: "ok.txt", Text: "ok"},
		{Name: "bad.txt", Text: "bad"},
		{Name: "fail.txt", Text: "fail"},
	})

	if results[1].Error == nil || results[1].Report != nil {
		t.Error("expected error and nil report for bad.txt")
	}
	if !results[0].Passed() || results[2].Passed() {
		t.Error("unexpected pass/fail classification")
	}

	s := Summarize(results)
	want := Summary{Total: 3, Passed: 1, Failed: 1, Errored: 1}
	if s != want {
		t.Errorf("expected %+v, got %+v", want, s)
	}
}

func TestBatchProcessor_Process_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockValidator{}, 2)
	results := processor.Process(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestBatchProcessor_Process_Cancelled(t *testing.T) {
	processor := NewBatchProcessor(&mockValidator{delay: time.Second}, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	docs := []Document{{Name: "a", Text: "a"}, {Name: "b", Text: "b"}, {Name: "c", Text: "c"}}
	results := processor.Process(ctx, docs)

	if len(results) != len(docs) {
		t.Fatalf("expected a result per document, got %d", len(results))
	}
	for i, res := range results {
		if res.Error == nil {
			t.Errorf("result %d: expected cancellation error", i)
		}
		if res.Name != docs[i].Name {
			t.Errorf("result %d: expected name %s, got %s", i, docs[i].Name, res.Name)
		}
	}
}

func TestReadPaths(t *testing.T) {
	content := `
# Comment
policies/a.txt
policies/b.html

policies/a.txt
  # Indented comment
`
	path := filepath.Join(t.TempDir(), "docs.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := ReadPaths(path)
	if err != nil {
		t.Fatalf("ReadPaths failed: %v", err)
	}

	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d: %v", len(paths), paths)
	}
	if paths[0] != "policies/a.txt" || paths[1] != "policies/b.html" {
		t.Errorf("unexpected paths: %v", paths)
	}
}

func TestReadPaths_Missing(t *testing.T) {
	if _, err := ReadPaths(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
