package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/covercheck/internal/report"
	"github.com/ppiankov/covercheck/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	inputDir     string
	listFile     string
)

// documentExts are the file types picked up by --dir
var documentExts = map[string]bool{".txt": true, ".md": true, ".html": true, ".htm": true}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [file...]",
	Short: "Validate many documents in parallel",
	Long: `Batch validates documents concurrently:
- Take documents from arguments, a directory (--dir) or a list file (--list)
- Validate them with a configurable number of workers
- Write <name>.json and <name>.md reports into the output directory
- Print a per-document summary and totals

Example:
  covercheck batch policies/*.txt
  covercheck batch --dir ./inbox --concurrency 8 --output-dir ./reports
  covercheck batch --list documents.txt --fail-on-violation`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./covercheck-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&inputDir, "dir", "", "validate every .txt, .md, .html and .htm file in this directory")
	batchCmd.Flags().StringVar(&listFile, "list", "", "file with one document path per line")
	batchCmd.Flags().BoolVar(&failOnViolation, "fail-on-violation", false, "exit 1 when any document fails or errors")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	paths, err := collectPaths(args, inputDir, listFile)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no documents given (pass files, --dir or --list)")
	}

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}

	a, err := newApp(cfg, false)
	if err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	banner(cmd, "covercheck Batch Validation")
	fmt.Fprintf(out, "  Documents:    %d\n", len(paths))
	fmt.Fprintf(out, "  Workers:      %d\n", workers)
	fmt.Fprintf(out, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(out, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(out, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	docs := make([]worker.Document, 0, len(paths))
	readFailures := 0
	for _, p := range paths {
		_, text, err := readDocument(p, cmd.InOrStdin())
		if err != nil {
			readFailures++
			fmt.Fprintf(out, "✗ %s: %v\n", p, err)
			continue
		}
		docs = append(docs, worker.Document{Name: p, Text: text})
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, batchTimeout)
	defer cancel()

	fmt.Fprintf(out, "⚙️  Validating %d documents with %d workers...\n\n", len(docs), workers)
	results := worker.NewBatchProcessor(a.pipeline, workers).Process(ctx, docs)

	renderer := report.NewRenderer(!noFooter, Version)
	names := newSlugger()
	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", r.Name, r.Error)
			continue
		}

		slug := names.next(r.Name)
		if err := renderer.RenderJSON(r.Report, filepath.Join(outputDir, slug+".json")); err != nil {
			fmt.Fprintf(out, "✗ %s: failed to write JSON: %v\n", r.Name, err)
			continue
		}
		if err := renderer.RenderMarkdown(r.Report, filepath.Base(r.Name), filepath.Join(outputDir, slug+".md")); err != nil {
			fmt.Fprintf(out, "✗ %s: failed to write Markdown: %v\n", r.Name, err)
			continue
		}
		renderer.RenderSummary(out, r.Name, r.Report)
	}

	summary := worker.Summarize(results)
	summary.Total += readFailures
	summary.Errored += readFailures

	banner(cmd, "Batch Complete")
	fmt.Fprintf(out, "  Total:     %d documents\n", summary.Total)
	fmt.Fprintf(out, "  Passed:    %d\n", summary.Passed)
	fmt.Fprintf(out, "  Failed:    %d\n", summary.Failed)
	fmt.Fprintf(out, "  Errors:    %d\n", summary.Errored)
	fmt.Fprintf(out, "  Output:    %s\n", outputDir)
	fmt.Fprintf(out, "\n")

	if failOnViolation && summary.Passed != summary.Total {
		return fmt.Errorf("%w: %d of %d documents did not pass", ErrViolations, summary.Total-summary.Passed, summary.Total)
	}
	return nil
}

// collectPaths merges explicit arguments, directory entries and list file
// lines, dropping duplicates while keeping first-seen order
func collectPaths(args []string, dir, list string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, a := range args {
		add(a)
	}

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read directory: %w", err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() || !documentExts[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			found = append(found, filepath.Join(dir, e.Name()))
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}

	if list != "" {
		listed, err := worker.ReadPaths(list)
		if err != nil {
			return nil, fmt.Errorf("read list file: %w", err)
		}
		for _, p := range listed {
			add(p)
		}
	}

	return paths, nil
}

// slugger hands out unique report file names
type slugger map[string]int

func newSlugger() slugger { return make(slugger) }

func (s slugger) next(name string) string {
	base := sanitizeFilename(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	s[base]++
	if n := s[base]; n > 1 {
		return fmt.Sprintf("%s-%d", base, n)
	}
	return base
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))

	if s == "" || s == "." || s == ".." {
		s = "document"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
