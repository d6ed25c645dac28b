package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/covercheck/internal/model"
)

// Renderer writes reports as JSON, Markdown or a terminal summary
type Renderer struct {
	includeFooter bool
	version       string
}

// NewRenderer creates a renderer. The Markdown footer names version when includeFooter is set.
func NewRenderer(includeFooter bool, version string) *Renderer {
	return &Renderer{includeFooter: includeFooter, version: version}
}

// WriteJSON writes the report as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, report *model.ValidationReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RenderJSON writes the report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.ValidationReport, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteJSON(w, report) })
}

// RenderMarkdown writes the Markdown form of the report to path
func (r *Renderer) RenderMarkdown(report *model.ValidationReport, title, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteMarkdown(w, report, title) })
}

// WriteMarkdown writes the report as a Markdown document with a field
// table and a verdict table
func (r *Renderer) WriteMarkdown(w io.Writer, report *model.ValidationReport, title string) error {
	var b strings.Builder

	if title == "" {
		title = "Insurance Document Validation"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	failures := report.Failures()
	if len(failures) == 0 {
		b.WriteString("**Result:** PASS\n\n")
	} else {
		fmt.Fprintf(&b, "**Result:** FAIL (%d of %d rules failed)\n\n", len(failures), len(report.ValidationResults))
	}

	b.WriteString("## Extracted Data\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	d := report.ExtractedData
	fmt.Fprintf(&b, "| Policy number | %s |\n", cell(stringValue(d.PolicyNumber)))
	fmt.Fprintf(&b, "| Vessel name | %s |\n", cell(stringValue(d.VesselName)))
	fmt.Fprintf(&b, "| Policy start date | %s |\n", cell(dateValue(d.PolicyStartDate)))
	fmt.Fprintf(&b, "| Policy end date | %s |\n", cell(dateValue(d.PolicyEndDate)))
	fmt.Fprintf(&b, "| Insured value | %s |\n", cell(intValue(d.InsuredValue)))

	b.WriteString("\n## Validation Results\n\n")
	b.WriteString("| Rule | Status | Message |\n|---|---|---|\n")
	for _, res := range report.ValidationResults {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(res.Rule), res.Status, cell(res.Message))
	}

	if r.includeFooter {
		version := r.version
		if version == "" {
			version = "dev"
		}
		fmt.Fprintf(&b, "\n---\n_Generated by covercheck %s. Verdicts only reflect the fields the extraction service returned._\n", version)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSummary prints a one-line verdict for name followed by any failing rules
func (r *Renderer) RenderSummary(w io.Writer, name string, report *model.ValidationReport) {
	failures := report.Failures()
	if len(failures) == 0 {
		fmt.Fprintf(w, "✓ %s: PASS (%d rules)\n", name, len(report.ValidationResults))
		return
	}

	fmt.Fprintf(w, "✗ %s: FAIL (%d of %d rules)\n", name, len(failures), len(report.ValidationResults))
	for _, f := range failures {
		fmt.Fprintf(w, "    - %s: %s\n", f.Rule, f.Message)
	}
}

func writeFile(path string, render func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

const missing = "_missing_"

func stringValue(s *string) string {
	if s == nil {
		return missing
	}
	if strings.TrimSpace(*s) == "" {
		return fmt.Sprintf("%q", *s)
	}
	return *s
}

func dateValue(d *model.Date) string {
	if d == nil {
		return missing
	}
	return d.String()
}

func intValue(v *int64) string {
	if v == nil {
		return missing
	}
	return fmt.Sprintf("%d", *v)
}

// cell escapes text for a Markdown table cell
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
