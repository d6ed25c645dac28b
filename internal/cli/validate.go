package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/covercheck/internal/extract"
	"github.com/ppiankov/covercheck/internal/model"
	"github.com/ppiankov/covercheck/internal/report"
	"github.com/spf13/cobra"
)

// ErrViolations is returned with --fail-on-violation when a rule failed
var ErrViolations = errors.New("validation failed")

var (
	jsonOut         string
	mdOut           string
	failOnViolation bool
	validateTimeout time.Duration
	noFooter        bool
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file|->",
	Short: "Validate a single insurance document",
	Long: `Validate extracts the policy fields from one document and evaluates
every rule against them. Use "-" to read the document from stdin. HTML files
are reduced to their visible text first.

The JSON report is written to stdout unless --json names a file.

Example:
  covercheck validate policy.txt
  covercheck validate policy.html --json report.json --md report.md
  cat policy.txt | covercheck validate - --fail-on-violation`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&jsonOut, "json", "", "write the JSON report to this file")
	validateCmd.Flags().StringVar(&mdOut, "md", "", "write a Markdown report to this file")
	validateCmd.Flags().BoolVar(&failOnViolation, "fail-on-violation", false, "exit 1 when any rule fails")
	validateCmd.Flags().DurationVar(&validateTimeout, "timeout", 2*time.Minute, "timeout for the validation")
	validateCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name, text, err := readDocument(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp(cfg, false)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, validateTimeout)
	defer cancel()

	rep, err := a.pipeline.Validate(ctx, text)
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}

	return writeReport(cmd, cfg, name, rep)
}

func writeReport(cmd *cobra.Command, cfg *model.Config, name string, rep *model.ValidationReport) error {
	renderer := report.NewRenderer(!noFooter, Version)

	if jsonOut == "" || jsonOut == "-" {
		if err := renderer.WriteJSON(cmd.OutOrStdout(), rep); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	} else if err := renderer.RenderJSON(rep, jsonOut); err != nil {
		return err
	}

	if mdOut != "" {
		if err := renderer.RenderMarkdown(rep, name, mdOut); err != nil {
			return err
		}
	}

	renderer.RenderSummary(cmd.ErrOrStderr(), name, rep)
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "  provider: %s/%s\n", cfg.Extraction.Provider, cfg.Extraction.Model)
	}

	if failOnViolation && !rep.Passed() {
		return fmt.Errorf("%w: %d rule(s) failed", ErrViolations, len(rep.Failures()))
	}
	return nil
}

// readDocument reads path, or stdin for "-", and returns its plain text
func readDocument(path string, stdin io.Reader) (name, text string, err error) {
	var raw []byte
	if path == "-" {
		name = "stdin"
		raw, err = io.ReadAll(stdin)
	} else {
		name = filepath.Base(path)
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", "", fmt.Errorf("read document: %w", err)
	}
	return name, extract.PlainText(path, string(raw)), nil
}
