package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/covercheck/internal/llm"
	"github.com/ppiankov/covercheck/internal/model"
)

const policyText = `Marine Insurance Certificate MIC-2025-STAR-789
Vessel: Starlight Carrier
Period: 2025-01-15 to 2026-01-14
Insured value: USD 10,000,000
`

// run executes the root command with args and isolated config state
func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)
	viper.Reset()
	t.Cleanup(func() {
		resetFlags(rootCmd)
		viper.Reset()
	})

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func vesselFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "valid_vessels.json")
	err := os.WriteFile(path, []byte(`["MV Neptune", "Ocean Voyager", "Sea Serpent", "Starlight Carrier", "Pacific Explorer"]`), 0o644)
	require.NoError(t, err)
	return path
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "covercheck "+Version+"\n", stdout)
}

func TestVesselsCheck(t *testing.T) {
	list := vesselFile(t)

	stdout, _, err := run(t, "", "vessels", "check", "--vessels", list, "  mv   NEPTUNE ")
	require.NoError(t, err)
	assert.Contains(t, stdout, `matches approved vessel "MV Neptune"`)
	assert.Contains(t, stdout, "case-insensitive")

	stdout, _, err = run(t, "", "vessels", "check", "--vessels", list, "The", "Wanderer")
	assert.True(t, errors.Is(err, ErrNoMatch), "got %v", err)
	assert.Contains(t, stdout, `"The Wanderer" is not on the approved list`)
}

func TestVesselsList(t *testing.T) {
	stdout, _, err := run(t, "", "vessels", "list", "--vessels", vesselFile(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "MV Neptune", lines[0])
}

func TestVesselsCheck_MissingList(t *testing.T) {
	_, _, err := run(t, "", "vessels", "check", "--vessels", filepath.Join(t.TempDir(), "none.json"), "MV Neptune")
	assert.Error(t, err)
}

func TestValidate_StaticProvider(t *testing.T) {
	list := vesselFile(t)
	doc := writeDoc(t, t.TempDir(), "policy.txt", policyText)

	stdout, stderr, err := run(t, "", "validate", "--provider", "static", "--vessels", list, doc)
	require.NoError(t, err)

	var rep struct {
		ExtractedData     map[string]any     `json:"extracted_data"`
		ValidationResults []model.RuleResult `json:"validation_results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	require.Len(t, rep.ValidationResults, 4)
	assert.Equal(t, "Date Consistency", rep.ValidationResults[0].Rule)
	assert.Equal(t, "Completeness Check", rep.ValidationResults[3].Rule)
	assert.Contains(t, stderr, "✗ policy.txt: FAIL (4 of 4 rules)")
}

func TestValidate_FailOnViolation(t *testing.T) {
	list := vesselFile(t)
	doc := writeDoc(t, t.TempDir(), "policy.txt", policyText)

	_, _, err := run(t, "", "validate", "--provider", "static", "--vessels", list, "--fail-on-violation", doc)
	assert.True(t, errors.Is(err, ErrViolations), "got %v", err)
}

func TestValidate_Stdin(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")

	stdout, _, err := run(t, policyText, "validate", "--provider", "static", "--vessels", vesselFile(t),
		"--json", jsonPath, "--md", mdPath, "-")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.FileExists(t, jsonPath)
	assert.FileExists(t, mdPath)
}

func TestValidate_EmptyDocument(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "blank.txt", "  \n\t ")

	_, _, err := run(t, "", "validate", "--provider", "static", "--vessels", vesselFile(t), doc)
	assert.ErrorContains(t, err, "document_text must be a non-empty string")
}

func TestValidate_MissingCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	doc := writeDoc(t, t.TempDir(), "policy.txt", policyText)

	_, _, err := run(t, "", "validate", "--provider", "openai", "--vessels", vesselFile(t), doc)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestBatch_WritesReports(t *testing.T) {
	in := t.TempDir()
	writeDoc(t, in, "a.txt", policyText)
	writeDoc(t, in, "b.html", "<html><body><p>"+policyText+"</p></body></html>")
	writeDoc(t, in, "ignored.pdf", "binary")
	out := filepath.Join(t.TempDir(), "reports")

	_, stderr, err := run(t, "", "batch", "--provider", "static", "--vessels", vesselFile(t),
		"--dir", in, "--output-dir", out, "--concurrency", "2")
	require.NoError(t, err)

	for _, name := range []string{"a.json", "a.md", "b.json", "b.md"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.NoFileExists(t, filepath.Join(out, "ignored.json"))
	assert.Contains(t, stderr, "Total:     2 documents")
	assert.Contains(t, stderr, "Failed:    2")
}

func TestBatch_NoDocuments(t *testing.T) {
	_, _, err := run(t, "", "batch", "--provider", "static", "--vessels", vesselFile(t))
	assert.ErrorContains(t, err, "no documents given")
}

func TestCollectPaths(t *testing.T) {
	dir := t.TempDir()
	a := writeDoc(t, dir, "a.txt", "x")
	b := writeDoc(t, dir, "b.md", "x")
	writeDoc(t, dir, "notes.csv", "x")
	list := writeDoc(t, t.TempDir(), "list.txt", "# docs\n"+a+"\n\n/tmp/other.txt\n")

	paths, err := collectPaths([]string{b}, dir, list)
	require.NoError(t, err)
	assert.Equal(t, []string{b, a, "/tmp/other.txt"}, paths)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"policy", "policy"},
		{"hull policy", "hull-policy"},
		{"a:b*c?", "a_b_c_"},
		{"..", "document"},
		{"", "document"},
		{strings.Repeat("x", 150), strings.Repeat("x", 100)},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugger_Deduplicates(t *testing.T) {
	s := newSlugger()
	assert.Equal(t, "policy", s.next("in/policy.txt"))
	assert.Equal(t, "policy-2", s.next("other/policy.html"))
	assert.Equal(t, "claim", s.next("claim.txt"))
}

func TestConfig_EnvOverride(t *testing.T) {
	t.Setenv("COVERCHECK_EXTRACTION_PROVIDER", "static")
	t.Setenv("COVERCHECK_CONCURRENCY_WORKERS", "9")

	stdout, _, err := run(t, "", "config", "show")
	require.NoError(t, err)

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, "static", cfg.Extraction.Provider)
	assert.Equal(t, 9, cfg.Concurrency.Workers)
}

func TestConfig_FileAndFlagPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extraction:\n  provider: ollama\n  model: llama3\n"), 0o644))

	stdout, _, err := run(t, "", "config", "show", "--config", path, "--model", "mistral")
	require.NoError(t, err)

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, "ollama", cfg.Extraction.Provider)
	assert.Equal(t, "mistral", cfg.Extraction.Model)
}

func TestConfig_ShowHidesAPIKey(t *testing.T) {
	t.Setenv("COVERCHECK_EXTRACTION_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-secret-value")

	stdout, stderr, err := run(t, "", "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "sk-secret-value")
	assert.Contains(t, stderr, "API key: set (hidden)")
}

func TestConfig_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	_, _, err := run(t, "", "config", "init", "--config", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().Server.Addr, cfg.Server.Addr)

	_, _, err = run(t, "", "config", "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	_, _, err = run(t, "", "config", "init", "--config", path, "--force")
	assert.NoError(t, err)
}

func TestConfig_DefaultModelPerProvider(t *testing.T) {
	tests := []struct {
		provider string
		prefix   string
	}{
		{"openai", "gpt-"},
		{"anthropic", "claude-"},
		{"gemini", "gemini-"},
		{"ollama", "llama"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			stdout, _, err := run(t, "", "config", "show", "--provider", tt.provider)
			require.NoError(t, err)

			var cfg model.Config
			require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
			assert.Equal(t, llm.DefaultModel(tt.provider), cfg.Extraction.Model)
			assert.True(t, strings.HasPrefix(cfg.Extraction.Model, tt.prefix), "got %q", cfg.Extraction.Model)
		})
	}
}

func TestConfig_ModelFlagBeatsProviderDefault(t *testing.T) {
	stdout, _, err := run(t, "", "config", "show", "--provider", "gemini", "--model", "gemini-2.5-pro")
	require.NoError(t, err)

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, "gemini-2.5-pro", cfg.Extraction.Model)
}

func TestConfig_ParallelRules(t *testing.T) {
	t.Setenv("COVERCHECK_RULES_PARALLEL", "true")

	stdout, stderr, err := run(t, "", "config", "show", "--provider", "static")
	require.NoError(t, err)

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	assert.True(t, cfg.Rules.Parallel)
	assert.Contains(t, stderr, "Rules: Date Consistency, Value Check, Vessel Name Match, Completeness Check (parallel)")
}

func TestValidate_ParallelRulesKeepOrder(t *testing.T) {
	t.Setenv("COVERCHECK_RULES_PARALLEL", "true")
	doc := writeDoc(t, t.TempDir(), "policy.txt", policyText)

	stdout, _, err := run(t, "", "validate", "--provider", "static", "--vessels", vesselFile(t), doc)
	require.NoError(t, err)

	var rep struct {
		ValidationResults []model.RuleResult `json:"validation_results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	var names []string
	for _, r := range rep.ValidationResults {
		names = append(names, r.Rule)
	}
	assert.Equal(t, []string{"Date Consistency", "Value Check", "Vessel Name Match", "Completeness Check"}, names)
}

func TestConfig_InvalidProvider(t *testing.T) {
	_, _, err := run(t, "", "config", "show", "--provider", "carrier-pigeon")
	assert.ErrorContains(t, err, "unknown extraction provider")
}
