package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/covercheck/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage covercheck configuration",
	Long: `Manage covercheck configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (COVERCHECK_*, e.g. COVERCHECK_EXTRACTION_PROVIDER)
3. Config file (~/.covercheck/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Display the configuration after merging defaults, config file, env vars and flags. Credentials are never printed.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.covercheck/config.yaml (or the --config path) with every option set to its default.`,
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing config file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", configFile)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, string(yamlData))
	fmt.Fprintf(cmd.ErrOrStderr(), "\nRules: %s\n", ruleSummary(cfg))
	if cfg.Extraction.APIKey != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "API key: set (hidden)\n")
	}
	return nil
}

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error finding home directory: %w", err)
	}
	return filepath.Join(home, ".covercheck", "config.yaml"), nil
}

func runConfigInit(cmd *cobra.Command, args []string) (err error) {
	path, err := configPath()
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(path); statErr == nil && !forceInit {
		return fmt.Errorf("config file already exists: %s\nUse 'covercheck config show' to view it, or pass --force to recreate", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	// Helper for writing with error checking
	printf := func(format string, a ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(f, format, a...)
	}

	printf("# covercheck configuration\n")
	printf("#\n")
	printf("# Configuration hierarchy (highest to lowest priority):\n")
	printf("#   1. CLI flags\n")
	printf("#   2. Environment variables (COVERCHECK_*)\n")
	printf("#   3. This config file\n")
	printf("#   4. Built-in defaults\n\n")
	printf("%s", yamlData)
	printf("\n# Keep API keys in the environment rather than in this file:\n")
	printf("#   export OPENAI_API_KEY=sk-...\n")
	printf("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
	printf("#   export GEMINI_API_KEY=...\n")
	printf("#   export OLLAMA_BASE_URL=http://localhost:11434\n")
	if err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", path)
	fmt.Fprintf(out, "\nTo view the configuration:\n")
	fmt.Fprintf(out, "  covercheck config show\n")
	fmt.Fprintf(out, "\n")
	return nil
}
