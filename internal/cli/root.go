package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/covercheck/internal/llm"
	"github.com/ppiankov/covercheck/internal/logging"
	"github.com/ppiankov/covercheck/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	noCache   bool
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "covercheck",
	Short: "covercheck - Insurance document validation",
	Long: `covercheck reads marine insurance documents, extracts the policy
fields with an LLM and checks them against a fixed set of rules:

  Date Consistency    the policy expires after it starts
  Value Check         the insured value is a positive amount
  Vessel Name Match   the vessel is on the approved list
  Completeness Check  the document carries a policy number

Run it as an HTTP service (serve), on single files (validate), on many
files at once (batch) or as an MCP tool (mcp).`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "covercheck %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.covercheck/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "log format (text, json)")
	flags.String("provider", "", "extraction provider (openai, anthropic, ollama, gemini, static)")
	flags.String("model", "", "extraction model name")
	flags.String("vessels", "", "path to the approved vessel list (JSON or YAML)")
	flags.BoolVar(&noCache, "no-cache", false, "disable the extraction cache")

	rootCmd.AddCommand(versionCmd)
}

// bindFlags maps flags onto their config keys
func bindFlags() {
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("extraction.provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("extraction.model", flags.Lookup("model"))
	_ = viper.BindPFlag("vessels.path", flags.Lookup("vessels"))
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("vessels.watch", serveCmd.Flags().Lookup("watch"))
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
		} else {
			viper.AddConfigPath(filepath.Join(home, ".covercheck"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// COVERCHECK_EXTRACTION_PROVIDER overrides extraction.provider
	viper.SetEnvPrefix("COVERCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(model.DefaultConfig())
	bindFlags()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env overrides reach Unmarshal
func setDefaults(cfg *model.Config) {
	viper.SetDefault("server.addr", cfg.Server.Addr)
	viper.SetDefault("server.read_header_timeout", cfg.Server.ReadHeaderTimeout)
	viper.SetDefault("server.max_body_bytes", cfg.Server.MaxBodyBytes)

	viper.SetDefault("extraction.provider", cfg.Extraction.Provider)
	viper.SetDefault("extraction.model", cfg.Extraction.Model)
	viper.SetDefault("extraction.api_key", "")
	viper.SetDefault("extraction.base_url", cfg.Extraction.BaseURL)
	viper.SetDefault("extraction.timeout", cfg.Extraction.Timeout)
	viper.SetDefault("extraction.max_tokens", cfg.Extraction.MaxTokens)
	viper.SetDefault("extraction.http_proxy", cfg.Extraction.HTTPProxy)
	viper.SetDefault("extraction.https_proxy", cfg.Extraction.HTTPSProxy)
	viper.SetDefault("extraction.no_proxy", cfg.Extraction.NoProxy)

	viper.SetDefault("vessels.path", cfg.Vessels.Path)
	viper.SetDefault("vessels.watch", cfg.Vessels.Watch)

	viper.SetDefault("rules.parallel", cfg.Rules.Parallel)

	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_dir", cfg.Cache.DiskDir)
	viper.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	viper.SetDefault("rate_limit.requests_per_second", cfg.RateLimit.RequestsPerSecond)
	viper.SetDefault("rate_limit.burst", cfg.RateLimit.Burst)

	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.format", cfg.Log.Format)
}

// loadConfig merges defaults, config file, env and flags into a validated Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if noCache {
		cfg.Cache.Enabled = false
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	// Vendor credentials are read from their conventional variables
	if cfg.Extraction.APIKey == "" {
		if env := llm.APIKeyEnv(cfg.Extraction.Provider); env != "" {
			cfg.Extraction.APIKey = os.Getenv(env)
		}
	}
	if cfg.Extraction.Model == "" {
		cfg.Extraction.Model = llm.DefaultModel(cfg.Extraction.Provider)
	}
	if strings.EqualFold(cfg.Extraction.Provider, "ollama") && cfg.Extraction.BaseURL == "" {
		cfg.Extraction.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := viper.GetString("log.level")
	if logLevel != "" {
		level = logLevel
	}
	format := viper.GetString("log.format")
	if logFormat != "" {
		format = logFormat
	}

	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	logging.Init(lvl, format, cmd.ErrOrStderr())
	return nil
}

func banner(cmd *cobra.Command, title string) {
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "  %s\n", title)
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "\n")
}
