package model

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete covercheck configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Extraction  ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	Vessels     VesselsConfig     `yaml:"vessels" mapstructure:"vessels"`
	Rules       RulesConfig       `yaml:"rules" mapstructure:"rules"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr              string        `yaml:"addr" mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" mapstructure:"read_header_timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// ExtractionConfig selects and configures the LLM extraction provider
type ExtractionConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, gemini, static
	Model      string        `yaml:"model" mapstructure:"model"`
	APIKey     string        `yaml:"-" mapstructure:"api_key"` // Never written to config files
	BaseURL    string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens  int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// VesselsConfig locates the approved vessel list
type VesselsConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	Watch bool   `yaml:"watch" mapstructure:"watch"` // Reload the list when the file changes
}

// RulesConfig controls rule evaluation
type RulesConfig struct {
	Parallel bool `yaml:"parallel" mapstructure:"parallel"` // Evaluate rules concurrently; output is identical
}

// CacheConfig controls extraction result caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig throttles outbound extraction calls
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables limiting
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			MaxBodyBytes:      1 << 20,
		},
		Extraction: ExtractionConfig{
			Provider:  "openai",
			Model:     "", // Filled per provider at load time
			Timeout:   30 * time.Second,
			MaxTokens: 512,
		},
		Vessels: VesselsConfig{
			Path: "valid_vessels.json",
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 1 * time.Hour,
			DiskDir:   "",
			DiskTTL:   24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

var supportedProviders = []string{"openai", "anthropic", "ollama", "gemini", "static"}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	provider := strings.ToLower(c.Extraction.Provider)
	known := false
	for _, p := range supportedProviders {
		if p == provider {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown extraction provider %q (supported: %s)", c.Extraction.Provider, strings.Join(supportedProviders, ", "))
	}
	if c.Extraction.Timeout < 0 {
		return fmt.Errorf("extraction.timeout must not be negative")
	}
	if strings.TrimSpace(c.Vessels.Path) == "" {
		return fmt.Errorf("vessels.path is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rate_limit.requests_per_second must not be negative")
	}
	if c.Concurrency.Workers < 0 {
		return fmt.Errorf("concurrency.workers must not be negative")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
