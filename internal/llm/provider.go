package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrMissingAPIKey means the provider needs a credential that was not supplied
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrEmptyResponse means the provider answered without any content
	ErrEmptyResponse = errors.New("empty response from provider")
)

// Provider defines the interface for structured-extraction LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Extract asks the model to fill Schema from the prompt and returns the raw JSON reply
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the input for one structured extraction call
type ExtractRequest struct {
	// System is the instruction given to the model ahead of the prompt
	System string

	// Prompt carries the document to extract from
	Prompt string

	// Schema describes the JSON object the model must return
	Schema Schema

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse contains the model's reply
type ExtractResponse struct {
	// Content is the raw reply text, expected to be a JSON object
	Content string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic/Gemini
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "",
		Timeout:   30 * time.Second,
		MaxTokens: 512,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

// DefaultModel returns the model used for provider when none is configured.
// Ollama runs whatever is installed locally, so its default is only a hint
// for configuration; the provider itself still requires an explicit model.
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return "gpt-4o-mini"
	case "anthropic", "claude":
		return "claude-3-5-haiku-20241022"
	case "gemini", "google":
		return "gemini-2.5-flash"
	case "ollama":
		return "llama3.1"
	default:
		return ""
	}
}

func resolveModel(reqModel, configModel, fallback string) string {
	if reqModel != "" {
		return reqModel
	}
	if configModel != "" {
		return configModel
	}
	return fallback
}

func resolveMaxTokens(reqMax, configMax int) int {
	if reqMax > 0 {
		return reqMax
	}
	if configMax > 0 {
		return configMax
	}
	return 512
}
