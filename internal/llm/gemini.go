package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/covercheck/internal/util"
	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	client *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: util.NewHTTPClient(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks the configured model can be resolved
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	model := resolveModel("", p.config.Model, DefaultModel("gemini"))
	if _, err := p.client.Models.Get(ctx, model, nil); err != nil {
		slog.Default().Warn("Gemini API check failed", "error", err)
		return false
	}
	return true
}

// Extract fills the schema using Gemini JSON mode with a response schema
func (p *GeminiProvider) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	model := resolveModel(req.Model, p.config.Model, DefaultModel("gemini"))

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   GeminiSchema(req.Schema),
		Temperature:      genai.Ptr[float32](0),
		MaxOutputTokens:  int32(resolveMaxTokens(req.MaxTokens, p.config.MaxTokens)),
	}
	if req.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctxWithTimeout, model, genai.Text(req.Prompt), genConfig)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	content := strings.TrimSpace(resp.Text())
	if content == "" {
		return nil, fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &ExtractResponse{
		Content:    content,
		Model:      model,
		TokensUsed: tokens,
	}, nil
}

// GeminiSchema converts a Schema to the Gemini response schema form
func GeminiSchema(s Schema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(s.Fields))
	order := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		prop := &genai.Schema{
			Description: f.Description,
			Nullable:    genai.Ptr(true),
		}
		switch f.Type {
		case TypeInteger:
			prop.Type = genai.TypeInteger
		default:
			prop.Type = genai.TypeString
		}
		props[f.Name] = prop
		order = append(order, f.Name)
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Description:      s.Description,
		Properties:       props,
		PropertyOrdering: order,
	}
}
