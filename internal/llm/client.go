package llm

import (
	"context"
	"fmt"
)

// Request is a single completion call: a system instruction that fixes the
// output discipline and a user prompt carrying the task.
type Request struct {
	System string
	Prompt string
	Tier   ModelTier
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent returns the completion text for a request
	GenerateContent(ctx context.Context, req Request) (string, error)
	// GetModel returns the provider model name for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration.
// The API key is required unless the genai provider runs on Vertex AI; it is
// never read from the environment here.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" && !config.UsesVertex() {
		return nil, fmt.Errorf("API key is required")
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderGenAI:
		return NewGenAIClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}
