// Package llm provides the language-model clients used to rewrite resume sections.
// Providers sit behind the Client interface so the rewriter never sees an SDK type.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short, mechanical completions
	TierLite ModelTier = "lite"
	// TierStandard is for ordinary rewriting
	TierStandard ModelTier = "standard"
	// TierAdvanced is for section enhancement against a job description
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini uses github.com/google/generative-ai-go
	ProviderGemini Provider = "gemini"
	// ProviderGenAI uses the unified google.golang.org/genai SDK
	ProviderGenAI Provider = "genai"
)

// DefaultTemperature keeps completions close to the input text.
const DefaultTemperature float32 = 0.1

// DefaultVertexLocation is used when a Vertex project is set without a region
const DefaultVertexLocation = "us-central1"

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32

	// VertexProject routes the genai provider through Vertex AI with
	// application default credentials instead of an API key.
	VertexProject  string
	VertexLocation string
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:       c.Provider,
		Models:         make(map[ModelTier]string, len(c.Models)+1),
		Temperature:    c.Temperature,
		VertexProject:  c.VertexProject,
		VertexLocation: c.VertexLocation,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}

// WithProvider returns a copy of the Config using a different provider
func (c *Config) WithProvider(provider Provider) *Config {
	newConfig := c.WithModel(TierAdvanced, c.GetModel(TierAdvanced))
	newConfig.Provider = provider
	return newConfig
}

// WithVertex returns a copy of the Config that uses the genai provider on Vertex AI
func (c *Config) WithVertex(project, location string) *Config {
	newConfig := c.WithProvider(ProviderGenAI)
	newConfig.VertexProject = project
	newConfig.VertexLocation = location
	if newConfig.VertexLocation == "" {
		newConfig.VertexLocation = DefaultVertexLocation
	}
	return newConfig
}

// UsesVertex reports whether requests go to Vertex AI, where no API key is needed.
func (c *Config) UsesVertex() bool {
	return c.Provider == ProviderGenAI && c.VertexProject != ""
}
