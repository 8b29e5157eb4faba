package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, DefaultTemperature, config.Temperature)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{},
	}

	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))

	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
	assert.Equal(t, config.Temperature, newConfig.Temperature)
}

func TestWithProvider(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithProvider(ProviderGenAI)

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, ProviderGenAI, newConfig.Provider)
	assert.Equal(t, config.GetModel(TierAdvanced), newConfig.GetModel(TierAdvanced))
}

func TestWithVertex(t *testing.T) {
	config := DefaultConfig().WithModel(TierAdvanced, "custom-model")

	vertex := config.WithVertex("my-project", "")
	assert.False(t, config.UsesVertex())
	assert.True(t, vertex.UsesVertex())
	assert.Equal(t, ProviderGenAI, vertex.Provider)
	assert.Equal(t, DefaultVertexLocation, vertex.VertexLocation)
	assert.Equal(t, "custom-model", vertex.GetModel(TierAdvanced))

	// copies keep the Vertex settings
	assert.True(t, vertex.WithModel(TierLite, "lite").UsesVertex())

	// the Gemini SDK provider ignores a Vertex project
	gemini := &Config{Provider: ProviderGemini, VertexProject: "my-project"}
	assert.False(t, gemini.UsesVertex())
}
