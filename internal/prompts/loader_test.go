package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("rewriting.json", "section-enhance")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.JobDescription}}")
	assert.Contains(t, prompt, "{{.Section}}")
	assert.Contains(t, prompt, "{{.Current}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("rewriting.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGet_RewritingPrompts(t *testing.T) {
	ClearCache()

	for _, key := range []string{"section-system", "section-enhance", "rules-summary", "rules-skills"} {
		t.Run(key, func(t *testing.T) {
			prompt, err := Get("rewriting.json", key)
			require.NoError(t, err)
			assert.NotEmpty(t, prompt)
		})
	}
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)
}

func TestFormat_ValuesAreNotExpanded(t *testing.T) {
	template := "JD: {{.JobDescription}} / Section: {{.Section}}"
	data := map[string]string{
		"JobDescription": "mentions {{.Section}} literally",
		"Section":        "Skills",
	}

	result := Format(template, data)
	assert.Equal(t, "JD: mentions {{.Section}} literally / Section: Skills", result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"

	result := Format(template, map[string]string{})
	assert.Equal(t, template, result) // Placeholder remains
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("rewriting.json", "section-enhance")
	require.NoError(t, err)

	prompt2, err := Get("rewriting.json", "section-enhance")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
