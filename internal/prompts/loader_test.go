package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(TemplatesFile, "review")
	require.NoError(t, err)
	assert.Contains(t, prompt, "customer review")
	assert.Contains(t, prompt, "{{.MinWords}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(DirectivesFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ShippedDirectives(t *testing.T) {
	ClearCache()

	keys := []string{
		"facts-header", "fact", "traits-subtle", "traits-moderate", "traits-strong", "trait",
		"signature", "forbidden", "corrections-header", "vary-structure", "vary-structure-unknown",
		"imperfection", "authenticity", "authenticity-language", "machine-likelihood",
		"machine-likelihood-generic", "readability-harder", "readability-easier",
		"readability-sentences", "output-format",
	}
	for _, key := range keys {
		assert.NotPanics(t, func() {
			assert.NotEmpty(t, MustGet(DirectivesFile, key))
		}, key)
	}
}

func TestFormat(t *testing.T) {
	template := "Draft {{.Attempt}} opened with {{.Opener}}"
	data := map[string]string{
		"Attempt": "2",
		"Opener":  "honestly",
	}

	assert.Equal(t, "Draft 2 opened with honestly", Format(template, data))
}

func TestFormat_LeavesUnknownPlaceholders(t *testing.T) {
	assert.Equal(t, "Hi {{.Name}}", Format("Hi {{.Name}}", map[string]string{"Other": "x"}))
}

func TestRender(t *testing.T) {
	out, err := Render("Hi {{.Name}}", map[string]string{"Name": "Sari"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Sari", out)

	_, err = Render("Hi {{.Name}} from {{.Locale}}", map[string]string{"Name": "Sari"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{.Locale}}")
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(TemplatesFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"long-form", "review", "short-caption", "social-post"}, keys)
}

func TestClearCache(t *testing.T) {
	_, err := Get(TemplatesFile, "review")
	require.NoError(t, err)

	cacheMu.RLock()
	assert.NotEmpty(t, cache)
	cacheMu.RUnlock()

	ClearCache()

	cacheMu.RLock()
	assert.Empty(t, cache)
	cacheMu.RUnlock()
}
