package persona

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/types"
)

const validYAML = `
personas:
  - id: id-jakarta
    locale: id-ID
    language: id
    source_locale: en-US
    traits:
      - name: casual
        directive: Write like you are texting a close friend.
    signature_phrases: [sih, dong, banget]
    forbidden_phrases: [dengan hormat]
    calques: [membuat sebuah keputusan]
    substitutions:
      sangat: banget
    intensity:
      traits: 140
      markers: 60
      imperfection: -10
  - id: it-napoli
    locale: it-IT
    language: it
    signature_phrases: [jamme]
`

func TestParse_Valid(t *testing.T) {
	store, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"id-jakarta", "it-napoli"}, store.IDs())

	p, err := store.Get("id-jakarta")
	require.NoError(t, err)
	assert.Equal(t, "id", p.Language)
	assert.Equal(t, types.Intensity{Traits: 100, Markers: 60, Imperfection: 0}, p.Intensity)
	assert.Equal(t, "banget", p.Substitutions["sangat"])
	require.Len(t, p.Traits, 1)
	assert.Equal(t, "casual", p.Traits[0].Name)

	byLocale := store.ByLocale("it-IT")
	require.Len(t, byLocale, 1)
	assert.Equal(t, "it-napoli", byLocale[0].ID)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0644))

	store, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "personas_file", cfgErr.Field)
}

func TestGet_Unknown(t *testing.T) {
	store, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	_, err = store.Get("fr-paris")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "fr-paris", nf.ID)
}

func TestParse_MalformedFailsFast(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "personas: [unclosed"},
		{"schema: missing language", "personas:\n  - id: x\n    locale: en-US\n"},
		{"schema: unknown field", "personas:\n  - id: x\n    locale: en-US\n    language: en\n    mood: happy\n"},
		{"invalid language tag", "personas:\n  - id: x\n    locale: en-US\n    language: \"e n\"\n"},
		{"unsupported language", "personas:\n  - id: x\n    locale: ja-JP\n    language: ja\n"},
		{"duplicate id", "personas:\n  - {id: x, locale: en-US, language: en}\n  - {id: x, locale: en-GB, language: en}\n"},
		{"signature overlaps forbidden", "personas:\n  - id: x\n    locale: en-US\n    language: en\n    signature_phrases: [Mate]\n    forbidden_phrases: [mate]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Parse([]byte(tt.yaml))
			assert.Nil(t, store)
			require.Error(t, err)
			var cfgErr *config.Error
			assert.True(t, errors.As(err, &cfgErr), "expected *config.Error, got %T", err)
		})
	}
}

func TestNewStore_UnsupportedLanguage(t *testing.T) {
	store, err := NewStore([]types.PersonaProfile{
		{ID: "en-au-sydney", Locale: "en-AU", Language: "en"},
		{ID: "tokyo", Locale: "ja-JP", Language: "ja"},
	})
	assert.Nil(t, store)

	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "personas[1].language", cfgErr.Field)
	assert.Contains(t, cfgErr.Error(), `"ja"`)
}

func TestStore_ConcurrentReaders(t *testing.T) {
	store, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p, err := store.Get("it-napoli")
				if err != nil || p.ID != "it-napoli" {
					t.Errorf("unexpected read: %v %v", p, err)
					return
				}
				_ = store.IDs()
			}
		}()
	}
	wg.Wait()
}
