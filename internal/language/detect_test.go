package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifier_DetectText(t *testing.T) {
	id := NewIdentifier(0)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "The coffee here is great and the staff are friendly, so we will be back.", "en"},
		{"indonesian", "Kopinya enak banget dan tempatnya nyaman, aku pasti balik lagi sama teman.", "id"},
		{"italian", "Il caffè è ottimo e il personale è molto gentile, ci torneremo anche domani.", "it"},
		{"german", "Der Kaffee ist sehr gut und die Leute sind auch nett, wir kommen wieder.", "de"},
		{"too short", "Ciao!", Undetermined},
		{"no function words", "Bakso, sate, rendang.", Undetermined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := id.DetectText(tt.text)
			assert.Equal(t, tt.want, got.Code)
			if got.Determined() {
				assert.Greater(t, got.Confidence, 0.0)
				assert.LessOrEqual(t, got.Confidence, 1.0)
			}
		})
	}
}

func TestIdentifier_Deterministic(t *testing.T) {
	id := NewIdentifier(2)
	text := "de la de la en el que"
	first := id.DetectText(text)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, id.DetectText(text))
	}
}

func TestBase(t *testing.T) {
	tests := []struct {
		tag     string
		want    string
		wantErr bool
	}{
		{"id-ID", "id", false},
		{"en", "en", false},
		{"pt-BR", "pt", false},
		{"not a tag!", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := Base(tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSameBase(t *testing.T) {
	assert.True(t, SameBase("id", "id-ID"))
	assert.False(t, SameBase("id", "en"))
	assert.False(t, SameBase("id", "###"))
}

func TestSupported(t *testing.T) {
	id := NewIdentifier(0)
	assert.True(t, id.Supported("id"))
	assert.False(t, id.Supported("ja"))
}
