package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple", "Hello World", []string{"hello", "world"}},
		{"punctuation", "Well, it's fine!", []string{"well", "it's", "fine"}},
		{"hyphen splits", "anak-anak main", []string{"anak", "anak", "main"}},
		{"leading apostrophe dropped", "'quoted' word", []string{"quoted", "word"}},
		{"accents", "Così è la vita", []string{"così", "è", "la", "vita"}},
		{"empty", "  ...  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Words(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_Offsets(t *testing.T) {
	text := "very  very-good"
	tokens := Tokenize(text)
	require.Len(t, tokens, 3)
	assert.Equal(t, "very", tokens[0].Raw)
	assert.True(t, IsWhitespaceOnly(Between(text, tokens[0], tokens[1])))
	assert.Equal(t, "-", Between(text, tokens[1], tokens[2]))
}

func TestPhrase_Count(t *testing.T) {
	tests := []struct {
		name   string
		phrase string
		text   string
		want   int
	}{
		{"single word", "note", "Note this, note that.", 2},
		{"no substring match", "note", "My notebook is denoted.", 0},
		{"multi word", "it is important to note", "It is important to note the cost. It is IMPORTANT to NOTE again.", 2},
		{"punctuation inside text is ignored", "in conclusion", "In conclusion, yes.", 1},
		{"non overlapping", "ha ha", "ha ha ha ha", 2},
		{"empty phrase", "...", "anything", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CompilePhrase(tt.phrase)
			assert.Equal(t, tt.want, p.Count(Words(tt.text)))
		})
	}
}

func TestMatchAll(t *testing.T) {
	phrases := CompilePhrases([]string{"dong", "sih", "", "kok"})
	require.Len(t, phrases, 3)

	res := MatchAll(phrases, Words("Enak dong! Ini enak sih, dong."))
	assert.Equal(t, []string{"dong", "sih"}, res.Matched)
	assert.Equal(t, 3, res.Total)
}

func TestSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"basic", "One. Two! Three?", []string{"One.", "Two!", "Three?"}},
		{"no terminal", "just a phrase", []string{"just a phrase"}},
		{"decimal stays", "It costs 3.50 today. Nice.", []string{"It costs 3.50 today.", "Nice."}},
		{"ellipsis and quotes", `He said "wait..." Then left.`, []string{`He said "wait..."`, "Then left."}},
		{"paragraph break", "First line\n\nSecond line", []string{"First line", "Second line"}},
		{"drops wordless fragments", "Hi. !!! Bye.", []string{"Hi.", "Bye."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentences(tt.text))
		})
	}
}

func TestSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"the", 1},
		{"make", 1},
		{"table", 2},
		{"reading", 2},
		{"beautiful", 3},
		{"rhythm", 1},
		{"42", 1},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, Syllables(tt.word))
		})
	}
}

func TestStructure(t *testing.T) {
	sig := Structure("Honestly, this place rocks. Go there!\n\nWho's coming?")
	assert.Equal(t, "honestly", sig.Opener)
	assert.Equal(t, 3, sig.Sentences)
	assert.Equal(t, 2, sig.Paragraphs)
	assert.InDelta(t, 8.0/3.0, sig.MeanSentenceWords, 1e-9)
	assert.True(t, sig.EndsWithQuestion)
	assert.False(t, sig.EndsWithExclaim)
}

func TestNormalizeCandidate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "  Just text.  ", "Just text."},
		{"fenced", "```text\nFenced answer.\n```", "Fenced answer."},
		{"json wrapper", `{"text": "Wrapped answer."}`, "Wrapped answer."},
		{"fenced json", "```json\n{\"text\": \"Both.\"}\n```", "Both."},
		{"json without text keeps raw", `{"other": 1}`, `{"other": 1}`},
		{"html", "<p>First   para.</p><p>Second<br>line.</p>", "First para.\n\nSecond\nline."},
		{"collapses spaces", "a  \t b", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCandidate(tt.raw))
		})
	}
}
