// Package textutil provides the text primitives shared by the scorers: tokenization,
// sentence splitting, syllable counting, whole-word phrase matching and candidate cleanup.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Token is one word of a text. Start and End are byte offsets into the NFC-normalized text.
type Token struct {
	Text  string // case-folded form used for matching
	Raw   string
	Start int
	End   int
}

// Normalize returns text in Unicode NFC form so offsets and comparisons are stable.
func Normalize(text string) string {
	return norm.NFC.String(text)
}

// Fold case-folds s for case-insensitive comparison.
// A Caser keeps internal state, so a fresh one is used per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Tokenize splits text into word tokens. A word is a run of letters, digits and combining
// marks; an apostrophe is kept only when it sits between two letters ("don't", "l'acqua").
// Everything else, hyphens included, separates words.
func Tokenize(text string) []Token {
	text = Normalize(text)
	runes := []rune(text)

	var tokens []Token
	start := -1
	byteOff := 0
	startByte := 0

	flush := func(endByte int) {
		if start < 0 {
			return
		}
		raw := text[startByte:endByte]
		tokens = append(tokens, Token{Text: Fold(raw), Raw: raw, Start: startByte, End: endByte})
		start = -1
	}

	for i, r := range runes {
		size := len(string(r))
		if isWordRune(r) || (isApostrophe(r) && start >= 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1])) {
			if start < 0 {
				start = i
				startByte = byteOff
			}
		} else {
			flush(byteOff)
		}
		byteOff += size
	}
	flush(byteOff)

	return tokens
}

// Words returns the case-folded words of text in order.
func Words(text string) []string {
	tokens := Tokenize(text)
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Text
	}
	return words
}

// WordCount returns the number of words in text
func WordCount(text string) int {
	return len(Tokenize(text))
}

// Between returns the normalized text separating two adjacent tokens.
func Between(text string, a, b Token) string {
	text = Normalize(text)
	if a.End > b.Start || b.Start > len(text) {
		return ""
	}
	return text[a.End:b.Start]
}

// IsWhitespaceOnly reports whether s is non-empty and consists only of spaces
func IsWhitespaceOnly(s string) bool {
	return s != "" && strings.TrimSpace(s) == ""
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}
