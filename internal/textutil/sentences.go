package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Paragraphs splits text on blank lines, dropping empty paragraphs.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(Normalize(text), -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Sentences splits text into sentences. A sentence ends at a run of terminal punctuation
// followed by whitespace or end of text, or at a paragraph break. Fragments with no words
// (stray emoji, bullets) are dropped.
func Sentences(text string) []string {
	var out []string
	for _, para := range Paragraphs(text) {
		out = append(out, splitParagraph(para)...)
	}
	return out
}

// SentenceCount returns the number of sentences in text
func SentenceCount(text string) int {
	return len(Sentences(text))
}

func splitParagraph(para string) []string {
	runes := []rune(para)
	var out []string
	begin := 0

	emit := func(end int) {
		s := strings.TrimSpace(string(runes[begin:end]))
		if s != "" && WordCount(s) > 0 {
			out = append(out, s)
		}
		begin = end
	}

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminal(runes[j]) || isCloser(runes[j])) {
			j++
		}
		if j == len(runes) || unicode.IsSpace(runes[j]) {
			emit(j)
		}
		i = j - 1
	}
	if begin < len(runes) {
		emit(len(runes))
	}
	return out
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}
