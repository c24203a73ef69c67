package textutil

import (
	"strings"

	"github.com/jonathan/persona-authenticity/internal/types"
)

// Structure computes the surface structure signature of text.
func Structure(text string) types.StructureSignature {
	sentences := Sentences(text)
	sig := types.StructureSignature{
		Sentences:  len(sentences),
		Paragraphs: len(Paragraphs(text)),
	}

	if len(sentences) > 0 {
		if words := Words(sentences[0]); len(words) > 0 {
			sig.Opener = words[0]
		}
		total := 0
		for _, s := range sentences {
			total += WordCount(s)
		}
		sig.MeanSentenceWords = float64(total) / float64(len(sentences))
	}

	trimmed := strings.TrimRight(strings.TrimSpace(text), "\"'”’)")
	sig.EndsWithQuestion = strings.HasSuffix(trimmed, "?")
	sig.EndsWithExclaim = strings.HasSuffix(trimmed, "!")

	return sig
}
