package textutil

// Phrase is a phrase compiled to its case-folded word sequence.
type Phrase struct {
	Raw   string
	Words []string
}

// CompilePhrase tokenizes a phrase for whole-word matching. Phrases with no words compile
// to an empty sequence and never match.
func CompilePhrase(raw string) Phrase {
	return Phrase{Raw: raw, Words: Words(raw)}
}

// CompilePhrases compiles every phrase in order, dropping phrases without words.
func CompilePhrases(raw []string) []Phrase {
	out := make([]Phrase, 0, len(raw))
	for _, r := range raw {
		p := CompilePhrase(r)
		if len(p.Words) == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Count returns the number of non-overlapping occurrences of the phrase in words.
// Matching is on whole words, so "note" never matches inside "notebook".
func (p Phrase) Count(words []string) int {
	n := len(p.Words)
	if n == 0 || n > len(words) {
		return 0
	}
	count := 0
	for i := 0; i+n <= len(words); {
		if equalAt(words, i, p.Words) {
			count++
			i += n
			continue
		}
		i++
	}
	return count
}

// Index returns the word index of the first occurrence of the phrase, or -1.
func (p Phrase) Index(words []string) int {
	n := len(p.Words)
	if n == 0 {
		return -1
	}
	for i := 0; i+n <= len(words); i++ {
		if equalAt(words, i, p.Words) {
			return i
		}
	}
	return -1
}

// MatchResult is the outcome of matching a phrase list against a text
type MatchResult struct {
	Matched []string // raw phrases found at least once, in list order
	Total   int      // total occurrences across all phrases
}

// MatchAll counts every phrase against words.
func MatchAll(phrases []Phrase, words []string) MatchResult {
	var res MatchResult
	for _, p := range phrases {
		c := p.Count(words)
		if c == 0 {
			continue
		}
		res.Matched = append(res.Matched, p.Raw)
		res.Total += c
	}
	return res
}

func equalAt(words []string, i int, seq []string) bool {
	for j, w := range seq {
		if words[i+j] != w {
			return false
		}
	}
	return true
}
