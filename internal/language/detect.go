// Package language identifies the dominant language of a text from function-word frequencies.
package language

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"

	"github.com/jonathan/persona-authenticity/internal/textutil"
)

// DefaultMinHits is the minimum number of function-word hits before a language is reported.
const DefaultMinHits = 3

// Undetermined is the code reported when a text carries too little signal
const Undetermined = "und"

// Detection is the outcome of identifying a text's dominant language.
type Detection struct {
	Code       string  // base language code, or Undetermined
	Hits       int     // function-word hits for Code
	Confidence float64 // share of all function-word hits that belong to Code
}

// Determined reports whether a language was identified
func (d Detection) Determined() bool {
	return d.Code != Undetermined
}

// Identifier identifies languages. The zero value is not usable; use NewIdentifier.
type Identifier struct {
	minHits int
	sets    map[string]map[string]struct{}
	codes   []string
}

// NewIdentifier builds an identifier over the built-in language profiles.
// minHits <= 0 selects DefaultMinHits.
func NewIdentifier(minHits int) *Identifier {
	if minHits <= 0 {
		minHits = DefaultMinHits
	}
	id := &Identifier{minHits: minHits, sets: make(map[string]map[string]struct{}, len(stopwords))}
	for code, words := range stopwords {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[textutil.Fold(w)] = struct{}{}
		}
		id.sets[code] = set
		id.codes = append(id.codes, code)
	}
	sort.Strings(id.codes)
	return id
}

// Supported reports whether a base language code has a profile
func (id *Identifier) Supported(code string) bool {
	_, ok := id.sets[code]
	return ok
}

// Detect returns the dominant language of pre-tokenized, case-folded words.
// A language wins only with at least minHits hits and strictly more hits than any other.
func (id *Identifier) Detect(words []string) Detection {
	counts := make(map[string]int, len(id.codes))
	total := 0
	for _, w := range words {
		for _, code := range id.codes {
			if _, ok := id.sets[code][w]; ok {
				counts[code]++
				total++
			}
		}
	}

	best, second := "", 0
	for _, code := range id.codes {
		c := counts[code]
		switch {
		case best == "" || c > counts[best]:
			if best != "" {
				second = counts[best]
			}
			best = code
		case c > second:
			second = c
		}
	}

	if best == "" || counts[best] < id.minHits || counts[best] == second {
		return Detection{Code: Undetermined}
	}
	return Detection{
		Code:       best,
		Hits:       counts[best],
		Confidence: float64(counts[best]) / float64(total),
	}
}

// DetectText tokenizes text and detects its dominant language.
func (id *Identifier) DetectText(text string) Detection {
	return id.Detect(textutil.Words(text))
}

// Base returns the base language code of a BCP 47 tag such as "id-ID" or "pt_BR".
func Base(tag string) (string, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("invalid language tag %q: %w", tag, err)
	}
	base, _ := t.Base()
	return base.String(), nil
}

// SameBase reports whether two tags share a base language.
func SameBase(a, b string) bool {
	ba, err := Base(a)
	if err != nil {
		return false
	}
	bb, err := Base(b)
	if err != nil {
		return false
	}
	return ba == bb
}
