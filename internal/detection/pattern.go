package detection

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/textutil"
	"github.com/jonathan/persona-authenticity/internal/types"
)

// PatternDetector scores texts by the density of machine-signature phrases and constructions.
// It never fails, so it is the ensemble's mandatory member.
type PatternDetector struct {
	phrases       []textutil.Phrase // longest first
	constructions []*regexp.Regexp
	densityScale  float64
	minWords      int
}

// NewPatternDetector compiles the signature table.
func NewPatternDetector(cfg config.PatternConfig) (*PatternDetector, error) {
	d := &PatternDetector{
		phrases:      textutil.CompilePhrases(cfg.Phrases),
		densityScale: cfg.DensityScale,
		minWords:     cfg.MinWords,
	}
	sort.SliceStable(d.phrases, func(i, j int) bool {
		return len(d.phrases[i].Words) > len(d.phrases[j].Words)
	})
	for i, expr := range cfg.Constructions {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &config.Error{Field: fmt.Sprintf("detection.pattern.constructions[%d]", i), Message: "invalid expression", Cause: err}
		}
		d.constructions = append(d.constructions, re)
	}
	if d.densityScale <= 0 {
		return nil, config.Errorf("detection.pattern.density_scale", "must be positive")
	}
	return d, nil
}

// ID implements the ensemble member identity
func (d *PatternDetector) ID() string { return config.DetectorPattern }

// Detect returns a 0-100 score proportional to matches per hundred words, plus the
// distinct signatures found. Word positions consumed by a longer phrase are not reused
// by a shorter one, so "delve into" counts once, not also as "delve".
func (d *PatternDetector) Detect(text string) types.DetectorScore {
	text = textutil.Normalize(text)
	words := textutil.Words(text)

	consumed := make([]bool, len(words))
	seen := make(map[string]bool)
	var matches []string
	total := 0

	for _, p := range d.phrases {
		n := len(p.Words)
		for i := 0; i+n <= len(words); i++ {
			if !free(consumed, i, n) || !equalWords(words[i:i+n], p.Words) {
				continue
			}
			for j := i; j < i+n; j++ {
				consumed[j] = true
			}
			total++
			if !seen[p.Raw] {
				seen[p.Raw] = true
				matches = append(matches, p.Raw)
			}
			i += n - 1
		}
	}

	for _, re := range d.constructions {
		for _, m := range re.FindAllString(text, -1) {
			total++
			m = strings.ToLower(strings.TrimSpace(m))
			if !seen[m] {
				seen[m] = true
				matches = append(matches, m)
			}
		}
	}

	denom := math.Max(float64(len(words)), float64(d.minWords))
	if denom == 0 {
		denom = 1
	}
	density := float64(total) / denom * 100
	return types.DetectorScore{
		Detector: d.ID(),
		Score:    math.Round(math.Min(100, density*d.densityScale)*100) / 100,
		Matches:  matches,
	}
}

func free(consumed []bool, i, n int) bool {
	for j := i; j < i+n; j++ {
		if consumed[j] {
			return false
		}
	}
	return true
}

func equalWords(a, b []string) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
