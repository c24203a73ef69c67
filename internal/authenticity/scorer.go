// Package authenticity scores how well a text matches a persona's expected linguistic signature.
package authenticity

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/language"
	"github.com/jonathan/persona-authenticity/internal/textutil"
	"github.com/jonathan/persona-authenticity/internal/types"
)

// Scorer computes AuthenticityReports. It holds no per-call state; the only shared
// structure is a cache of compiled per-persona phrase tables, which is safe for concurrent use.
type Scorer struct {
	cfg     config.ScoringConfig
	ident   *language.Identifier
	tables  *lru.Cache[*types.PersonaProfile, *phraseTable]
	allowed map[string]bool
}

// phraseTable is a persona compiled for matching
type phraseTable struct {
	expected  string
	signature []textutil.Phrase
	forbidden []textutil.Phrase
	calques   []textutil.Phrase
}

// NewScorer creates a scorer from the scoring configuration.
func NewScorer(cfg config.ScoringConfig) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cache, err := lru.New[*types.PersonaProfile, *phraseTable](cfg.PersonaCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create persona table cache: %w", err)
	}
	allowed := make(map[string]bool, len(cfg.ReduplicationAllowedTokens))
	for _, w := range cfg.ReduplicationAllowedTokens {
		allowed[textutil.Fold(w)] = true
	}
	return &Scorer{
		cfg:     cfg,
		ident:   language.NewIdentifier(cfg.LanguageMinHits),
		tables:  cache,
		allowed: allowed,
	}, nil
}

// Score scores text against a persona. The result depends only on text, persona and the
// scorer configuration: repeated calls return identical reports.
func (s *Scorer) Score(text string, p *types.PersonaProfile) types.AuthenticityReport {
	table := s.table(p)
	tokens := textutil.Tokenize(text)
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Text
	}

	report := types.AuthenticityReport{ExpectedLanguage: table.expected}

	// (a) language identification
	det := s.ident.Detect(words)
	report.DetectedLanguage = det.Code
	switch {
	case !det.Determined():
		report.LanguageMatch = s.cfg.UndeterminedLanguageScore
	case det.Code == table.expected:
		report.LanguageMatch = 100
	default:
		report.LanguageMatch = clamp(100 - s.cfg.LanguageMismatchPenalty)
		report.HardFailure = true
		report.Score = round(math.Min(s.cfg.HardFailureCeiling, report.LanguageMatch))
		return report
	}

	// (b) translation artifacts
	report.Artifacts = s.artifacts(text, tokens, words, table)
	report.ArtifactPenalty = math.Min(s.cfg.ArtifactPenaltyCap, float64(len(report.Artifacts))*s.cfg.ArtifactPenalty)

	// (c) regional patterns
	sig := textutil.MatchAll(table.signature, words)
	forb := textutil.MatchAll(table.forbidden, words)
	report.SignatureHits = sig.Matched
	report.ForbiddenHits = forb.Matched
	reward := math.Min(s.cfg.SignatureRewardCap, float64(len(sig.Matched))*s.cfg.SignatureReward)
	penalty := math.Min(s.cfg.ForbiddenPenaltyCap, float64(forb.Total)*s.cfg.ForbiddenPenalty)
	report.PatternMatch = clamp(s.cfg.PatternBaseline + reward - penalty)

	// (d) weighted combination
	w := s.cfg.Weights
	sum := w.Language*report.LanguageMatch + w.Artifact*(100-report.ArtifactPenalty) + w.Pattern*report.PatternMatch
	report.Score = round(clamp(sum / (w.Language + w.Artifact + w.Pattern)))
	report.LanguageMatch = round(report.LanguageMatch)
	report.PatternMatch = round(report.PatternMatch)
	report.ArtifactPenalty = round(report.ArtifactPenalty)

	return report
}

// artifacts lists reduplicated words and calques, in text order per kind.
func (s *Scorer) artifacts(text string, tokens []textutil.Token, words []string, table *phraseTable) []string {
	var out []string
	for i := 0; i+1 < len(tokens); i++ {
		a, b := tokens[i], tokens[i+1]
		if a.Text != b.Text || s.allowed[a.Text] || isNumber(a.Text) {
			continue
		}
		// hyphenated reduplication ("anak-anak") is regular morphology, not an artifact
		if !textutil.IsWhitespaceOnly(textutil.Between(text, a, b)) {
			continue
		}
		out = append(out, "reduplication: "+a.Text+" "+b.Text)
		i++
	}
	for _, c := range table.calques {
		for n := c.Count(words); n > 0; n-- {
			out = append(out, "calque: "+c.Raw)
		}
	}
	return out
}

func (s *Scorer) table(p *types.PersonaProfile) *phraseTable {
	if t, ok := s.tables.Get(p); ok {
		return t
	}

	expected, err := language.Base(p.Language)
	if err != nil {
		// profiles from the store are validated; keep the raw value otherwise
		expected = p.Language
	}
	t := &phraseTable{
		expected:  expected,
		signature: textutil.CompilePhrases(p.SignaturePhrases),
		forbidden: textutil.CompilePhrases(p.ForbiddenPhrases),
	}

	calques := append([]string{}, p.Calques...)
	if p.SourceLocale != "" {
		if src, err := language.Base(p.SourceLocale); err == nil && src != expected {
			calques = append(calques, builtinCalques[calqueKey(src, expected)]...)
		}
	}
	t.calques = textutil.CompilePhrases(dedupe(calques))

	s.tables.Add(p, t)
	return t
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		k := textutil.Fold(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}

func isNumber(w string) bool {
	for _, r := range w {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
