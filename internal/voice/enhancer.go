// Package voice pushes a candidate text toward a persona's voice without calling the
// generation service, and refuses any change that scores worse than the original.
package voice

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/textutil"
	"github.com/jonathan/persona-authenticity/internal/types"
)

// AuthenticityScorer scores text against a persona
type AuthenticityScorer interface {
	Score(text string, p *types.PersonaProfile) types.AuthenticityReport
}

// Detector estimates machine likelihood
type Detector interface {
	Detect(text string) (types.DetectionReport, error)
}

// Result is the outcome of one enhancement.
type Result struct {
	// Text is the enhanced text, or the original when nothing changed or the change was rejected
	Text    string
	Changed bool
	// Degraded is set when the enhanced text scored worse than baseline beyond tolerance
	Degraded bool
	// Reason wraps ErrEnhancementRejected when Degraded is set
	Reason error

	Authenticity  types.AuthenticityReport
	Detection     types.DetectionReport
	Substitutions []string
	Injections    []string
}

// Enhancer applies persona substitutions and injects signature markers.
type Enhancer struct {
	cfg      config.EnhancementConfig
	scorer   AuthenticityScorer
	detector Detector
	logger   *zap.Logger
}

// NewEnhancer creates an enhancer that re-scores with the given scorer and detector.
func NewEnhancer(cfg config.EnhancementConfig, scorer AuthenticityScorer, detector Detector, logger *zap.Logger) (*Enhancer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if scorer == nil || detector == nil {
		return nil, config.Errorf("enhancement", "scorer and detector are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enhancer{cfg: cfg, scorer: scorer, detector: detector, logger: logger}, nil
}

// Enhance transforms text for persona p and re-scores it against baseline, the caller's
// report for the untransformed text. If authenticity dropped by more than the configured
// tolerance, or machine likelihood rose by more than its tolerance, the original text is
// returned with Degraded set. The error is non-nil only when the detector cannot score at all.
func (e *Enhancer) Enhance(text string, p *types.PersonaProfile, baseline types.ScoreReport) (Result, error) {
	unchanged := Result{
		Text:         text,
		Authenticity: baseline.Authenticity,
		Detection:    baseline.Detection,
	}

	enhanced, substituted := substitute(textutil.Normalize(text), p.Substitutions)
	enhanced, injected := inject(enhanced, p, e.budget(p))
	if len(substituted) == 0 && len(injected) == 0 {
		e.logger.Debug("no enhancement applicable", zap.String("persona", p.ID))
		return unchanged, nil
	}

	auth := e.scorer.Score(enhanced, p)
	det, err := e.detector.Detect(enhanced)
	if err != nil {
		return unchanged, err
	}

	drop := baseline.Authenticity.Score - auth.Score
	rise := det.Score - baseline.Detection.Score
	if drop > e.cfg.AuthenticityTolerance || rise > e.cfg.MachineTolerance {
		reason := &RejectionError{AuthenticityDrop: drop, MachineRise: rise}
		e.logger.Warn("enhancement rejected",
			zap.String("persona", p.ID),
			zap.Float64("authenticity_before", baseline.Authenticity.Score),
			zap.Float64("authenticity_after", auth.Score),
			zap.Float64("machine_before", baseline.Detection.Score),
			zap.Float64("machine_after", det.Score),
			zap.Error(reason),
		)
		unchanged.Degraded = true
		unchanged.Reason = reason
		return unchanged, nil
	}

	e.logger.Debug("enhancement applied",
		zap.String("persona", p.ID),
		zap.Strings("substitutions", substituted),
		zap.Strings("injections", injected),
		zap.Float64("authenticity", auth.Score),
		zap.Float64("machine_likelihood", det.Score),
	)
	return Result{
		Text:          enhanced,
		Changed:       true,
		Authenticity:  auth,
		Detection:     det,
		Substitutions: substituted,
		Injections:    injected,
	}, nil
}

// budget is how many markers may be injected: the persona's marker intensity applied to its
// signature list, capped by max_injections.
func (e *Enhancer) budget(p *types.PersonaProfile) int {
	if e.cfg.MaxInjections == 0 || p.Intensity.Markers <= 0 || len(p.SignaturePhrases) == 0 {
		return 0
	}
	n := int(math.Ceil(float64(len(p.SignaturePhrases)) * float64(p.Intensity.Markers) / 100))
	return max(1, min(n, e.cfg.MaxInjections))
}

type substitution struct {
	from textutil.Phrase
	to   string
}

// substitute replaces whole-word, case-insensitive occurrences of each generic phrase with its
// regional form. Longer phrases go first so "thank you very much" wins over "thank you".
func substitute(text string, table map[string]string) (string, []string) {
	subs := make([]substitution, 0, len(table))
	for from, to := range table {
		phrase := textutil.CompilePhrase(from)
		if len(phrase.Words) == 0 || strings.TrimSpace(to) == "" {
			continue
		}
		subs = append(subs, substitution{from: phrase, to: to})
	}
	sort.Slice(subs, func(i, j int) bool {
		if len(subs[i].from.Words) != len(subs[j].from.Words) {
			return len(subs[i].from.Words) > len(subs[j].from.Words)
		}
		return subs[i].from.Raw < subs[j].from.Raw
	})

	var applied []string
	for _, s := range subs {
		tokens := textutil.Tokenize(text)
		n := len(s.from.Words)

		type span struct{ start, end int }
		var spans []span
		for i := 0; i+n <= len(tokens); {
			if matchesAt(tokens, i, s.from.Words) {
				spans = append(spans, span{tokens[i].Start, tokens[i+n-1].End})
				i += n
				continue
			}
			i++
		}
		if len(spans) == 0 {
			continue
		}

		for k := len(spans) - 1; k >= 0; k-- {
			sp := spans[k]
			text = text[:sp.start] + matchCase(text[sp.start:sp.end], s.to) + text[sp.end:]
		}
		text = textutil.Normalize(text)
		applied = append(applied, s.from.Raw)
	}
	return text, applied
}

// inject appends up to budget signature phrases not already present, one per sentence, spread
// evenly across the text. Each marker goes after the sentence's last word.
func inject(text string, p *types.PersonaProfile, budget int) (string, []string) {
	if budget == 0 {
		return text, nil
	}

	words := textutil.Words(text)
	var markers []string
	for _, raw := range p.SignaturePhrases {
		phrase := textutil.CompilePhrase(raw)
		if len(phrase.Words) == 0 || phrase.Index(words) >= 0 {
			continue
		}
		markers = append(markers, raw)
		if len(markers) == budget {
			break
		}
	}

	ends := sentenceEnds(text)
	if len(markers) > len(ends) {
		markers = markers[:len(ends)]
	}
	if len(markers) == 0 {
		return text, nil
	}

	// insert back to front so earlier offsets stay valid
	for j := len(markers) - 1; j >= 0; j-- {
		at := ends[j*len(ends)/len(markers)]
		text = text[:at] + ", " + markers[j] + text[at:]
	}
	return text, markers
}

// sentenceEnds returns, for each sentence, the byte offset just past its last word.
func sentenceEnds(text string) []int {
	var ends []int
	cursor := 0
	for _, s := range textutil.Sentences(text) {
		off := strings.Index(text[cursor:], s)
		if off < 0 {
			continue
		}
		start := cursor + off
		tokens := textutil.Tokenize(s)
		if len(tokens) == 0 {
			continue
		}
		ends = append(ends, start+tokens[len(tokens)-1].End)
		cursor = start + len(s)
	}
	return ends
}

func matchesAt(tokens []textutil.Token, i int, seq []string) bool {
	for k, w := range seq {
		if tokens[i+k].Text != w {
			return false
		}
	}
	return true
}

// matchCase capitalizes replacement when the text it replaces starts with an upper-case letter.
func matchCase(original, replacement string) string {
	first, _ := utf8.DecodeRuneInString(original)
	if !unicode.IsUpper(first) {
		return replacement
	}
	r, size := utf8.DecodeRuneInString(replacement)
	return string(unicode.ToUpper(r)) + replacement[size:]
}
