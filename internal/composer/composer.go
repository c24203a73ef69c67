// Package composer builds the generation instruction for each attempt of a pipeline run.
package composer

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/prompts"
	"github.com/jonathan/persona-authenticity/internal/types"
)

// Composer layers a base template, grounding facts, persona traits and corrective
// directives into a single PromptSpec. It holds no per-run state.
type Composer struct {
	cfg          config.ComposerConfig
	contentTypes []string
	logger       *zap.Logger
}

// New creates a composer. Content types must have a base template; when cfg.ContentTypes is
// empty every shipped template is allowed.
func New(cfg config.ComposerConfig, logger *zap.Logger) (*Composer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ImperfectionThreshold < 2 {
		return nil, config.Errorf("composer.imperfection_threshold", "must be at least 2")
	}

	shipped, err := prompts.List(prompts.TemplatesFile)
	if err != nil {
		return nil, &config.Error{Field: "composer.content_types", Message: "failed to load templates", Cause: err}
	}
	allowed := shipped
	if len(cfg.ContentTypes) > 0 {
		allowed = make([]string, 0, len(cfg.ContentTypes))
		for _, ct := range cfg.ContentTypes {
			if !slices.Contains(shipped, ct) {
				return nil, config.Errorf("composer.content_types", "no template for content type %q", ct)
			}
			allowed = append(allowed, ct)
		}
	}

	return &Composer{cfg: cfg, contentTypes: allowed, logger: logger}, nil
}

// ContentTypes lists the content type tags this composer accepts
func (c *Composer) ContentTypes() []string {
	return slices.Clone(c.contentTypes)
}

// Compose builds the prompt for attempt len(history)+1.
//
// Layers appear in fixed order: base template, facts, persona traits, corrective directives.
// Corrective directives are derived from every earlier attempt, so each attempt's directive
// set strictly contains the previous one.
func (c *Composer) Compose(req types.GenerationRequest, persona *types.PersonaProfile, history []types.Attempt) (types.PromptSpec, error) {
	if persona == nil {
		return types.PromptSpec{}, config.Errorf("persona_id", "persona is required")
	}
	if !slices.Contains(c.contentTypes, req.ContentType) {
		return types.PromptSpec{}, config.Errorf("content_type", "unknown content type %q", req.ContentType)
	}

	attempt := len(history) + 1
	spec := types.PromptSpec{
		Attempt:     attempt,
		PersonaID:   persona.ID,
		ContentType: req.ContentType,
	}

	base, err := prompts.Render(prompts.MustGet(prompts.TemplatesFile, req.ContentType), map[string]string{
		"Language": persona.Language,
		"Locale":   persona.Locale,
		"MinWords": strconv.Itoa(req.Length.MinWords),
		"MaxWords": strconv.Itoa(req.Length.MaxWords),
	})
	if err != nil {
		return types.PromptSpec{}, &config.Error{Field: "content_type", Message: "template " + req.ContentType, Cause: err}
	}

	sections := []string{base}
	if facts := factsSection(req.Facts); facts != "" {
		sections = append(sections, facts)
	}
	if traits := traitsSection(persona); traits != "" {
		sections = append(sections, traits)
	}

	spec.Directives = c.directives(persona, history, attempt, req.Thresholds)
	if len(spec.Directives) > 0 {
		var sb strings.Builder
		sb.WriteString(prompts.MustGet(prompts.DirectivesFile, "corrections-header"))
		for _, d := range spec.Directives {
			sb.WriteString("\n- ")
			sb.WriteString(d.Text)
		}
		sections = append(sections, sb.String())
	}
	sections = append(sections, prompts.MustGet(prompts.DirectivesFile, "output-format"))

	spec.Text = strings.Join(sections, "\n\n")

	c.logger.Debug("prompt composed",
		zap.String("persona", persona.ID),
		zap.String("content_type", req.ContentType),
		zap.Int("attempt", attempt),
		zap.Strings("directives", spec.DirectiveIDs()),
	)
	return spec, nil
}

func (c *Composer) directives(persona *types.PersonaProfile, history []types.Attempt, attempt int, thresholds *types.Thresholds) []types.Directive {
	var out []types.Directive
	for i := range history {
		out = append(out, varyStructure(&history[i]))
	}
	if attempt >= c.cfg.ImperfectionThreshold {
		out = append(out, imperfection(persona))
	}
	if thresholds == nil {
		return out
	}
	for i := range history {
		out = append(out, axisDirectives(persona, &history[i], *thresholds)...)
	}
	return out
}

func varyStructure(a *types.Attempt) types.Directive {
	d := types.Directive{ID: fmt.Sprintf("vary-structure#%d", a.Number), Kind: types.DirectiveVaryStructure}
	if a.Structure == nil || a.Structure.Sentences == 0 {
		d.Text = prompts.Format(prompts.MustGet(prompts.DirectivesFile, "vary-structure-unknown"), map[string]string{
			"Attempt": strconv.Itoa(a.Number),
		})
		return d
	}

	s := a.Structure
	ending := ""
	switch {
	case s.EndsWithQuestion:
		ending = ", ending on a question"
	case s.EndsWithExclaim:
		ending = ", ending on an exclamation"
	}
	d.Text = prompts.Format(prompts.MustGet(prompts.DirectivesFile, "vary-structure"), map[string]string{
		"Attempt":    strconv.Itoa(a.Number),
		"Opener":     s.Opener,
		"Sentences":  strconv.Itoa(s.Sentences),
		"Mean":       strconv.FormatFloat(s.MeanSentenceWords, 'f', 1, 64),
		"Paragraphs": strconv.Itoa(s.Paragraphs),
		"Ending":     ending,
	})
	return d
}

func imperfection(persona *types.PersonaProfile) types.Directive {
	amount := "a few small imperfections"
	switch level := persona.Intensity.Imperfection; {
	case level >= 67:
		amount = "plenty of imperfections"
	case level < 34:
		amount = "one or two small imperfections"
	}
	return types.Directive{
		ID:   "imperfection",
		Kind: types.DirectiveImperfection,
		Text: prompts.Format(prompts.MustGet(prompts.DirectivesFile, "imperfection"), map[string]string{"Amount": amount}),
	}
}

// axisDirectives emits one directive per threshold axis that attempt a failed on.
func axisDirectives(persona *types.PersonaProfile, a *types.Attempt, t types.Thresholds) []types.Directive {
	if a.Report == nil {
		return nil
	}
	n := strconv.Itoa(a.Number)
	var out []types.Directive
	for _, axis := range a.Report.FailedAxes(t) {
		d := types.Directive{ID: fmt.Sprintf("%s#%d", axis, a.Number)}
		switch axis {
		case types.AxisAuthenticity:
			d.Kind = types.DirectiveAuthenticity
			auth := a.Report.Authenticity
			if auth.HardFailure {
				d.Text = prompts.Format(prompts.MustGet(prompts.DirectivesFile, "authenticity-language"), map[string]string{
					"Attempt":  n,
					"Detected": auth.DetectedLanguage,
					"Language": persona.Language,
				})
				break
			}
			markers := persona.SignaturePhrases
			if len(markers) == 0 {
				markers = traitNames(persona)
			}
			d.Text = prompts.Format(prompts.MustGet(prompts.DirectivesFile, "authenticity"), map[string]string{
				"Attempt": n,
				"Locale":  persona.Locale,
				"Markers": quoteList(markers, 6),
			})
		case types.AxisMachineLikelihood:
			d.Kind = types.DirectiveMachine
			if matches := a.Report.Detection.Matches(); len(matches) > 0 {
				d.Text = prompts.Format(prompts.MustGet(prompts.DirectivesFile, "machine-likelihood"), map[string]string{
					"Attempt": n,
					"Phrases": quoteList(matches, 8),
				})
			} else {
				d.Text = prompts.Format(prompts.MustGet(prompts.DirectivesFile, "machine-likelihood-generic"), map[string]string{
					"Attempt": n,
				})
			}
		case types.AxisReadability:
			d.Kind = types.DirectiveReadability
			d.Text = readabilityText(n, a.Report.Readability, t.Readability)
		}
		out = append(out, d)
	}
	return out
}

func readabilityText(n string, r types.ReadabilityReport, band types.ReadabilityBand) string {
	data := map[string]string{
		"Attempt":      n,
		"Ease":         strconv.FormatFloat(r.Ease, 'f', 0, 64),
		"Grade":        strconv.FormatFloat(r.Grade, 'f', 1, 64),
		"MinSentences": strconv.Itoa(band.MinSentences),
	}
	key := "readability-easier"
	switch {
	case r.Words == 0 || r.Sentences < 1:
		key = "readability-sentences"
	case r.Ease < band.EaseMin || (r.GradeComputed && r.Grade > band.GradeMax):
		key = "readability-harder"
	}
	return prompts.Format(prompts.MustGet(prompts.DirectivesFile, key), data)
}

func factsSection(facts map[string]any) string {
	if len(facts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(facts))
	for k := range facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tmpl := prompts.MustGet(prompts.DirectivesFile, "fact")
	lines := []string{prompts.MustGet(prompts.DirectivesFile, "facts-header")}
	for _, k := range keys {
		lines = append(lines, prompts.Format(tmpl, map[string]string{
			"Key":   strings.ReplaceAll(k, "_", " "),
			"Value": factValue(facts[k]),
		}))
	}
	return strings.Join(lines, "\n")
}

func factValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "unknown"
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, factValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

// traitsSection renders the persona layer. Trait wording strength follows Intensity.Traits and
// the number of suggested signature phrases follows Intensity.Markers.
func traitsSection(p *types.PersonaProfile) string {
	var lines []string

	if level := p.Intensity.Traits; level > 0 && len(p.Traits) > 0 {
		key := "traits-moderate"
		switch {
		case level < 34:
			key = "traits-subtle"
		case level >= 67:
			key = "traits-strong"
		}
		lines = append(lines, prompts.MustGet(prompts.DirectivesFile, key))
		tmpl := prompts.MustGet(prompts.DirectivesFile, "trait")
		for _, t := range p.Traits {
			lines = append(lines, prompts.Format(tmpl, map[string]string{"Directive": t.Directive}))
		}
	}

	if count := markerCount(len(p.SignaturePhrases), p.Intensity.Markers); count > 0 {
		lines = append(lines, prompts.Format(prompts.MustGet(prompts.DirectivesFile, "signature"), map[string]string{
			"Count":   strconv.Itoa(count),
			"Phrases": quoteList(p.SignaturePhrases, 0),
		}))
	}
	if len(p.ForbiddenPhrases) > 0 {
		lines = append(lines, prompts.Format(prompts.MustGet(prompts.DirectivesFile, "forbidden"), map[string]string{
			"Phrases": quoteList(p.ForbiddenPhrases, 0),
		}))
	}
	return strings.Join(lines, "\n")
}

func markerCount(available, intensity int) int {
	if available == 0 || intensity <= 0 {
		return 0
	}
	n := int(math.Ceil(float64(available) * float64(intensity) / 100))
	return max(1, min(n, available))
}

func traitNames(p *types.PersonaProfile) []string {
	names := make([]string, 0, len(p.Traits))
	for _, t := range p.Traits {
		names = append(names, t.Name)
	}
	return names
}

// quoteList quotes items and joins them; limit <= 0 means no limit.
func quoteList(items []string, limit int) string {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, ", ")
}
