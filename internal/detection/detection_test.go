package detection

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/persona-authenticity/internal/config"
)

type fakeModel struct {
	id    string
	score float64
	err   error
}

func (f fakeModel) ID() string                    { return f.id }
func (f fakeModel) Score(string) (float64, error) { return f.score, f.err }

func testPattern(t *testing.T) *PatternDetector {
	t.Helper()
	d, err := NewPatternDetector(config.PatternConfig{
		Phrases:       []string{"delve", "delve into", "tapestry", "in conclusion"},
		Constructions: []string{`(?i)\bthis (post|article) (explores|highlights)\b`},
		DensityScale:  25,
		MinWords:      10,
	})
	require.NoError(t, err)
	return d
}

const machineText = "In conclusion, this post explores the rich tapestry of flavors. Let us delve into the menu."

func TestPatternDetector_Detect(t *testing.T) {
	d := testPattern(t)

	tests := []struct {
		name        string
		text        string
		wantScore   float64
		wantMatches []string
	}{
		{
			name:      "clean text",
			text:      "Grabbed a quick coffee before work, the barista remembered my order again.",
			wantScore: 0,
		},
		{
			// 4 matches over 16 words: 25 per hundred words, times 25, capped
			name:        "dense machine phrasing",
			text:        machineText,
			wantScore:   100,
			wantMatches: []string{"delve into", "in conclusion", "tapestry", "this post explores"},
		},
		{
			name:        "longest phrase wins",
			text:        "We will delve into it later today because the cafe opens at nine and closes quite late on most Fridays.",
			wantScore:   100,
			wantMatches: []string{"delve into"},
		},
		{
			// 1 match over 40 words: 2.5 per hundred, times 25
			name:        "sparse match",
			text:        "The tapestry in the lobby caught my eye while we waited for our table, and the waiter told us stories about the owner who opened this little place with her sister back when the street was still mostly empty lots.",
			wantScore:   62.5,
			wantMatches: []string{"tapestry"},
		},
		{
			// 1 match, floor of 10 words
			name:        "short text uses word floor",
			text:        "Tapestry everywhere.",
			wantScore:   100,
			wantMatches: []string{"tapestry"},
		},
		{
			name:      "no substring matches",
			text:      "The delver walked into the tapestrymaker shop.",
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text)
			assert.Equal(t, config.DetectorPattern, got.Detector)
			assert.InDelta(t, tt.wantScore, got.Score, 0.01)
			if tt.wantMatches == nil {
				assert.Empty(t, got.Matches)
			} else {
				assert.ElementsMatch(t, tt.wantMatches, got.Matches)
			}
		})
	}
}

func TestPatternDetector_LengthNormalized(t *testing.T) {
	d, err := NewPatternDetector(config.PatternConfig{Phrases: []string{"tapestry"}, DensityScale: 10, MinWords: 1})
	require.NoError(t, err)

	unit := "A tapestry hung on the wall near the door of the cafe. "
	short := d.Detect(unit)
	long := d.Detect(strings.Repeat(unit, 5))
	assert.InDelta(t, short.Score, long.Score, 0.01)
}

func TestNewPatternDetector_BadConstruction(t *testing.T) {
	_, err := NewPatternDetector(config.PatternConfig{Constructions: []string{"(oops"}, DensityScale: 1})
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
}

func TestBurstinessModel(t *testing.T) {
	m := NewBurstinessModel(config.BurstinessConfig{MinSentences: 3, LowCV: 0.2, HighCV: 0.7})

	_, err := m.Score("One sentence. Two sentences.")
	assert.ErrorIs(t, err, ErrUnavailable)

	uniform, err := m.Score("The food was very good. The staff were very kind. The room was very clean. The view was very nice.")
	require.NoError(t, err)
	assert.Equal(t, 100.0, uniform)

	varied, err := m.Score("Wow. We stayed three nights and honestly every single morning the breakfast somehow got better than before. Loved it. Would come back again with the whole family next summer for sure.")
	require.NoError(t, err)
	assert.Less(t, varied, uniform)
}

func TestTokenizerModel_UnavailableEncoding(t *testing.T) {
	m := NewTokenizerModel(config.TokenizerConfig{Encoding: "no_such_encoding", LowRatio: 1.1, HighRatio: 1.6, MinWords: 1})
	_, err := m.Score("some words here")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTokenizerModel_EmbeddedEncoding(t *testing.T) {
	m := NewTokenizerModel(config.TokenizerConfig{Encoding: "cl100k_base", LowRatio: 1.15, HighRatio: 1.6, MinWords: 5})
	require.NoError(t, m.Load())

	score, err := m.Score("We grabbed coffee at the little place near the station before work this morning.")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}

func TestEnsemble_RenormalizesOverDetectorsThatRan(t *testing.T) {
	p := testPattern(t)
	e, err := NewEnsemble(p, 1,
		WithModel(fakeModel{id: "steady", score: 40}, 1),
		WithModel(fakeModel{id: "broken", err: errors.New("model crashed")}, 2),
	)
	require.NoError(t, err)

	r, err := e.Detect(machineText)
	require.NoError(t, err)

	require.Len(t, r.Detectors, 2)
	require.Len(t, r.Skipped, 1)
	assert.Equal(t, "broken", r.Skipped[0].Detector)
	assert.Contains(t, r.Skipped[0].Reason, "error: model crashed")
	// (100*1 + 40*1) / 2, the broken model's weight is dropped
	assert.InDelta(t, 70.0, r.Score, 0.01)
	assert.False(t, r.Partial)
}

func TestEnsemble_ModelUnavailableIsPartial(t *testing.T) {
	p := testPattern(t)
	e, err := NewEnsemble(p, 0.5,
		WithModel(NewTokenizerModel(config.TokenizerConfig{Encoding: "no_such_encoding", LowRatio: 1, HighRatio: 2}), 0.5),
	)
	require.NoError(t, err)

	r, err := e.Detect(machineText)
	require.NoError(t, err)

	assert.True(t, r.Partial)
	require.Len(t, r.Detectors, 1)
	assert.Equal(t, p.Detect(machineText).Score, r.Score)
	assert.GreaterOrEqual(t, r.Score, 0.0)
	assert.LessOrEqual(t, r.Score, 100.0)
}

func TestEnsemble_PatternOnlyIsPartial(t *testing.T) {
	e, err := NewEnsemble(testPattern(t), 1)
	require.NoError(t, err)

	r, err := e.Detect(machineText)
	require.NoError(t, err)
	assert.True(t, r.Partial)
	assert.Empty(t, r.Skipped)
}

func TestEnsemble_OutOfRangeModelIsExcluded(t *testing.T) {
	e, err := NewEnsemble(testPattern(t), 1, WithModel(fakeModel{id: "wild", score: 250}, 1))
	require.NoError(t, err)

	r, err := e.Detect("A calm and ordinary sentence about the weather today.")
	require.NoError(t, err)
	assert.True(t, r.Partial)
	assert.Equal(t, 0.0, r.Score)
}

func TestEnsemble_CompositeIsConvex(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := testPattern(t)
	words := strings.Fields(machineText + " coffee morning friends laugh walk sunny")

	for i := 0; i < 100; i++ {
		var opts []Option
		for j := 0; j < rng.Intn(4); j++ {
			m := fakeModel{id: string(rune('a' + j)), score: rng.Float64() * 100}
			if rng.Intn(3) == 0 {
				m.err = ErrUnavailable
			}
			opts = append(opts, WithModel(m, 0.1+rng.Float64()))
		}
		e, err := NewEnsemble(p, 0.1+rng.Float64(), opts...)
		require.NoError(t, err)

		n := 1 + rng.Intn(30)
		parts := make([]string, n)
		for k := range parts {
			parts[k] = words[rng.Intn(len(words))]
		}
		r, err := e.Detect(strings.Join(parts, " "))
		require.NoError(t, err)

		lo, hi := 100.0, 0.0
		for _, d := range r.Detectors {
			lo = min(lo, d.Score)
			hi = max(hi, d.Score)
		}
		assert.GreaterOrEqual(t, r.Score, lo-0.01)
		assert.LessOrEqual(t, r.Score, hi+0.01)
	}
}

func TestNewEnsembleFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig().Detection
	e, err := NewEnsembleFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.Len(t, e.models, 2)

	var tok *TokenizerModel
	for _, wm := range e.models {
		if m, ok := wm.model.(*TokenizerModel); ok {
			tok = m
		}
	}
	require.NotNil(t, tok)
	// loaded while building the ensemble, not on first Detect
	assert.NotNil(t, tok.enc)
	assert.NoError(t, tok.err)

	r, err := e.Detect(strings.Repeat("We walked along the river and talked about nothing much at all. ", 4))
	require.NoError(t, err)
	for _, s := range r.Skipped {
		assert.NotEqual(t, config.DetectorTokenizer, s.Detector, s.Reason)
	}

	cfg.Detectors = []config.DetectorConfig{{ID: "oracle", Weight: 1}}
	_, err = NewEnsembleFromConfig(cfg, nil)
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewEnsemble_RequiresPattern(t *testing.T) {
	_, err := NewEnsemble(nil, 1)
	require.Error(t, err)

	_, err = NewEnsemble(testPattern(t), 1, WithModel(fakeModel{id: "x"}, 0))
	require.Error(t, err)
}

func TestCapabilities(t *testing.T) {
	c := Capabilities{config.DetectorPattern: true}
	assert.True(t, c.Has(config.DetectorPattern))
	assert.False(t, c.HasModel())
	c[config.DetectorBurstiness] = true
	assert.True(t, c.HasModel())
}
