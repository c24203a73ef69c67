package detection

import (
	"math"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/textutil"
)

// Model is an optional statistical or model-based detector. Score returns a value in
// [0,100] or an error wrapping ErrUnavailable when it cannot judge the text.
type Model interface {
	ID() string
	Score(text string) (float64, error)
}

// BurstinessModel scores the uniformity of sentence lengths. Human writing mixes short and
// long sentences; generated text tends toward a steady rhythm, so a low coefficient of
// variation reads as machine-like.
type BurstinessModel struct {
	cfg config.BurstinessConfig
}

// NewBurstinessModel creates the model
func NewBurstinessModel(cfg config.BurstinessConfig) *BurstinessModel {
	return &BurstinessModel{cfg: cfg}
}

// ID returns the detector id
func (m *BurstinessModel) ID() string { return config.DetectorBurstiness }

// Score maps the coefficient of variation onto [0,100], LowCV and below scoring 100.
func (m *BurstinessModel) Score(text string) (float64, error) {
	sentences := textutil.Sentences(text)
	if len(sentences) < m.cfg.MinSentences || len(sentences) < 2 {
		return 0, unavailable("%d sentences, need %d", len(sentences), m.cfg.MinSentences)
	}

	lengths := make([]float64, len(sentences))
	var sum float64
	for i, s := range sentences {
		lengths[i] = float64(textutil.WordCount(s))
		sum += lengths[i]
	}
	mean := sum / float64(len(lengths))
	var sq float64
	for _, l := range lengths {
		sq += (l - mean) * (l - mean)
	}
	cv := math.Sqrt(sq/float64(len(lengths))) / mean

	return scale(cv, m.cfg.LowCV, m.cfg.HighCV), nil
}

// Encodings are read from the BPE files embedded in the loader module, never fetched.
func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// TokenizerModel scores vocabulary predictability using a BPE tokenizer. Common phrasing
// encodes in fewer tokens per word; slang, regional spelling and typos cost more tokens.
// If the encoding cannot be loaded the model is unavailable.
type TokenizerModel struct {
	cfg config.TokenizerConfig

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// NewTokenizerModel creates the model
func NewTokenizerModel(cfg config.TokenizerConfig) *TokenizerModel {
	return &TokenizerModel{cfg: cfg}
}

// ID returns the detector id
func (m *TokenizerModel) ID() string { return config.DetectorTokenizer }

// Load loads the encoding. It is safe to call repeatedly and concurrently.
func (m *TokenizerModel) Load() error {
	m.once.Do(func() {
		m.enc, m.err = tiktoken.GetEncoding(m.cfg.Encoding)
	})
	return m.err
}

// Score maps tokens-per-word onto [0,100], LowRatio and below scoring 100.
func (m *TokenizerModel) Score(text string) (float64, error) {
	if err := m.Load(); err != nil {
		return 0, unavailable("encoding %s: %v", m.cfg.Encoding, err)
	}
	words := textutil.WordCount(text)
	if words < m.cfg.MinWords || words == 0 {
		return 0, unavailable("%d words, need %d", words, m.cfg.MinWords)
	}
	tokens := len(m.enc.Encode(text, nil, nil))
	ratio := float64(tokens) / float64(words)
	return scale(ratio, m.cfg.LowRatio, m.cfg.HighRatio), nil
}

// scale maps v linearly so that low and below give 100 and high and above give 0.
func scale(v, low, high float64) float64 {
	s := 100 * (high - v) / (high - low)
	return math.Round(math.Max(0, math.Min(100, s))*100) / 100
}
