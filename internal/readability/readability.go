// Package readability computes Flesch reading ease and Flesch-Kincaid grade and checks them
// against an acceptable band.
package readability

import (
	"fmt"
	"math"

	"github.com/jonathan/persona-authenticity/internal/textutil"
	"github.com/jonathan/persona-authenticity/internal/types"
)

// Metrics are the raw counts and formula outputs for a text
type Metrics struct {
	Sentences int
	Words     int
	Syllables int
	Ease      float64
	Grade     float64
}

// Measure counts sentences, words and syllables and applies both Flesch formulas.
// A text without words yields zero metrics.
func Measure(text string) Metrics {
	sentences := textutil.Sentences(text)
	words := textutil.Words(text)
	m := Metrics{
		Sentences: len(sentences),
		Words:     len(words),
		Syllables: textutil.TotalSyllables(words),
	}
	if m.Words == 0 || m.Sentences == 0 {
		return m
	}

	wps := float64(m.Words) / float64(m.Sentences)
	spw := float64(m.Syllables) / float64(m.Words)
	m.Ease = round(206.835 - 1.015*wps - 84.6*spw)
	m.Grade = round(0.39*wps + 11.8*spw - 15.59)
	return m
}

// Validate measures text and checks it against band. Texts with fewer than
// band.MinSentences sentences skip the grade check and are judged on ease alone.
func Validate(text string, band types.ReadabilityBand) types.ReadabilityReport {
	m := Measure(text)
	r := types.ReadabilityReport{
		Ease:      m.Ease,
		Sentences: m.Sentences,
		Words:     m.Words,
		Syllables: m.Syllables,
	}

	if m.Words == 0 {
		r.Failures = append(r.Failures, "text has no words")
		return r
	}

	if m.Ease < band.EaseMin {
		r.Failures = append(r.Failures, fmt.Sprintf("reading ease %.1f below %.1f", m.Ease, band.EaseMin))
	}
	if m.Ease > band.EaseMax {
		r.Failures = append(r.Failures, fmt.Sprintf("reading ease %.1f above %.1f", m.Ease, band.EaseMax))
	}

	if m.Sentences >= band.MinSentences {
		r.Grade = m.Grade
		r.GradeComputed = true
		if m.Grade < band.GradeMin {
			r.Failures = append(r.Failures, fmt.Sprintf("grade level %.1f below %.1f", m.Grade, band.GradeMin))
		}
		if m.Grade > band.GradeMax {
			r.Failures = append(r.Failures, fmt.Sprintf("grade level %.1f above %.1f", m.Grade, band.GradeMax))
		}
	}

	r.Pass = len(r.Failures) == 0
	return r
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
