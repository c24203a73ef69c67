package readability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/persona-authenticity/internal/types"
)

var band = types.ReadabilityBand{EaseMin: 30, EaseMax: 120, GradeMin: 0, GradeMax: 12, MinSentences: 3}

func TestMeasure(t *testing.T) {
	m := Measure("The cat sat. The dog ran. We all had fun.")
	assert.Equal(t, 3, m.Sentences)
	assert.Equal(t, 10, m.Words)
	assert.Equal(t, 10, m.Syllables)

	wps := 10.0 / 3.0
	assert.InDelta(t, 206.835-1.015*wps-84.6, m.Ease, 0.01)
	assert.InDelta(t, 0.39*wps+11.8-15.59, m.Grade, 0.01)
}

func TestMeasure_Empty(t *testing.T) {
	assert.Equal(t, Metrics{}, Measure("   "))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantPass      bool
		wantGrade     bool
		failureSubstr string
	}{
		{
			name:      "plain prose passes",
			text:      "We went to the beach on Sunday. The water was warm and clear. My kids built a big sand castle near the rocks.",
			wantPass:  true,
			wantGrade: true,
		},
		{
			name:          "dense prose fails ease",
			text:          "Comprehensive institutional modernization necessitates extraordinary organizational commitment. Multidimensional transformation initiatives systematically revolutionize administrative infrastructure. Interdepartmental collaboration facilitates unprecedented operational optimization.",
			wantPass:      false,
			wantGrade:     true,
			failureSubstr: "reading ease",
		},
		{
			name:      "short caption skips grade",
			text:      "Sunset vibes at the pier!",
			wantPass:  true,
			wantGrade: false,
		},
		{
			name:          "empty text fails",
			text:          "",
			wantPass:      false,
			failureSubstr: "no words",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(tt.text, band)
			assert.Equal(t, tt.wantPass, r.Pass, "failures: %v", r.Failures)
			assert.Equal(t, tt.wantGrade, r.GradeComputed)
			if !tt.wantGrade {
				assert.Zero(t, r.Grade)
			}
			if tt.failureSubstr != "" {
				require.NotEmpty(t, r.Failures)
				assert.Contains(t, r.Failures[0], tt.failureSubstr)
			}
		})
	}
}

func TestValidate_GradeOutsideBandOnlyWhenComputed(t *testing.T) {
	strict := band
	strict.GradeMax = 0.5

	long := Validate("We went to the beach on Sunday. The water was warm and clear. My kids built a big sand castle near the rocks.", strict)
	assert.False(t, long.Pass)
	require.NotEmpty(t, long.Failures)
	assert.Contains(t, long.Failures[0], "grade level")

	short := Validate("We went to the beach on Sunday.", strict)
	assert.True(t, short.Pass)
}
