package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/persona-authenticity/internal/types"
)

var testThresholds = types.Thresholds{
	AuthenticityMin:      70,
	MachineLikelihoodMax: 40,
	Readability:          types.ReadabilityBand{EaseMin: 30, EaseMax: 110, GradeMin: 0, GradeMax: 12, MinSentences: 1},
}

func report(auth, machine float64, readable bool) *types.ScoreReport {
	return &types.ScoreReport{
		Authenticity: types.AuthenticityReport{Score: auth},
		Detection:    types.DetectionReport{Score: machine},
		Readability:  types.ReadabilityReport{Pass: readable},
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		report   *types.ScoreReport
		tried    bool
		attempt  int
		expected types.Decision
	}{
		{name: "all pass", report: report(80, 20, true), attempt: 1, expected: types.DecisionAccept},
		{name: "all pass after enhancement", report: report(80, 20, true), tried: true, attempt: 3, expected: types.DecisionAccept},
		{name: "boundary values pass", report: report(70, 40, true), attempt: 1, expected: types.DecisionAccept},
		{name: "authenticity fails first time", report: report(69.9, 20, true), attempt: 1, expected: types.DecisionEnhance},
		{name: "machine fails first time", report: report(80, 40.1, true), attempt: 2, expected: types.DecisionEnhance},
		{name: "readability fails on last attempt", report: report(80, 20, false), attempt: 3, expected: types.DecisionEnhance},
		{name: "enhancement tried with attempts left", report: report(60, 50, true), tried: true, attempt: 2, expected: types.DecisionRegenerate},
		{name: "enhancement tried on last attempt", report: report(60, 50, true), tried: true, attempt: 3, expected: types.DecisionFail},
		{name: "no report with attempts left", report: nil, attempt: 1, expected: types.DecisionRegenerate},
		{name: "no report on last attempt", report: nil, attempt: 3, expected: types.DecisionFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decide(tt.report, testThresholds, tt.tried, tt.attempt, 3))
		})
	}
}

func TestDecide_IsPure(t *testing.T) {
	r := report(65, 45, false)
	first := Decide(r, testThresholds, false, 1, 3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Decide(r, testThresholds, false, 1, 3))
	}
	assert.Equal(t, report(65, 45, false), r)
}

func TestBestAttempt(t *testing.T) {
	scored := func(n int, auth, machine float64) types.Attempt {
		return types.Attempt{
			Number:    n,
			Candidate: &types.CandidateText{Text: "text", Attempt: n},
			Report:    report(auth, machine, true),
		}
	}

	tests := []struct {
		name     string
		history  []types.Attempt
		expected int
	}{
		{
			name:     "highest margin wins",
			history:  []types.Attempt{scored(1, 60, 50), scored(2, 65, 30), scored(3, 70, 45)},
			expected: 2,
		},
		{
			name:     "tie goes to earliest",
			history:  []types.Attempt{scored(1, 60, 40), scored(2, 70, 50), scored(3, 50, 30)},
			expected: 1,
		},
		{
			name:     "unscored attempts rank last",
			history:  []types.Attempt{{Number: 1, GenerationError: "timeout"}, scored(2, 10, 90)},
			expected: 2,
		},
		{
			name:     "nothing scored falls back to first",
			history:  []types.Attempt{{Number: 1}, {Number: 2}},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := BestAttempt(tt.history)
			require.NotNil(t, best)
			assert.Equal(t, tt.expected, best.Number)
		})
	}
}

func TestBestAttempt_Empty(t *testing.T) {
	assert.Nil(t, BestAttempt(nil))
}

func TestBestAttempt_ReturnsCopy(t *testing.T) {
	history := []types.Attempt{{Number: 1}}
	best := BestAttempt(history)
	best.Number = 99
	assert.Equal(t, 1, history[0].Number)
}
