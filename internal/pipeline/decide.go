package pipeline

import "github.com/jonathan/persona-authenticity/internal/types"

// Passes reports whether a report meets every threshold.
func Passes(r *types.ScoreReport, t types.Thresholds) bool {
	return r != nil && len(r.FailedAxes(t)) == 0
}

// Decide is the pure decision policy for one attempt.
//
//   - Accept when every threshold passes.
//   - Enhance when enhancement has not been tried on this attempt.
//   - Regenerate while attempts remain.
//   - Fail otherwise.
//
// An attempt without a scored candidate can only regenerate or fail.
func Decide(r *types.ScoreReport, t types.Thresholds, enhancementTried bool, attempt, maxAttempts int) types.Decision {
	if r != nil {
		if Passes(r, t) {
			return types.DecisionAccept
		}
		if !enhancementTried {
			return types.DecisionEnhance
		}
	}
	if attempt < maxAttempts {
		return types.DecisionRegenerate
	}
	return types.DecisionFail
}

// BestAttempt picks the attempt with the highest authenticity minus machine-likelihood
// margin. Ties go to the earlier attempt and unscored attempts rank last; with no scored
// attempt the first one is returned.
func BestAttempt(history []types.Attempt) *types.Attempt {
	if len(history) == 0 {
		return nil
	}
	best := -1
	for i := range history {
		if !history[i].Scored() {
			continue
		}
		if best < 0 || history[i].Report.Margin() > history[best].Report.Margin() {
			best = i
		}
	}
	if best < 0 {
		best = 0
	}
	a := history[best]
	return &a
}
