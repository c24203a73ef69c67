package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "persona_authenticity"

var (
	metricAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attempts_total",
		Help:      "Attempts completed, by decision.",
	}, []string{"decision"})
	metricResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "results_total",
		Help:      "Pipeline invocations finished, by status and reason.",
	}, []string{"status", "reason"})
	metricGenerationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generation_errors_total",
		Help:      "Failed generation calls, by error kind.",
	}, []string{"kind"})
	metricEnhancements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enhancements_total",
		Help:      "Enhancement outcomes: applied, rejected or noop.",
	}, []string{"outcome"})
	metricScores = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "candidate_score",
		Help:      "Scores of generated candidates, by axis.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	}, []string{"axis"})
	metricAttemptDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "attempt_duration_seconds",
		Help:      "Wall time of one generate-score-decide cycle.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})
)

// RecordAttempt counts a finished attempt and its duration.
func RecordAttempt(decision string, seconds float64) {
	metricAttempts.WithLabelValues(decision).Inc()
	metricAttemptDuration.Observe(seconds)
}

// RecordResult counts a finished invocation
func RecordResult(status, reason string) {
	metricResults.WithLabelValues(status, reason).Inc()
}

// RecordGenerationError counts a failed generation call
func RecordGenerationError(kind string) {
	metricGenerationErrors.WithLabelValues(kind).Inc()
}

// RecordEnhancement counts an enhancement outcome
func RecordEnhancement(outcome string) {
	metricEnhancements.WithLabelValues(outcome).Inc()
}

// ObserveScores records a candidate's authenticity and machine-likelihood scores.
func ObserveScores(authenticity, machine float64) {
	metricScores.WithLabelValues("authenticity").Observe(authenticity)
	metricScores.WithLabelValues("machine_likelihood").Observe(machine)
}

// MetricsHandler serves the default registry in the Prometheus text format.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
