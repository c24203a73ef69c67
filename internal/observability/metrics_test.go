package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMetrics(t *testing.T) {
	before := testutil.ToFloat64(metricAttempts.WithLabelValues("regenerate"))
	RecordAttempt("regenerate", 1.5)
	assert.Equal(t, before+1, testutil.ToFloat64(metricAttempts.WithLabelValues("regenerate")))

	before = testutil.ToFloat64(metricResults.WithLabelValues("exhausted", "cancelled"))
	RecordResult("exhausted", "cancelled")
	assert.Equal(t, before+1, testutil.ToFloat64(metricResults.WithLabelValues("exhausted", "cancelled")))

	before = testutil.ToFloat64(metricGenerationErrors.WithLabelValues("timeout"))
	RecordGenerationError("timeout")
	assert.Equal(t, before+1, testutil.ToFloat64(metricGenerationErrors.WithLabelValues("timeout")))

	before = testutil.ToFloat64(metricEnhancements.WithLabelValues("rejected"))
	RecordEnhancement("rejected")
	assert.Equal(t, before+1, testutil.ToFloat64(metricEnhancements.WithLabelValues("rejected")))

	ObserveScores(80, 20)
}

func TestMetricsHandler(t *testing.T) {
	RecordResult("accepted", "")

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "persona_authenticity_results_total")
}
