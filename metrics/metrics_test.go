package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveAnalysis(time.Millisecond)
		m.IncPublish()
		m.IncSuperseded()
		m.IncRuleFailure("x")
	})
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveAnalysis(2 * time.Millisecond)
	m.ObserveAnalysis(3 * time.Millisecond)
	m.IncPublish()
	m.IncSuperseded()
	m.IncRuleFailure("space-before-body")
	m.IncRuleFailure("space-before-body")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Analyses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Publishes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Superseded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RuleFailures.WithLabelValues("space-before-body")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.IncPublish()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "stylesense_publishes_total 1")
}
