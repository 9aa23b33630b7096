// Package metrics exposes Prometheus counters for the analysis pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	Analyses        prometheus.Counter
	Publishes       prometheus.Counter
	Superseded      prometheus.Counter
	RuleFailures    *prometheus.CounterVec
	AnalysisSeconds prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Analyses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stylesense",
			Name:      "analyses_total",
			Help:      "Analysis passes run.",
		}),
		Publishes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stylesense",
			Name:      "publishes_total",
			Help:      "Diagnostic sets published to the client.",
		}),
		Superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stylesense",
			Name:      "superseded_total",
			Help:      "Analysis results discarded because a newer revision arrived.",
		}),
		RuleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stylesense",
			Name:      "rule_failures_total",
			Help:      "Rule evaluations that failed and were skipped.",
		}, []string{"rule"}),
		AnalysisSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stylesense",
			Name:      "analysis_seconds",
			Help:      "Time spent parsing and evaluating one document revision.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
	m.Registry.MustRegister(m.Analyses, m.Publishes, m.Superseded, m.RuleFailures, m.AnalysisSeconds)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAnalysis(d time.Duration) {
	if m == nil {
		return
	}
	m.Analyses.Inc()
	m.AnalysisSeconds.Observe(d.Seconds())
}

func (m *Metrics) IncPublish() {
	if m == nil {
		return
	}
	m.Publishes.Inc()
}

func (m *Metrics) IncSuperseded() {
	if m == nil {
		return
	}
	m.Superseded.Inc()
}

func (m *Metrics) IncRuleFailure(rule string) {
	if m == nil {
		return
	}
	m.RuleFailures.WithLabelValues(rule).Inc()
}
