// Package metrics exposes Prometheus instrumentation for query compilation
// and evaluation. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors registered by New.
type Metrics struct {
	// CompileTotal counts compilations by mode and outcome.
	CompileTotal *prometheus.CounterVec
	// CompileDuration is the latency of compilations.
	CompileDuration *prometheus.HistogramVec
	// EvalTotal counts executions by mode.
	EvalTotal *prometheus.CounterVec
	// IndexLookups counts index consultations by member and outcome.
	IndexLookups *prometheus.CounterVec
	// CacheLookups counts compile cache lookups by outcome.
	CacheLookups *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		CompileTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catql_compile_total",
				Help: "Total number of query compilations",
			},
			[]string{"mode", "status"},
		),
		CompileDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catql_compile_duration_seconds",
				Help:    "Query compilation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		EvalTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catql_eval_total",
				Help: "Total number of query executions",
			},
			[]string{"mode"},
		),
		IndexLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catql_index_lookups_total",
				Help: "Index consultations by member and outcome",
			},
			[]string{"member", "outcome"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catql_cache_lookups_total",
				Help: "Compile cache lookups by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveCompile records one compilation.
func (m *Metrics) ObserveCompile(mode string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.CompileTotal.WithLabelValues(mode, status(err)).Inc()
	m.CompileDuration.WithLabelValues(mode).Observe(took.Seconds())
}

// ObserveEval records one execution.
func (m *Metrics) ObserveEval(mode string) {
	if m == nil {
		return
	}
	m.EvalTotal.WithLabelValues(mode).Inc()
}

// ObserveIndex records whether an index for member produced candidates.
func (m *Metrics) ObserveIndex(member string, hit bool) {
	if m == nil {
		return
	}
	outcome := "fallback"
	if hit {
		outcome = "hit"
	}
	m.IndexLookups.WithLabelValues(member, outcome).Inc()
}

// ObserveCache records a compile cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookups.WithLabelValues(outcome).Inc()
}
