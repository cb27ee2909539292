package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCompile("match", time.Millisecond, nil)
	m.ObserveCompile("match", time.Millisecond, errors.New("bad"))
	m.ObserveEval("context")
	m.ObserveIndex("id", true)
	m.ObserveIndex("id", false)
	m.ObserveIndex("id", true)
	m.ObserveCache(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompileTotal.WithLabelValues("match", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompileTotal.WithLabelValues("match", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvalTotal.WithLabelValues("context")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IndexLookups.WithLabelValues("id", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexLookups.WithLabelValues("id", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CompileDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCompile("match", 0, nil)
		m.ObserveEval("match")
		m.ObserveIndex("id", true)
		m.ObserveCache(true)
	})
}
