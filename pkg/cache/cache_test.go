package cache_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/catql/pkg/cache"
	"github.com/sandrolain/catql/pkg/metrics"
	"github.com/sandrolain/catql/pkg/parser"
	"github.com/sandrolain/catql/pkg/types"
)

func compileMatch(src string, calls *int) func() (*types.Expression, error) {
	return func() (*types.Expression, error) {
		*calls++
		expr, err := parser.ParsePredicate(src)
		if err != nil {
			return nil, err
		}
		return expr.Expression, nil
	}
}

func TestGetOrCompile(t *testing.T) {
	c := cache.New(4)
	calls := 0

	first, err := c.GetOrCompile(types.ModeMatch, `id == 'a'`, compileMatch(`id == 'a'`, &calls))
	require.NoError(t, err)
	second, err := c.GetOrCompile(types.ModeMatch, `id == 'a'`, compileMatch(`id == 'a'`, &calls))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestModeIsPartOfKey(t *testing.T) {
	c := cache.New(4)
	src := `id == 'a'`

	m, err := parser.ParsePredicate(src)
	require.NoError(t, err)
	c.Set(m.Expression)

	_, ok := c.Get(types.ModeContext, src)
	assert.False(t, ok)
	got, ok := c.Get(types.ModeMatch, src)
	require.True(t, ok)
	assert.Same(t, m.Expression, got)
}

func TestErrorsAreNotCached(t *testing.T) {
	c := cache.New(4)
	boom := errors.New("boom")
	calls := 0
	compile := func() (*types.Expression, error) {
		calls++
		return nil, boom
	}

	_, err := c.GetOrCompile(types.ModeMatch, "x", compile)
	assert.ErrorIs(t, err, boom)
	_, err = c.GetOrCompile(types.ModeMatch, "x", compile)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, c.Len())
}

func TestEviction(t *testing.T) {
	c := cache.New(2)
	calls := 0
	for _, src := range []string{`id == 'a'`, `id == 'b'`, `id == 'c'`} {
		_, err := c.GetOrCompile(types.ModeMatch, src, compileMatch(src, &calls))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Capacity())

	_, ok := c.Get(types.ModeMatch, `id == 'a'`)
	assert.False(t, ok)

	c.Invalidate(types.ModeMatch, `id == 'c'`)
	assert.Equal(t, 1, c.Len())
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestDefaultCapacity(t *testing.T) {
	assert.Equal(t, cache.DefaultCapacity, cache.New(0).Capacity())
}

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := cache.New(4, cache.WithMetrics(m))
	calls := 0

	for i := 0; i < 3; i++ {
		_, err := c.GetOrCompile(types.ModeMatch, `id == 'a'`, compileMatch(`id == 'a'`, &calls))
		require.NoError(t, err)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}
