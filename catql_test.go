package catql_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/catql"
	"github.com/sandrolain/catql/pkg/catalog"
	"github.com/sandrolain/catql/pkg/functions"
	"github.com/sandrolain/catql/pkg/metrics"
	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/types"
)

func fixture() *catalog.Catalog {
	return catalog.New(
		&model.Item{ID: "org.a", Version: model.MustParseVersion("1.0")},
		&model.Item{ID: "org.a", Version: model.MustParseVersion("1.2")},
		&model.Item{ID: "org.b", Version: model.MustParseVersion("3.0")},
		&model.Item{ID: "com.c", Version: model.MustParseVersion("1.0")},
	)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, catql.Version())
}

func TestMatch(t *testing.T) {
	it := &model.Item{ID: "org.a", Version: model.MustParseVersion("1.5")}
	ok, err := catql.Match(context.Background(), `id == $0 && version ~= range('[1,2)')`, it, "org.a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = catql.Match(context.Background(), `id == $0`, it, "org.b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuery(t *testing.T) {
	res, err := catql.Query(context.Background(), `select(x | x.id ~= /org.*/).latest()`, fixture())
	require.NoError(t, err)

	var got []string
	for _, it := range res.Slice() {
		got = append(got, it.(*model.Item).String())
	}
	assert.Equal(t, []string{"org.a/1.2.0", "org.b/3.0.0"}, got)
}

func TestSelect(t *testing.T) {
	res, err := catql.Select(context.Background(), `id == 'org.a'`, fixture())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Len())
}

func TestSyntaxError(t *testing.T) {
	_, err := catql.ParsePredicate(`id ==`)
	require.Error(t, err)

	var qerr *types.Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, types.ErrUnexpectedEnd, qerr.Code)

	_, err = catql.Match(context.Background(), `id ==`, nil)
	assert.Error(t, err)
}

func TestMustParse(t *testing.T) {
	assert.NotNil(t, catql.MustParsePredicate(`id == 'a'`))
	assert.NotNil(t, catql.MustParseQuery(`select(x | true)`))
	assert.Panics(t, func() { catql.MustParsePredicate(`(`) })
	assert.Panics(t, func() { catql.MustParseQuery(`select(`) })
}

func TestEngineCachesCompilations(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	e := catql.New(catql.WithMetrics(m), catql.WithCacheSize(8))

	a, err := e.ParsePredicate(`id == 'a'`)
	require.NoError(t, err)
	b, err := e.ParsePredicate(`id == 'a'`)
	require.NoError(t, err)
	assert.Same(t, a.Expression, b.Expression)

	c, err := e.ParseQuery(`id == 'a'`)
	require.NoError(t, err)
	assert.NotSame(t, a.Expression, c.Expression)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompileTotal.WithLabelValues("match", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}

func TestEngineUsesCatalogIndexes(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	e := catql.New(catql.WithMetrics(m))

	res, err := e.Query(context.Background(), `select(x | x.id == 'org.b')`, fixture())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexLookups.WithLabelValues("id", "hit")))

	off := catql.New(catql.WithMetrics(metrics.New(prometheus.NewRegistry())), catql.WithIndexes(false))
	res, err = off.Query(context.Background(), `select(x | x.id == 'org.b')`, fixture())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Len())
}

func TestEngineFunctions(t *testing.T) {
	upper := functions.Def{Name: "upper", MinArgs: 1, MaxArgs: 1,
		Impl: func(args []interface{}) (interface{}, error) {
			s, ok := args[0].(string)
			if !ok {
				return nil, errors.New("upper: not a string")
			}
			return strings.ToUpper(s), nil
		}}
	e := catql.New(catql.WithFunctions(upper))

	ok, err := e.Match(context.Background(), `id == upper($0)`, &model.Item{ID: "ORG"}, "org")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngineMaxDepth(t *testing.T) {
	e := catql.New(catql.WithMaxDepth(2))
	_, err := e.ParsePredicate(`((((id == 'a'))))`)
	var qerr *types.Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, types.ErrTooDeep, qerr.Code)
}

func TestCancelledQuery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// select is lazy, so the cancellation surfaces when the result is read.
	res, err := catql.Query(ctx, `select(x | true)`, fixture())
	require.NoError(t, err)
	assert.Empty(t, res.Slice())
	assert.ErrorIs(t, res.Err(), context.Canceled)

	// exists pulls during evaluation.
	_, err = catql.Query(ctx, `exists(x | true)`, fixture())
	assert.ErrorIs(t, err, context.Canceled)
}
