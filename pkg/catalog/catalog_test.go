package catalog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/catql/pkg/catalog"
	"github.com/sandrolain/catql/pkg/evaluator"
	"github.com/sandrolain/catql/pkg/metrics"
	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/parser"
	"github.com/sandrolain/catql/pkg/types"
)

const fixture = `
items:
  - id: a
    version: 1.0.0
  - id: b
    version: 1.0
    requires:
      - name: a
        range: "[1,2)"
  - id: a
    version: "2.0.0"
    provides:
      - namespace: pkg
        name: util
        version: 2.0.0
  - id: c
    version: 1.0.0
    requires:
      - namespace: pkg
        name: util
`

func load(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(strings.NewReader(fixture))
	require.NoError(t, err)
	return cat
}

func names(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.(*model.Item).String()
	}
	return out
}

func TestLoad(t *testing.T) {
	cat := load(t)
	require.Equal(t, 4, cat.Len())

	all := cat.Items()
	assert.Equal(t, []string{"a/1.0.0", "b/1.0.0", "a/2.0.0", "c/1.0.0"},
		names(types.Collect(cat.Iterator())))

	b := all[1]
	require.Len(t, b.Requires, 1)
	assert.Equal(t, model.NamespaceItem, b.Requires[0].Namespace)
	assert.Equal(t, "[1.0.0,2.0.0)", b.Requires[0].Range.String())

	c := all[3]
	require.Len(t, c.Requires, 1)
	assert.Equal(t, model.AnyVersion, c.Requires[0].Range)
	assert.True(t, all[2].Satisfies(c.Requires[0]))
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"json list", `[{"id": "x", "version": "1.2"}, {"id": "y"}]`, []string{"x/1.2.0", "y/0.0.0"}},
		{"yaml list", "- id: x\n  version: 3\n", []string{"x/3.0.0"}},
		{"json document", `{"items": [{"id": "x", "version": "1"}]}`, []string{"x/1.0.0"}},
		{"empty", "", []string{}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cat, err := catalog.Load(strings.NewReader(test.input))
			require.NoError(t, err)
			got := names(types.Collect(cat.Iterator()))
			assert.Equal(t, test.want, got)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing id", "- version: 1\n", "missing id"},
		{"scalar", "42\n", "expected a list"},
		{"bad version", "- id: x\n  version: a.b\n", "decode"},
		{"bad range", "- id: x\n  requires:\n    - name: y\n      range: \"[2,1)\"\n", "decode"},
		{"malformed", "- id: [\n", "decode"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := catalog.Load(strings.NewReader(test.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.want)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := catalog.LoadFile("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestIteratorSnapshot(t *testing.T) {
	cat := catalog.New(&model.Item{ID: "a"})
	it := cat.Iterator()
	cat.Add(&model.Item{ID: "b"}, nil)

	assert.Len(t, types.Collect(it), 1)
	assert.Equal(t, 2, cat.Len())
}

func TestIndex(t *testing.T) {
	cat := catalog.New()
	_, ok := cat.Index("id")
	assert.True(t, ok)
	_, ok = cat.Index(evaluator.MemberProvidedCapabilities)
	assert.True(t, ok)
	_, ok = cat.Index("version")
	assert.False(t, ok)
}

func TestQueriesUseIndexes(t *testing.T) {
	cat := load(t)
	plain := types.Slice(nil)
	for _, it := range cat.Items() {
		plain = append(plain, it)
	}

	tests := []struct {
		name   string
		query  string
		params []interface{}
		member string
		want   []string
	}{
		{
			name:   "by id",
			query:  `select(x | x.id == 'a')`,
			member: "id",
			want:   []string{"a/1.0.0", "a/2.0.0"},
		},
		{
			name:   "first by id keeps catalog order",
			query:  `first(x | x.id == 'a')`,
			member: "id",
			want:   []string{"a/1.0.0"},
		},
		{
			name:   "by capability",
			query:  `select(x | x ~= requirement('pkg', 'util'))`,
			member: evaluator.MemberProvidedCapabilities,
			want:   []string{"a/2.0.0"},
		},
		{
			name:   "by parameter",
			query:  `select(x | x ~= $0 && x.version >= version('2'))`,
			params: []interface{}{model.Requirement{Namespace: model.NamespaceItem, Name: "a", Range: model.AnyVersion}},
			member: evaluator.MemberProvidedCapabilities,
			want:   []string{"a/2.0.0"},
		},
		{
			name:   "by provided capabilities member",
			query:  `select(x | x.providedCapabilities ~= requirement('catalog.item', 'b', '[1,2)'))`,
			member: evaluator.MemberProvidedCapabilities,
			want:   []string{"b/1.0.0"},
		},
		{
			name:   "requirement closure",
			query:  `select(x | x.id == 'b').traverse(p | p.requires.collect(r | everything.select(y | y ~= r)))`,
			member: evaluator.MemberProvidedCapabilities,
			want:   []string{"b/1.0.0", "a/1.0.0"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			ev := evaluator.New(evaluator.WithMetrics(m))
			expr, err := parser.ParseQuery(test.query)
			require.NoError(t, err)

			res, err := ev.Query(context.Background(), expr, cat,
				evaluator.WithIndexProvider(cat), evaluator.WithParams(test.params...))
			require.NoError(t, err)
			assert.Equal(t, test.want, names(res.Slice()))
			assert.GreaterOrEqual(t, testutil.ToFloat64(m.IndexLookups.WithLabelValues(test.member, "hit")), 1.0)

			res, err = evaluator.New().Query(context.Background(), expr, plain, evaluator.WithParams(test.params...))
			require.NoError(t, err)
			assert.Equal(t, test.want, names(res.Slice()))
		})
	}
}
