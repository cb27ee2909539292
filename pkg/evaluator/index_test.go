package evaluator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/catql/pkg/evaluator"
	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/parser"
	"github.com/sandrolain/catql/pkg/types"
)

type indexFunc func(ec *evaluator.EvalContext, each *types.Variable, node *types.ASTNode) (types.Iterator, bool)

func (f indexFunc) Candidates(ec *evaluator.EvalContext, each *types.Variable, node *types.ASTNode) (types.Iterator, bool) {
	return f(ec, each, node)
}

// provider serves a fixed set of indexes and counts lookups.
type provider struct {
	indexes map[string]evaluator.Index
	calls   int
}

func (p *provider) Index(member string) (evaluator.Index, bool) {
	p.calls++
	idx, ok := p.indexes[member]
	return idx, ok
}

func byID(all types.Slice) indexFunc {
	return func(ec *evaluator.EvalContext, each *types.Variable, node *types.ASTNode) (types.Iterator, bool) {
		probe, ok := evaluator.ProbeOf(each, node)
		if !ok || probe.Op != types.NodeEquals {
			return nil, false
		}
		id, ok := ec.Evaluate(probe.Operand).(string)
		if !ok {
			return nil, false
		}
		var out []interface{}
		for _, v := range all {
			if v.(*model.Item).ID == id {
				out = append(out, v)
			}
		}
		return types.NewSliceIterator(out), true
	}
}

func TestIndexTransparency(t *testing.T) {
	all := items(
		item("a", "1"),
		item("b", "1", req("a", "[1,2)")),
		item("a", "2"),
		item("c", "1", req("b", "1")),
	)

	declining := indexFunc(func(*evaluator.EvalContext, *types.Variable, *types.ASTNode) (types.Iterator, bool) {
		return nil, false
	})
	everything := indexFunc(func(*evaluator.EvalContext, *types.Variable, *types.ASTNode) (types.Iterator, bool) {
		return all.Iterator(), true
	})

	providers := map[string]func() *provider{
		"unrelated": func() *provider {
			return &provider{indexes: map[string]evaluator.Index{"version": everything}}
		},
		"declining": func() *provider {
			return &provider{indexes: map[string]evaluator.Index{"id": declining}}
		},
		"over-approximating": func() *provider {
			return &provider{indexes: map[string]evaluator.Index{"id": everything}}
		},
		"narrowing": func() *provider {
			return &provider{indexes: map[string]evaluator.Index{"id": byID(all)}}
		},
	}

	queries := []struct {
		q      string
		params []interface{}
	}{
		{q: `select(x | x.id == 'a')`},
		{q: `select(x | 'a' == x.id && x.version > version('1'))`},
		{q: `select(x | x.id == $0)`, params: []interface{}{"b"}},
		{q: `select(x | x.id == 'a' || x.id == 'b')`},
		{q: `exists(x | x.id == 'c')`},
		{q: `first(x | x.id == 'a')`},
		{q: `select(x | x.id == 'a').latest()`},
		{q: `select(x | x.id == 'missing')`},
		{q: `select(x | x.requires.exists(r | r.name == 'a'))`},
	}

	for _, test := range queries {
		baseline := names(query(t, test.q, all, evaluator.WithParams(test.params...)))
		for name, newProvider := range providers {
			t.Run(name+" "+test.q, func(t *testing.T) {
				p := newProvider()
				got := names(query(t, test.q, all, evaluator.WithParams(test.params...), evaluator.WithIndexProvider(p)))
				assert.Equal(t, baseline, got)
			})
		}
	}
}

func TestIndexConsulted(t *testing.T) {
	all := items(item("a", "1"), item("b", "1"))
	p := &provider{indexes: map[string]evaluator.Index{"id": byID(all)}}

	got := names(query(t, `select(x | x.id == 'b')`, all, evaluator.WithIndexProvider(p)))
	assert.Equal(t, []interface{}{"b/1.0.0"}, got)
	assert.Equal(t, 1, p.calls)

	// The disjunction is not a top-level conjunct.
	p.calls = 0
	query(t, `select(x | x.id == 'a' || x.id == 'b')`, all, evaluator.WithIndexProvider(p))
	assert.Equal(t, 0, p.calls)
}

func TestIndexesDisabled(t *testing.T) {
	all := items(item("a", "1"), item("b", "1"))
	p := &provider{indexes: map[string]evaluator.Index{"id": byID(all)}}

	expr, err := parser.ParseQuery(`select(x | x.id == 'b')`)
	require.NoError(t, err)
	res, err := evaluator.New(evaluator.WithIndexes(false)).Query(context.Background(), expr, all, evaluator.WithIndexProvider(p))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"b/1.0.0"}, names(res.Slice()))
	assert.Equal(t, 0, p.calls)
}

func TestSelectUsesIndex(t *testing.T) {
	all := items(item("a", "1"), item("b", "1"), item("a", "1"))
	p := &provider{indexes: map[string]evaluator.Index{"id": byID(all)}}

	expr, err := parser.ParsePredicate(`id == 'a'`)
	require.NoError(t, err)
	res, err := evaluator.New().Select(context.Background(), expr, all, evaluator.WithIndexProvider(p))
	require.NoError(t, err)
	// Distinct pointers with equal fields are distinct elements.
	assert.Len(t, res.Slice(), 2)
	assert.Equal(t, 1, p.calls)
}

func TestProbeOf(t *testing.T) {
	expr, err := parser.ParseQuery(`select(x | x.id == 'a' && $0 == x.version && x ~= $1 && x.id == x.version && x.name(1) == 2)`)
	require.NoError(t, err)
	lambda := expr.AST().RHS
	var got []string
	for _, c := range types.Conjuncts(lambda.RHS) {
		if p, ok := evaluator.ProbeOf(lambda.Variable, c); ok {
			got = append(got, p.Member)
		}
	}
	assert.Equal(t, []string{"id", "version", evaluator.MemberProvidedCapabilities}, got)
}
