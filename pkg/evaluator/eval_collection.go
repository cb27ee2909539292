package evaluator

import (
	"reflect"

	"github.com/sandrolain/catql/pkg/model"
	"github.com/sandrolain/catql/pkg/types"
)

// Collection operators return lazy types.Iterable values. Every call to
// Iterator starts a new pass that pulls its source again, so the same result
// can be consumed several times, for example as a curried lambda value.

// toIterable reports whether v is a collection and returns it as an Iterable.
func toIterable(v interface{}) (types.Iterable, bool) {
	switch x := v.(type) {
	case types.Iterable:
		return x, true
	case []interface{}:
		return types.Slice(x), true
	}
	return nil, false
}

// sequence returns v as a collection. Values that are not collections are
// empty.
func sequence(v interface{}) types.Iterable {
	if seq, ok := toIterable(v); ok {
		return seq
	}
	return types.Slice(nil)
}

// valueSequence returns the elements of a query result: a collection yields
// its elements, undefined yields nothing, any other value yields itself.
func valueSequence(v interface{}) types.Iterable {
	if seq, ok := toIterable(v); ok {
		return seq
	}
	if isUndefined(v) {
		return types.Slice(nil)
	}
	return types.Slice{v}
}

// lambdaScope evaluates the curried assignments of lambda once, in the
// enclosing context, and returns the context elements are bound in.
func (e *Evaluator) lambdaScope(lambda *types.ASTNode, ec *EvalContext) *EvalContext {
	scope := ec
	for _, a := range lambda.Assignments {
		v := e.evalNode(a.Value, ec)
		if seq, ok := v.(types.Iterable); ok {
			v = types.NewRepeatable(seq.Iterator())
		}
		scope = scope.Bind(a.Variable, v)
	}
	return scope
}

// apply evaluates the lambda body with elem bound to its each variable.
func (e *Evaluator) apply(lambda *types.ASTNode, scope *EvalContext, elem interface{}) interface{} {
	return e.evalNode(lambda.RHS, scope.Bind(lambda.Variable, elem))
}

// source evaluates the source of a lambda-taking operator. When the source
// is everything, candidates may come from an index.
func (e *Evaluator) source(node *types.ASTNode, ec, scope *EvalContext) types.Iterable {
	src := sequence(e.evalNode(node.LHS, ec))
	if ec.exec.everything != nil && types.IsVariable(node.LHS, ec.exec.everything) {
		return scope.candidates(src, node.RHS.Variable, node.RHS.RHS)
	}
	return src
}

func (e *Evaluator) filter(it types.Iterator, lambda *types.ASTNode, scope *EvalContext) types.Iterator {
	return types.IteratorFunc(func() (interface{}, bool) {
		for {
			v, ok := it.Next()
			if !ok {
				return nil, false
			}
			if isTrue(e.apply(lambda, scope, v)) {
				return v, true
			}
		}
	})
}

func (e *Evaluator) evalSelect(node *types.ASTNode, ec *EvalContext) interface{} {
	lambda := node.RHS
	scope := e.lambdaScope(lambda, ec)
	src := e.source(node, ec, scope)
	return types.IterableFunc(func() types.Iterator {
		return e.filter(src.Iterator(), lambda, scope)
	})
}

// evalCollect maps each element through the lambda. An undefined result
// produces nothing, a collection result is spliced in one level deep, any
// other result produces itself.
func (e *Evaluator) evalCollect(node *types.ASTNode, ec *EvalContext) interface{} {
	lambda := node.RHS
	scope := e.lambdaScope(lambda, ec)
	src := sequence(e.evalNode(node.LHS, ec))
	return types.IterableFunc(func() types.Iterator {
		it := src.Iterator()
		var inner types.Iterator
		return types.IteratorFunc(func() (interface{}, bool) {
			for {
				if inner != nil {
					if v, ok := inner.Next(); ok {
						return v, true
					}
					inner = nil
				}
				elem, ok := it.Next()
				if !ok {
					return nil, false
				}
				v := e.apply(lambda, scope, elem)
				if isUndefined(v) {
					continue
				}
				if seq, ok := toIterable(v); ok {
					inner = seq.Iterator()
					continue
				}
				return v, true
			}
		})
	})
}

func (e *Evaluator) evalExists(node *types.ASTNode, ec *EvalContext) interface{} {
	lambda := node.RHS
	scope := e.lambdaScope(lambda, ec)
	_, found := e.filter(e.source(node, ec, scope).Iterator(), lambda, scope).Next()
	return found
}

func (e *Evaluator) evalAll(node *types.ASTNode, ec *EvalContext) interface{} {
	lambda := node.RHS
	scope := e.lambdaScope(lambda, ec)
	it := sequence(e.evalNode(node.LHS, ec)).Iterator()
	for {
		v, ok := it.Next()
		if !ok {
			return true
		}
		if !isTrue(e.apply(lambda, scope, v)) {
			return false
		}
	}
}

// evalFirst returns the first matching element, or undefined.
func (e *Evaluator) evalFirst(node *types.ASTNode, ec *EvalContext) interface{} {
	lambda := node.RHS
	scope := e.lambdaScope(lambda, ec)
	v, _ := e.filter(e.source(node, ec, scope).Iterator(), lambda, scope).Next()
	return v
}

// evalTraverse yields the source elements followed by everything reachable
// from them through the lambda, breadth first. Each element is yielded once.
func (e *Evaluator) evalTraverse(node *types.ASTNode, ec *EvalContext) interface{} {
	lambda := node.RHS
	scope := e.lambdaScope(lambda, ec)
	src := sequence(e.evalNode(node.LHS, ec))
	return types.IterableFunc(func() types.Iterator {
		seeds := src.Iterator()
		visited := make(map[interface{}]struct{})
		var queue, pending []interface{}

		visit := func(v interface{}) bool {
			id := identity(v)
			if _, seen := visited[id]; seen {
				return false
			}
			visited[id] = struct{}{}
			queue = append(queue, v)
			return true
		}

		return types.IteratorFunc(func() (interface{}, bool) {
			for {
				if len(pending) > 0 {
					v := pending[0]
					pending = pending[1:]
					return v, true
				}
				if seeds != nil {
					v, ok := seeds.Next()
					if !ok {
						seeds = nil
						continue
					}
					if !isUndefined(v) && visit(v) {
						return v, true
					}
					continue
				}
				if len(queue) == 0 {
					return nil, false
				}
				next := queue[0]
				queue = queue[1:]

				related := valueSequence(e.apply(lambda, scope, next)).Iterator()
				for {
					r, ok := related.Next()
					if !ok {
						break
					}
					if !isUndefined(r) && visit(r) {
						pending = append(pending, r)
					}
				}
			}
		})
	})
}

type latestKey struct {
	typ reflect.Type
	key string
}

// evalLatest keeps, per identity key, the elements with the greatest
// version. Ties are all kept. Groups appear in order of first occurrence and
// elements keep their source order. Elements without an identity are
// dropped.
func (e *Evaluator) evalLatest(node *types.ASTNode, ec *EvalContext) interface{} {
	src := sequence(e.evalNode(node.LHS, ec))
	return types.IterableFunc(func() types.Iterator {
		var out types.Iterator
		return types.IteratorFunc(func() (interface{}, bool) {
			if out == nil {
				out = types.NewSliceIterator(latestOf(src.Iterator()))
			}
			return out.Next()
		})
	})
}

func latestOf(it types.Iterator) []interface{} {
	type group struct {
		best  model.Version
		elems []interface{}
	}
	groups := make(map[latestKey]*group)
	var order []latestKey

	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		vv, ok := v.(model.Versioned)
		if !ok {
			continue
		}
		key := latestKey{typ: reflect.TypeOf(v), key: vv.IdentityKey()}
		ver := vv.VersionOf()
		g, found := groups[key]
		if !found {
			groups[key] = &group{best: ver, elems: []interface{}{v}}
			order = append(order, key)
			continue
		}
		switch c := ver.Compare(g.best); {
		case c > 0:
			g.best = ver
			g.elems = []interface{}{v}
		case c == 0:
			g.elems = append(g.elems, v)
		}
	}

	var out []interface{}
	for _, k := range order {
		out = append(out, groups[k].elems...)
	}
	return out
}

// evalFlatten splices collection elements one level deep. Other elements
// are passed through and undefined ones are dropped.
func (e *Evaluator) evalFlatten(node *types.ASTNode, ec *EvalContext) interface{} {
	src := sequence(e.evalNode(node.LHS, ec))
	return types.IterableFunc(func() types.Iterator {
		it := src.Iterator()
		var inner types.Iterator
		return types.IteratorFunc(func() (interface{}, bool) {
			for {
				if inner != nil {
					if v, ok := inner.Next(); ok {
						return v, true
					}
					inner = nil
				}
				v, ok := it.Next()
				if !ok {
					return nil, false
				}
				if isUndefined(v) {
					continue
				}
				if seq, ok := toIterable(v); ok {
					inner = seq.Iterator()
					continue
				}
				return v, true
			}
		})
	})
}

// evalLimit yields at most n elements and never pulls more than that from
// its source. A non-positive or non-numeric count is empty.
func (e *Evaluator) evalLimit(node *types.ASTNode, ec *EvalContext) interface{} {
	n, ok := toInt(e.evalNode(node.RHS, ec))
	if !ok || n <= 0 {
		return types.Slice(nil)
	}
	src := sequence(e.evalNode(node.LHS, ec))
	return types.IterableFunc(func() types.Iterator {
		var it types.Iterator
		var taken int64
		return types.IteratorFunc(func() (interface{}, bool) {
			if taken >= n {
				return nil, false
			}
			if it == nil {
				it = src.Iterator()
			}
			v, ok := it.Next()
			if !ok {
				taken = n
				return nil, false
			}
			taken++
			return v, true
		})
	})
}

// evalUnique drops elements whose key was already seen. Without a key
// expression the element is its own key.
func (e *Evaluator) evalUnique(node *types.ASTNode, ec *EvalContext) interface{} {
	key := node.RHS
	src := sequence(e.evalNode(node.LHS, ec))
	return types.IterableFunc(func() types.Iterator {
		it := src.Iterator()
		seen := make(map[interface{}]struct{})
		return types.IteratorFunc(func() (interface{}, bool) {
			for {
				v, ok := it.Next()
				if !ok {
					return nil, false
				}
				k := v
				if key != nil {
					k = e.apply(key, ec, v)
				}
				id := identity(k)
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				return v, true
			}
		})
	})
}
