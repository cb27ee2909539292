package evaluator

import (
	"sync"

	"github.com/sandrolain/catql/pkg/types"
)

// Result is the outcome of a context query or a Select. It is lazy: elements
// are computed as they are iterated. Len and Slice materialize the result
// once and later calls reuse it.
//
// A Select result has set semantics and yields every element once. A Query
// result keeps source order and duplicates. A Result is not safe for
// concurrent use.
type Result struct {
	source types.Iterable
	exec   *execution
	unique bool
	errs   []*Result

	once  sync.Once
	items []interface{}
}

func newResult(source types.Iterable, exec *execution, unique bool) *Result {
	return &Result{source: source, exec: exec, unique: unique}
}

// Iterator returns a new pass over the result.
func (r *Result) Iterator() types.Iterator {
	if r.items != nil {
		return types.NewSliceIterator(r.items)
	}
	return r.iterate()
}

func (r *Result) iterate() types.Iterator {
	it := r.source.Iterator()
	if !r.unique {
		return it
	}
	seen := make(map[interface{}]struct{})
	return types.IteratorFunc(func() (interface{}, bool) {
		for {
			v, ok := it.Next()
			if !ok {
				return nil, false
			}
			id := identity(v)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			return v, true
		}
	})
}

// Slice materializes the result.
func (r *Result) Slice() []interface{} {
	r.once.Do(func() {
		r.items = types.Collect(r.iterate())
		if r.items == nil {
			r.items = []interface{}{}
		}
	})
	return r.items
}

// Len returns the number of elements.
func (r *Result) Len() int {
	return len(r.Slice())
}

// IsEmpty reports whether the result has no elements. It pulls at most one
// element.
func (r *Result) IsEmpty() bool {
	_, ok := r.Iterator().Next()
	return !ok
}

// Merge returns a result holding the elements of r followed by those of
// other. The merged result has set semantics if r has.
func (r *Result) Merge(other *Result) *Result {
	if other == nil {
		return r
	}
	a, b := r, other
	merged := types.IterableFunc(func() types.Iterator {
		first := a.Iterator()
		var second types.Iterator
		return types.IteratorFunc(func() (interface{}, bool) {
			if first != nil {
				if v, ok := first.Next(); ok {
					return v, true
				}
				first = nil
				second = b.Iterator()
			}
			return second.Next()
		})
	})
	return &Result{source: merged, exec: r.exec, unique: r.unique, errs: []*Result{a, b}}
}

// Err returns the error that stopped the scan early, such as a cancelled
// context. Elements yielded before the error are still valid.
func (r *Result) Err() error {
	for _, m := range r.errs {
		if err := m.Err(); err != nil {
			return err
		}
	}
	if r.exec == nil {
		return nil
	}
	return r.exec.Err()
}

// ToSlice returns the elements of r that are of type T.
func ToSlice[T any](r *Result) []T {
	var out []T
	it := r.Iterator()
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		if t, ok := v.(T); ok {
			out = append(out, t)
		}
	}
}
