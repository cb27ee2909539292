package evaluator

import (
	"context"
	"sync"

	"github.com/sandrolain/catql/pkg/types"
)

// execution is the state shared by every EvalContext of one Match, Query or
// Select call.
type execution struct {
	ctx     context.Context
	params  []interface{}
	named   map[string]interface{}
	indexes IndexProvider

	// everything is the root variable of a context query, nil otherwise.
	everything *types.Variable

	mu  sync.Mutex
	err error
}

// Err returns the error that stopped a scan, if any.
func (x *execution) Err() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.err
}

func (x *execution) fail(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err == nil {
		x.err = err
	}
}

// guard wraps src so that iteration stops once the execution context is
// done. The context error is recorded and reported by Result.Err.
func (x *execution) guard(src types.Iterable) types.Iterable {
	return types.IterableFunc(func() types.Iterator {
		return x.guardIterator(src.Iterator())
	})
}

func (x *execution) guardIterator(it types.Iterator) types.Iterator {
	return types.IteratorFunc(func() (interface{}, bool) {
		if err := x.ctx.Err(); err != nil {
			x.fail(err)
			return nil, false
		}
		return it.Next()
	})
}

// frame is one variable binding. Frames form an immutable linked list, so a
// child context never affects its parent or its siblings.
type frame struct {
	variable *types.Variable
	value    interface{}
	next     *frame
}

// EvalContext holds the variable bindings visible to one evaluation.
// Contexts are immutable: Bind returns a new context.
type EvalContext struct {
	evaluator *Evaluator
	exec      *execution
	env       *frame
}

func newContext(e *Evaluator, exec *execution) *EvalContext {
	return &EvalContext{evaluator: e, exec: exec}
}

// Bind returns a child context in which v is bound to value.
func (c *EvalContext) Bind(v *types.Variable, value interface{}) *EvalContext {
	return &EvalContext{
		evaluator: c.evaluator,
		exec:      c.exec,
		env:       &frame{variable: v, value: value, next: c.env},
	}
}

// Lookup returns the value bound to v.
func (c *EvalContext) Lookup(v *types.Variable) (interface{}, bool) {
	for f := c.env; f != nil; f = f.next {
		if f.variable == v {
			return f.value, true
		}
	}
	return nil, false
}

// Context returns the context.Context of the execution.
func (c *EvalContext) Context() context.Context {
	return c.exec.ctx
}

// Param returns a bound parameter. key is an int for positional parameters
// and a string for keyed ones.
func (c *EvalContext) Param(key interface{}) (interface{}, bool) {
	switch k := key.(type) {
	case int:
		if k >= 0 && k < len(c.exec.params) {
			return c.exec.params[k], true
		}
	case string:
		v, ok := c.exec.named[k]
		return v, ok
	}
	return nil, false
}

// Evaluate evaluates node in this context. Values that cannot be computed
// evaluate to nil rather than failing.
func (c *EvalContext) Evaluate(node *types.ASTNode) interface{} {
	return c.evaluator.evalNode(node, c)
}
