// Package evaluator implements the catalog query evaluation engine.
//
// The evaluator receives a compiled expression from the parser and evaluates
// it either against one candidate (match queries) or against an iterable of
// everything (context queries). It supports:
//   - Short-circuit logic and relational operators over numbers, strings
//     and versions
//   - Member access dispatched through a closed table per value kind
//   - Lazy collection operators (select, collect, traverse, latest, limit...)
//   - Index-assisted narrowing of scans over everything
//   - Cancellation of full scans via context.Context
//
// # Example
//
//	ev := evaluator.New()
//	ok, err := ev.Match(ctx, predicate, item)
//
//	res, err := ev.Query(ctx, query, catalog, evaluator.WithIndexProvider(catalog))
//	for _, v := range res.Slice() {
//	    fmt.Println(v)
//	}
//
// # Failure semantics
//
// Type mismatches never abort evaluation: comparing incomparable values is
// false, accessing an unknown member yields a value that is false and empty,
// and a failing function call yields undefined. A single malformed candidate
// therefore never aborts a scan.
//
// # Concurrency
//
// An Evaluator is immutable and safe for concurrent use. Every Match, Query
// and Select call gets its own EvalContext.
package evaluator

import (
	"context"
	"log/slog"

	"github.com/sandrolain/catql/pkg/metrics"
	"github.com/sandrolain/catql/pkg/types"
)

// Evaluator evaluates compiled queries.
type Evaluator struct {
	opts    EvalOptions
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Logger for structured logging.
	Logger *slog.Logger
	// Metrics records evaluations and index lookups. May be nil.
	Metrics *metrics.Metrics
	// Indexes enables the index fast path when an IndexProvider is supplied.
	Indexes bool
}

// EvalOption configures an Evaluator.
type EvalOption func(*EvalOptions)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) EvalOption {
	return func(opts *EvalOptions) {
		opts.Metrics = m
	}
}

// WithIndexes enables or disables index-assisted evaluation.
func WithIndexes(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Indexes = enabled
	}
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Indexes: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Evaluator{
		opts:    options,
		logger:  options.Logger,
		metrics: options.Metrics,
	}
}

// ExecOption configures one execution.
type ExecOption func(*execOptions)

type execOptions struct {
	params  []interface{}
	named   map[string]interface{}
	indexes IndexProvider
}

// WithParams binds positional parameters $0, $1, ...
func WithParams(params ...interface{}) ExecOption {
	return func(o *execOptions) {
		o.params = params
	}
}

// WithNamedParams binds keyed parameters ($name).
func WithNamedParams(params map[string]interface{}) ExecOption {
	return func(o *execOptions) {
		o.named = params
	}
}

// WithIndexProvider supplies indexes over everything for context queries.
func WithIndexProvider(p IndexProvider) ExecOption {
	return func(o *execOptions) {
		o.indexes = p
	}
}

func (e *Evaluator) newExecution(ctx context.Context, opts []ExecOption) *execution {
	var o execOptions
	for _, opt := range opts {
		opt(&o)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !e.opts.Indexes {
		o.indexes = nil
	}
	return &execution{
		ctx:     ctx,
		params:  o.params,
		named:   o.named,
		indexes: o.indexes,
	}
}

func invalid(expr *types.Expression) error {
	if expr == nil || expr.AST() == nil {
		return types.NewError(types.ErrInvalidExpression, "invalid expression", -1)
	}
	return nil
}

// Match evaluates a predicate against one candidate. The result is true only
// when the predicate evaluates to the boolean true.
func (e *Evaluator) Match(ctx context.Context, expr *types.MatchExpression, candidate interface{}, opts ...ExecOption) (bool, error) {
	if expr == nil {
		return false, invalid(nil)
	}
	if err := invalid(expr.Expression); err != nil {
		return false, err
	}
	e.metrics.ObserveEval(types.ModeMatch.String())

	exec := e.newExecution(ctx, opts)
	ec := newContext(e, exec).Bind(expr.Root(), candidate)
	v := ec.Evaluate(expr.AST())
	if err := exec.Err(); err != nil {
		return false, err
	}
	return isTrue(v), nil
}

// Query evaluates a context query against everything. The result preserves
// order and duplicates.
func (e *Evaluator) Query(ctx context.Context, expr *types.ContextExpression, everything types.Iterable, opts ...ExecOption) (*Result, error) {
	if expr == nil {
		return nil, invalid(nil)
	}
	if err := invalid(expr.Expression); err != nil {
		return nil, err
	}
	if everything == nil {
		everything = types.Slice(nil)
	}
	e.metrics.ObserveEval(types.ModeContext.String())

	exec := e.newExecution(ctx, opts)
	exec.everything = expr.Root()
	ec := newContext(e, exec).Bind(expr.Root(), exec.guard(everything))
	v := ec.Evaluate(expr.AST())
	if err := exec.Err(); err != nil {
		return nil, err
	}
	return newResult(valueSequence(v), exec, false), nil
}

// Select returns the elements of everything that satisfy the predicate,
// deduplicated. Candidates are narrowed through the index provider when the
// predicate tests an indexed member.
func (e *Evaluator) Select(ctx context.Context, expr *types.MatchExpression, everything types.Iterable, opts ...ExecOption) (*Result, error) {
	if expr == nil {
		return nil, invalid(nil)
	}
	if err := invalid(expr.Expression); err != nil {
		return nil, err
	}
	if everything == nil {
		everything = types.Slice(nil)
	}
	e.metrics.ObserveEval(types.ModeMatch.String())

	exec := e.newExecution(ctx, opts)
	ec := newContext(e, exec)
	source := ec.candidates(exec.guard(everything), expr.Root(), expr.AST())
	filtered := types.IterableFunc(func() types.Iterator {
		it := source.Iterator()
		return types.IteratorFunc(func() (interface{}, bool) {
			for {
				v, ok := it.Next()
				if !ok {
					return nil, false
				}
				if isTrue(ec.Bind(expr.Root(), v).Evaluate(expr.AST())) {
					return v, true
				}
			}
		})
	})
	return newResult(filtered, exec, true), nil
}

func (e *Evaluator) debug(msg string, args ...interface{}) {
	e.logger.Debug(msg, args...)
}
