// Package catql provides a query language over catalogs of versioned items.
//
// Queries come in two modes:
//   - Match queries are predicates evaluated against one candidate, bound to
//     the implicit variable item.
//   - Context queries are evaluated against the whole candidate set, bound
//     to the implicit variable everything, and yield a collection.
//
// # Quick Start
//
//	// Test one item
//	ok, err := catql.Match(ctx, `id == $0 && version >= version('1.0')`, item, "org.example")
//
//	// Query a catalog
//	cat, err := catalog.LoadFile("items.yaml")
//	res, err := catql.Query(ctx, `select(x | x.id ~= /org.*/).latest()`, cat)
//	for _, v := range res.Slice() {
//	    fmt.Println(v)
//	}
//
// Compiled queries are cached by mode and source. Use New to configure a
// separate Engine with its own cache, logger and metrics.
//
// # More Information
//
//   - Parser: github.com/sandrolain/catql/pkg/parser
//   - Evaluator: github.com/sandrolain/catql/pkg/evaluator
//   - Functions: github.com/sandrolain/catql/pkg/functions
//   - Catalog: github.com/sandrolain/catql/pkg/catalog
package catql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandrolain/catql/pkg/cache"
	"github.com/sandrolain/catql/pkg/evaluator"
	"github.com/sandrolain/catql/pkg/functions"
	"github.com/sandrolain/catql/pkg/metrics"
	"github.com/sandrolain/catql/pkg/parser"
	"github.com/sandrolain/catql/pkg/types"
)

// Version returns the current version of catql.
func Version() string {
	return "v0.1.0-dev"
}

// Engine compiles and evaluates queries. It is safe for concurrent use.
type Engine struct {
	cache   *cache.Cache
	eval    *evaluator.Evaluator
	metrics *metrics.Metrics
	logger  *slog.Logger
	compile []parser.CompileOption
}

type options struct {
	cacheSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
	indexes   bool
	funcs     []functions.Def
	maxDepth  int
}

// Option configures an Engine.
type Option func(*options)

// WithCacheSize sets the number of compiled queries kept.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithLogger sets the logger used for compilation and evaluation.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records compilations, evaluations and cache lookups on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithIndexes enables or disables index-assisted evaluation.
func WithIndexes(enabled bool) Option {
	return func(o *options) { o.indexes = enabled }
}

// WithFunctions makes additional functions callable from queries.
func WithFunctions(defs ...functions.Def) Option {
	return func(o *options) { o.funcs = append(o.funcs, defs...) }
}

// WithMaxDepth limits expression nesting.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	o := options{
		cacheSize: cache.DefaultCapacity,
		indexes:   true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	var compile []parser.CompileOption
	if len(o.funcs) > 0 {
		compile = append(compile, parser.WithFunctions(o.funcs...))
	}
	if o.maxDepth > 0 {
		compile = append(compile, parser.WithMaxDepth(o.maxDepth))
	}

	return &Engine{
		cache: cache.New(o.cacheSize, cache.WithMetrics(o.metrics)),
		eval: evaluator.New(
			evaluator.WithLogger(o.logger),
			evaluator.WithMetrics(o.metrics),
			evaluator.WithIndexes(o.indexes),
		),
		metrics: o.metrics,
		logger:  o.logger,
		compile: compile,
	}
}

func (e *Engine) get(mode types.Mode, query string, compile func() (*types.Expression, error)) (*types.Expression, error) {
	return e.cache.GetOrCompile(mode, query, func() (*types.Expression, error) {
		start := time.Now()
		expr, err := compile()
		e.metrics.ObserveCompile(mode.String(), time.Since(start), err)
		if err != nil {
			e.logger.Debug("compile failed", "mode", mode.String(), "query", query, "error", err)
		}
		return expr, err
	})
}

// ParsePredicate compiles a match query.
func (e *Engine) ParsePredicate(query string) (*types.MatchExpression, error) {
	expr, err := e.get(types.ModeMatch, query, func() (*types.Expression, error) {
		m, err := parser.ParsePredicate(query, e.compile...)
		if err != nil {
			return nil, err
		}
		return m.Expression, nil
	})
	if err != nil {
		return nil, err
	}
	return &types.MatchExpression{Expression: expr}, nil
}

// ParseQuery compiles a context query.
func (e *Engine) ParseQuery(query string) (*types.ContextExpression, error) {
	expr, err := e.get(types.ModeContext, query, func() (*types.Expression, error) {
		c, err := parser.ParseQuery(query, e.compile...)
		if err != nil {
			return nil, err
		}
		return c.Expression, nil
	})
	if err != nil {
		return nil, err
	}
	return &types.ContextExpression{Expression: expr}, nil
}

// Match compiles predicate and evaluates it against candidate with params
// bound to $0, $1, ...
func (e *Engine) Match(ctx context.Context, predicate string, candidate interface{}, params ...interface{}) (bool, error) {
	expr, err := e.ParsePredicate(predicate)
	if err != nil {
		return false, err
	}
	ok, err := e.eval.Match(ctx, expr, candidate, evaluator.WithParams(params...))
	if err != nil {
		return false, fmt.Errorf("catql: match %q: %w", predicate, err)
	}
	return ok, nil
}

// Query compiles query and evaluates it against everything. When
// everything is also an evaluator.IndexProvider its indexes are used.
func (e *Engine) Query(ctx context.Context, query string, everything types.Iterable, params ...interface{}) (*evaluator.Result, error) {
	expr, err := e.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	res, err := e.eval.Query(ctx, expr, everything, execOptions(everything, params)...)
	if err != nil {
		return nil, fmt.Errorf("catql: query %q: %w", query, err)
	}
	return res, nil
}

// Select returns the distinct elements of everything that satisfy
// predicate.
func (e *Engine) Select(ctx context.Context, predicate string, everything types.Iterable, params ...interface{}) (*evaluator.Result, error) {
	expr, err := e.ParsePredicate(predicate)
	if err != nil {
		return nil, err
	}
	res, err := e.eval.Select(ctx, expr, everything, execOptions(everything, params)...)
	if err != nil {
		return nil, fmt.Errorf("catql: select %q: %w", predicate, err)
	}
	return res, nil
}

func execOptions(everything types.Iterable, params []interface{}) []evaluator.ExecOption {
	opts := []evaluator.ExecOption{evaluator.WithParams(params...)}
	if p, ok := everything.(evaluator.IndexProvider); ok {
		opts = append(opts, evaluator.WithIndexProvider(p))
	}
	return opts
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the Engine used by the package level functions.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

// ParsePredicate compiles a match query with the default Engine.
func ParsePredicate(query string) (*types.MatchExpression, error) {
	return Default().ParsePredicate(query)
}

// ParseQuery compiles a context query with the default Engine.
func ParseQuery(query string) (*types.ContextExpression, error) {
	return Default().ParseQuery(query)
}

// MustParsePredicate is like ParsePredicate but panics if the query cannot
// be compiled. It simplifies safe initialization of global variables.
func MustParsePredicate(query string) *types.MatchExpression {
	expr, err := ParsePredicate(query)
	if err != nil {
		panic(fmt.Sprintf("catql: ParsePredicate(%q): %v", query, err))
	}
	return expr
}

// MustParseQuery is like ParseQuery but panics if the query cannot be
// compiled.
func MustParseQuery(query string) *types.ContextExpression {
	expr, err := ParseQuery(query)
	if err != nil {
		panic(fmt.Sprintf("catql: ParseQuery(%q): %v", query, err))
	}
	return expr
}

// Match evaluates predicate against candidate with the default Engine.
func Match(ctx context.Context, predicate string, candidate interface{}, params ...interface{}) (bool, error) {
	return Default().Match(ctx, predicate, candidate, params...)
}

// Query evaluates query against everything with the default Engine.
func Query(ctx context.Context, query string, everything types.Iterable, params ...interface{}) (*evaluator.Result, error) {
	return Default().Query(ctx, query, everything, params...)
}

// Select returns the distinct elements of everything matching predicate
// with the default Engine.
func Select(ctx context.Context, predicate string, everything types.Iterable, params ...interface{}) (*evaluator.Result, error) {
	return Default().Select(ctx, predicate, everything, params...)
}
