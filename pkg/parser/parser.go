// Package parser compiles catalog queries into immutable ASTs.
//
// The parser is a hand-written recursive descent parser over the token
// stream produced by Lexer. It resolves lambda variables against a scope
// stack while parsing, so the resulting AST refers to binding sites directly
// and never needs name lookups at evaluation time.
//
// # Example
//
//	match, err := parser.ParsePredicate(`id == "org.example" && version >= version('1.0')`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	query, err := parser.ParseQuery(`select(x | x.id ~= /org.example.*/).latest()`)
//
// # Concurrency
//
// A Parser holds mutable cursor and scope state and must not be shared.
// ParsePredicate and ParseQuery create a fresh Parser per call and are safe
// for concurrent use. The returned expressions are immutable.
package parser

import (
	"github.com/sandrolain/catql/pkg/functions"
	"github.com/sandrolain/catql/pkg/types"
)

// Root variable names.
const (
	// ItemVariable is the root of match queries.
	ItemVariable = "item"
	// EverythingVariable is the root of context queries.
	EverythingVariable = "everything"
)

// ParsePredicate compiles a match query, evaluated against one candidate
// bound to the root variable "item".
//
// Example:
//
//	expr, err := parser.ParsePredicate(`id == $0`)
//	if err != nil {
//	    var qerr *types.Error
//	    if errors.As(err, &qerr) {
//	        fmt.Printf("syntax error at position %d\n", qerr.Position)
//	    }
//	}
func ParsePredicate(query string, opts ...CompileOption) (*types.MatchExpression, error) {
	return NewParser(query, opts...).ParsePredicate()
}

// ParseQuery compiles a context query, evaluated against everything bound to
// the root variable "everything".
func ParseQuery(query string, opts ...CompileOption) (*types.ContextExpression, error) {
	return NewParser(query, opts...).ParseQuery()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits expression nesting to prevent stack overflow.
	MaxDepth int
	// Functions resolves function calls; nil means built-ins only.
	Functions *functions.Table
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}

// WithFunctions makes additional functions callable from the query.
// They shadow built-ins of the same name.
func WithFunctions(defs ...functions.Def) CompileOption {
	return func(opts *CompileOptions) {
		if opts.Functions == nil {
			opts.Functions = &functions.Table{}
		}
		for _, d := range defs {
			opts.Functions.Add(d)
		}
	}
}
