// Package types defines the core types shared by the parser and evaluator.
//
// This package contains type definitions for:
//   - Expression: compiled match and context queries
//   - ASTNode: Abstract Syntax Tree nodes and variable binding sites
//   - Iterator, Iterable: the lazy sequence contract
//   - Pattern: glob pattern literals
//   - Error types: structured errors with codes
package types

// Mode distinguishes match queries from context queries.
type Mode uint8

const (
	// ModeMatch expressions are evaluated against one candidate.
	ModeMatch Mode = iota + 1
	// ModeContext expressions are evaluated against everything.
	ModeContext
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeMatch:
		return "match"
	case ModeContext:
		return "context"
	default:
		return "unknown"
	}
}

// Expression represents a compiled query.
//
// An Expression is immutable after parsing and can be evaluated from many
// goroutines at once.
type Expression struct {
	ast        *ASTNode
	source     string
	root       *Variable
	mode       Mode
	parameters int
}

// NewExpression creates a new Expression from an AST. parameters is one more
// than the highest positional parameter referenced ($0 gives 1).
func NewExpression(ast *ASTNode, source string, root *Variable, mode Mode, parameters int) *Expression {
	return &Expression{
		ast:        ast,
		source:     source,
		root:       root,
		mode:       mode,
		parameters: parameters,
	}
}

// AST returns the Abstract Syntax Tree of the expression.
func (e *Expression) AST() *ASTNode {
	return e.ast
}

// Source returns the original query text.
func (e *Expression) Source() string {
	return e.source
}

// Root returns the implicit root variable (item or everything).
func (e *Expression) Root() *Variable {
	return e.root
}

// Mode reports whether this is a match or a context expression.
func (e *Expression) Mode() Mode {
	return e.mode
}

// PositionalParameters returns the number of positional parameters the
// expression expects.
func (e *Expression) PositionalParameters() int {
	return e.parameters
}

// String returns the query source.
func (e *Expression) String() string {
	return e.source
}

// MatchExpression is a predicate evaluated against a single candidate.
type MatchExpression struct {
	*Expression
}

// ContextExpression is a query evaluated against an iterable of everything.
type ContextExpression struct {
	*Expression
}
