package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sandrolain/catql/pkg/types"
)

// Parser implements a recursive descent parser for catalog queries.
//
// Precedence, loosest first: conditional, ||, &&, relational, !, collection
// operator chain, member/index chain, primary.
type Parser struct {
	lexer   *Lexer
	current Token
	opts    CompileOptions

	// scope is the stack of variables visible to bare identifiers,
	// innermost last. implicit is the stack of receivers for identifiers
	// that resolve to no variable.
	scope    []*types.Variable
	implicit []*types.Variable

	depth  int
	params int
	used   bool
}

// snapshot captures the parser state needed to undo a speculative parse.
type snapshot struct {
	pos     int
	current Token
	scope   int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: 100,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// ParsePredicate parses the input as a match query.
func (p *Parser) ParsePredicate() (*types.MatchExpression, error) {
	expr, err := p.parse(ItemVariable, types.ModeMatch)
	if err != nil {
		return nil, err
	}
	return &types.MatchExpression{Expression: expr}, nil
}

// ParseQuery parses the input as a context query.
func (p *Parser) ParseQuery() (*types.ContextExpression, error) {
	expr, err := p.parse(EverythingVariable, types.ModeContext)
	if err != nil {
		return nil, err
	}
	return &types.ContextExpression{Expression: expr}, nil
}

func (p *Parser) parse(rootName string, mode types.Mode) (*types.Expression, error) {
	if p.used {
		return nil, errors.New("parser: a Parser can only be used once")
	}
	p.used = true

	root := &types.Variable{Name: rootName}
	p.scope = append(p.scope, root)
	p.implicit = append(p.implicit, root)

	if p.current.Type == TokenEOF {
		return nil, p.unexpected()
	}

	node, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.unexpected()
	}

	return types.NewExpression(node, p.lexer.input, root, mode, p.params), nil
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

func (p *Parser) save() snapshot {
	return snapshot{pos: p.lexer.Pos(), current: p.current, scope: len(p.scope)}
}

func (p *Parser) restore(s snapshot) {
	p.lexer.SetPos(s.pos)
	p.current = s.current
	p.scope = p.scope[:s.scope]
}

// expect checks if the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		if p.current.Type == TokenError || p.current.Type == TokenEOF {
			return p.unexpected()
		}
		return p.error(types.ErrExpectedToken, fmt.Sprintf("expected %s but got %q", tt, p.current.Value))
	}
	p.advance()
	return nil
}

// unexpected reports the current token as out of place.
func (p *Parser) unexpected() error {
	switch p.current.Type {
	case TokenError:
		return p.lexer.Error()
	case TokenEOF:
		return p.error(types.ErrUnexpectedEnd, types.MsgUnexpectedEnd)
	default:
		return p.error(types.ErrSyntaxError, fmt.Sprintf("unexpected token %q", p.current.Value))
	}
}

// error creates a parser error at the current token.
func (p *Parser) error(code types.ErrorCode, message string) error {
	return p.errorAt(p.current, code, message)
}

func (p *Parser) errorAt(tok Token, code types.ErrorCode, message string) error {
	return &types.Error{
		Code:     code,
		Message:  message,
		Position: tok.Position,
		Token:    tok.Value,
	}
}

// parseCondition parses cond ? then : else, the loosest construct.
func (p *Parser) parseCondition() (*types.ASTNode, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return nil, p.error(types.ErrTooDeep, fmt.Sprintf("expression nested deeper than %d", p.opts.MaxDepth))
	}

	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenCondition {
		return cond, nil
	}
	pos := p.current.Position
	p.advance()

	then, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	els, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeCondition, pos)
	node.LHS = cond
	node.RHS = then
	node.Else = els
	return node, nil
}

// parseOr parses a run of || into one n-ary node.
func (p *Parser) parseOr() (*types.ASTNode, error) {
	return p.parseJunction(TokenOr, types.NodeOr, p.parseAnd)
}

// parseAnd parses a run of && into one n-ary node.
func (p *Parser) parseAnd() (*types.ASTNode, error) {
	return p.parseJunction(TokenAnd, types.NodeAnd, p.parseBinary)
}

func (p *Parser) parseJunction(tt TokenType, nt types.NodeType, operand func() (*types.ASTNode, error)) (*types.ASTNode, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	if p.current.Type != tt {
		return first, nil
	}

	node := types.NewASTNode(nt, first.Position)
	node.Operands = []*types.ASTNode{first}
	for p.current.Type == tt {
		p.advance()
		next, err := operand()
		if err != nil {
			return nil, err
		}
		node.Operands = append(node.Operands, next)
	}
	return node, nil
}

// parseBinary parses one relational operator. Relational operators do not
// chain; a second operator is left for the caller and ends up as trailing
// input.
func (p *Parser) parseBinary() (*types.ASTNode, error) {
	lhs, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	op := p.current
	var nt types.NodeType
	negate := false
	switch op.Type {
	case TokenEqual:
		nt = types.NodeEquals
	case TokenNotEqual:
		nt, negate = types.NodeEquals, true
	case TokenLess:
		nt = types.NodeLess
	case TokenLessEqual:
		nt, negate = types.NodeGreater, true
	case TokenGreater:
		nt = types.NodeGreater
	case TokenGreaterEqual:
		nt, negate = types.NodeLess, true
	case TokenMatches:
		nt = types.NodeMatches
	default:
		return lhs, nil
	}
	p.advance()

	rhs, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(nt, op.Position)
	node.LHS = lhs
	node.RHS = rhs
	if negate {
		not := types.NewASTNode(types.NodeNot, op.Position)
		not.LHS = node
		return not, nil
	}
	return node, nil
}

// parseNot parses prefix negation.
func (p *Parser) parseNot() (*types.ASTNode, error) {
	if p.current.Type != TokenNot {
		return p.parseCollection()
	}
	p.depth++
	defer func() { p.depth-- }()
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return nil, p.error(types.ErrTooDeep, fmt.Sprintf("expression nested deeper than %d", p.opts.MaxDepth))
	}
	pos := p.current.Position
	p.advance()

	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	node := types.NewASTNode(types.NodeNot, pos)
	node.LHS = operand
	return node, nil
}

// parseCollection parses a chain of collection operators. The chain starts
// either at the implicit receiver (a leading "select(...)") or at the end of
// a member chain followed by ".keyword(".
func (p *Parser) parseCollection() (*types.ASTNode, error) {
	var expr *types.ASTNode
	if p.current.Type.IsCollectionOp() {
		expr = p.variableNode(p.implicit[len(p.implicit)-1], p.current.Position)
	} else {
		var err error
		expr, err = p.parseMember()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenDot {
			return expr, nil
		}
		p.advance() // parseMember only stops at '.' before a keyword
	}

	for {
		var err error
		expr, err = p.parseCollectionOp(expr)
		if err != nil {
			return nil, err
		}
		expr, err = p.parseMemberTail(expr)
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenDot {
			return expr, nil
		}
		p.advance()
	}
}

var collectionNodes = map[TokenType]types.NodeType{
	TokenSelect:   types.NodeSelect,
	TokenCollect:  types.NodeCollect,
	TokenExists:   types.NodeExists,
	TokenFirst:    types.NodeFirst,
	TokenAll:      types.NodeAll,
	TokenTraverse: types.NodeTraverse,
	TokenLatest:   types.NodeLatest,
	TokenFlatten:  types.NodeFlatten,
	TokenLimit:    types.NodeLimit,
	TokenUnique:   types.NodeUnique,
}

// parseCollectionOp parses keyword(args) applied to source. The current
// token is the keyword.
func (p *Parser) parseCollectionOp(source *types.ASTNode) (*types.ASTNode, error) {
	op := p.current
	nt := collectionNodes[op.Type]
	p.advance()
	if err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}

	node := types.NewASTNode(nt, op.Position)
	node.LHS = source

	switch op.Type {
	case TokenSelect, TokenCollect, TokenExists, TokenFirst, TokenAll, TokenTraverse:
		lambda, err := p.parseLambda()
		if err != nil {
			return nil, err
		}
		node.RHS = lambda

	case TokenLatest, TokenFlatten:
		// latest(x | p) is shorthand for select(x | p).latest()
		if p.current.Type != TokenParenClose {
			lambda, err := p.parseLambda()
			if err != nil {
				return nil, err
			}
			sel := types.NewASTNode(types.NodeSelect, op.Position)
			sel.LHS = source
			sel.RHS = lambda
			node.LHS = sel
		}

	case TokenLimit:
		count, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		node.RHS = count

	case TokenUnique:
		if p.current.Type != TokenParenClose {
			key, err := p.parseKey(op.Position)
			if err != nil {
				return nil, err
			}
			node.RHS = key
		}
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return node, nil
}

// parseKey parses the key expression of unique(key). Bare identifiers in the
// key resolve against the element being keyed, so unique(id) keys on each
// element's id. The key is returned as a lambda over a hidden variable.
func (p *Parser) parseKey(pos int) (*types.ASTNode, error) {
	elem := &types.Variable{Name: "_"}
	p.implicit = append(p.implicit, elem)
	body, err := p.parseCondition()
	p.implicit = p.implicit[:len(p.implicit)-1]
	if err != nil {
		return nil, err
	}
	lambda := types.NewASTNode(types.NodeLambda, pos)
	lambda.Variable = elem
	lambda.RHS = body
	return lambda, nil
}

// parseLambda parses the argument of a lambda-taking operator:
//
//	x | body
//	{ x | body }
//	init, _, init { a, x, b | body }
//
// In the curried form exactly one initializer is "_"; the variable in that
// position is bound to each element, the others are bound once to their
// initializer values.
func (p *Parser) parseLambda() (*types.ASTNode, error) {
	start := p.current
	braces := false
	var initializers []*types.ASTNode
	anyIndex := -1

	names, ok := p.parseVariables()
	if !ok {
		if p.current.Type == TokenBraceOpen {
			braces = true
			p.advance()
		} else {
			var err error
			initializers, anyIndex, err = p.parseInitializers(start)
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenBraceOpen); err != nil {
				return nil, err
			}
			braces = true
		}
		names, ok = p.parseVariables()
		if !ok {
			if p.current.Type == TokenPipe {
				return nil, p.error(types.ErrNoVariables, "no variables defined in lambda")
			}
			return nil, p.error(types.ErrExpectedToken, fmt.Sprintf("expected lambda variables followed by '|' but got %q", p.current.Value))
		}
	}
	p.advance() // '|'

	if initializers == nil {
		if len(names) != 1 {
			return nil, p.errorAt(names[1], types.ErrLambdaArity,
				fmt.Sprintf("number of variables (%d) does not match number of initializers (1)", len(names)))
		}
		anyIndex = 0
	} else if len(names) != len(initializers) {
		return nil, p.errorAt(names[0], types.ErrLambdaArity,
			fmt.Sprintf("number of variables (%d) does not match number of initializers (%d)", len(names), len(initializers)))
	}

	lambda := types.NewASTNode(types.NodeLambda, start.Position)
	vars := make([]*types.Variable, len(names))
	for i, n := range names {
		vars[i] = &types.Variable{Name: n.Value}
		if i == anyIndex {
			lambda.Variable = vars[i]
			continue
		}
		lambda.Assignments = append(lambda.Assignments, &types.Assignment{
			Variable: vars[i],
			Value:    initializers[i],
		})
	}

	depth := len(p.scope)
	p.scope = append(p.scope, vars...)
	body, err := p.parseCondition()
	p.scope = p.scope[:depth]
	if err != nil {
		return nil, err
	}
	lambda.RHS = body

	if braces {
		if err := p.expect(TokenBraceClose); err != nil {
			return nil, err
		}
	}
	return lambda, nil
}

// parseVariables speculatively parses "name, name, ... |" and leaves the
// current token on the pipe. If the input does not have that shape the
// parser state is restored and ok is false.
func (p *Parser) parseVariables() (names []Token, ok bool) {
	s := p.save()
	for p.current.Type == TokenIdentifier {
		names = append(names, p.current)
		p.advance()
		if p.current.Type != TokenComma {
			break
		}
		p.advance()
		if p.current.Type != TokenIdentifier {
			p.restore(s)
			return nil, false
		}
	}
	if len(names) == 0 || p.current.Type != TokenPipe {
		p.restore(s)
		return nil, false
	}
	return names, true
}

// parseInitializers parses the comma separated currying expressions that
// precede a curried lambda body.
func (p *Parser) parseInitializers(start Token) ([]*types.ASTNode, int, error) {
	var initializers []*types.ASTNode
	anyIndex := -1
	for {
		wildcard := false
		if p.current.Type == TokenAny {
			s := p.save()
			tok := p.current
			p.advance()
			if p.current.Type == TokenComma || p.current.Type == TokenBraceOpen {
				if anyIndex >= 0 {
					return nil, 0, p.errorAt(tok, types.ErrLambdaWildcard, "more than one '_' in currying list")
				}
				anyIndex = len(initializers)
				initializers = append(initializers, nil)
				wildcard = true
			} else {
				p.restore(s)
			}
		}
		if !wildcard {
			init, err := p.parseCondition()
			if err != nil {
				return nil, 0, err
			}
			initializers = append(initializers, init)
		}
		if p.current.Type != TokenComma {
			break
		}
		p.advance()
	}
	if anyIndex < 0 {
		if len(initializers) == 1 && p.current.Type != TokenBraceOpen {
			return nil, 0, p.errorAt(start, types.ErrExpectedToken, "expected lambda of the form 'x | expression'")
		}
		return nil, 0, p.errorAt(start, types.ErrLambdaWildcard, "currying list must contain exactly one '_'")
	}
	return initializers, anyIndex, nil
}

// parseMember parses a primary followed by member and index accessors.
func (p *Parser) parseMember() (*types.ASTNode, error) {
	primary, err := p.parseFunction()
	if err != nil {
		return nil, err
	}
	return p.parseMemberTail(primary)
}

// parseMemberTail parses .name, .name(args) and [index] suffixes. A '.'
// followed by a collection keyword ends the chain and is left unconsumed.
func (p *Parser) parseMemberTail(expr *types.ASTNode) (*types.ASTNode, error) {
	for {
		switch p.current.Type {
		case TokenDot:
			s := p.save()
			p.advance()
			if p.current.Type.IsCollectionOp() {
				p.restore(s)
				return expr, nil
			}
			if p.current.Type != TokenIdentifier {
				return nil, p.unexpected()
			}
			name := p.current
			p.advance()

			var args []*types.ASTNode
			if p.current.Type == TokenParenOpen {
				var err error
				args, err = p.parseList(TokenParenClose)
				if err != nil {
					return nil, err
				}
			}
			expr = p.memberNode(expr, name.Value, args, name.Position)

		case TokenBracketOpen:
			pos := p.current.Position
			p.advance()
			index, err := p.parseCondition()
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenBracketClose); err != nil {
				return nil, err
			}
			at := types.NewASTNode(types.NodeAt, pos)
			at.LHS = expr
			at.RHS = index
			expr = at

		default:
			return expr, nil
		}
	}
}

// parseFunction tries the identifier against the function table. If it
// is not immediately followed by '(' or is not a registered function, the
// parser backtracks and parses a primary instead.
func (p *Parser) parseFunction() (*types.ASTNode, error) {
	if p.current.Type != TokenIdentifier {
		return p.parsePrimary()
	}

	s := p.save()
	name := p.current
	p.advance()
	if p.current.Type == TokenParenOpen {
		if def, ok := p.opts.Functions.Lookup(name.Value); ok {
			args, err := p.parseList(TokenParenClose)
			if err != nil {
				return nil, err
			}
			if err := def.CheckArity(len(args)); err != nil {
				return nil, p.errorAt(name, types.ErrArgumentCount, err.Error())
			}
			if err := p.checkConstantCall(def.Impl, args); err != nil {
				return nil, p.errorAt(name, errorCode(err, types.ErrInvalidValue), err.Error())
			}
			node := types.NewASTNode(types.NodeFunction, name.Position)
			node.Value = name.Value
			node.Func = def.Impl
			node.Arguments = args
			return node, nil
		}
	}
	p.restore(s)
	return p.parsePrimary()
}

// checkConstantCall invokes fn when every argument is a literal so that
// malformed constants such as version('x') fail compilation.
func (p *Parser) checkConstantCall(fn types.FunctionImpl, args []*types.ASTNode) error {
	values := make([]interface{}, len(args))
	for i, a := range args {
		v, ok := ConstantValue(a)
		if !ok {
			return nil
		}
		values[i] = v
	}
	_, err := fn(values)
	return err
}

// ConstantValue returns the value of a literal node.
func ConstantValue(n *types.ASTNode) (interface{}, bool) {
	switch n.Type {
	case types.NodeString, types.NodeNumber, types.NodeBoolean, types.NodeNull, types.NodePattern:
		return n.Value, true
	default:
		return nil, false
	}
}

func errorCode(err error, def types.ErrorCode) types.ErrorCode {
	var qerr *types.Error
	if errors.As(err, &qerr) {
		return qerr.Code
	}
	return def
}

// parseList parses "( a, b, ... )" or "[ a, b, ... ]". The current token
// is the opening delimiter.
func (p *Parser) parseList(closer TokenType) ([]*types.ASTNode, error) {
	p.advance()
	items := []*types.ASTNode{}
	if p.current.Type == closer {
		p.advance()
		return items, nil
	}
	for {
		item, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.current.Type == closer {
			p.advance()
			return items, nil
		}
		if err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}
}

// parsePrimary parses literals, parameters, identifiers, arrays and
// parenthesized expressions.
func (p *Parser) parsePrimary() (*types.ASTNode, error) {
	tok := p.current

	switch tok.Type {
	case TokenParenOpen:
		p.advance()
		expr, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenParenClose); err != nil {
			return nil, err
		}
		return expr, nil

	case TokenBracketOpen:
		elems, err := p.parseList(TokenBracketClose)
		if err != nil {
			return nil, err
		}
		node := types.NewASTNode(types.NodeArray, tok.Position)
		node.Operands = elems
		return node, nil

	case TokenString:
		p.advance()
		return p.constant(types.NodeString, tok, tok.Value), nil

	case TokenNumber:
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, p.error(types.ErrNumberOutOfRange, fmt.Sprintf("integer out of range: %s", tok.Value))
		}
		p.advance()
		return p.constant(types.NodeNumber, tok, n), nil

	case TokenPattern:
		p.advance()
		return p.constant(types.NodePattern, tok, types.CompilePattern(tok.Value)), nil

	case TokenTrue, TokenFalse:
		p.advance()
		return p.constant(types.NodeBoolean, tok, tok.Type == TokenTrue), nil

	case TokenNull:
		p.advance()
		return p.constant(types.NodeNull, tok, types.NullValue), nil

	case TokenDollar:
		return p.parseParameter()

	case TokenIdentifier:
		p.advance()
		node := p.resolve(tok)
		if node.Type == types.NodeMember && p.current.Type == TokenParenOpen {
			args, err := p.parseList(TokenParenClose)
			if err != nil {
				return nil, err
			}
			node.Arguments = args
		}
		return node, nil

	case TokenAny:
		return nil, p.error(types.ErrMisplacedAny, "'_' is only allowed in a lambda currying list")

	default:
		return nil, p.unexpected()
	}
}

func (p *Parser) constant(nt types.NodeType, tok Token, value interface{}) *types.ASTNode {
	node := types.NewASTNode(nt, tok.Position)
	node.Value = value
	return node
}

// parseParameter parses $0 or $name. The reference must follow the dollar
// sign without whitespace.
func (p *Parser) parseParameter() (*types.ASTNode, error) {
	dollar := p.current
	p.advance()

	node := types.NewASTNode(types.NodeParameter, dollar.Position)
	if p.current.Position != dollar.Position+1 {
		return nil, p.errorAt(dollar, types.ErrSyntaxError, "expected parameter index or name after '$'")
	}
	switch p.current.Type {
	case TokenNumber:
		idx, err := strconv.Atoi(p.current.Value)
		if err != nil {
			return nil, p.error(types.ErrNumberOutOfRange, fmt.Sprintf("parameter index out of range: %s", p.current.Value))
		}
		if idx+1 > p.params {
			p.params = idx + 1
		}
		node.Value = idx
	default:
		// keywords such as first or limit are valid names here
		if p.current.Type != lookupKeyword(p.current.Value) {
			return nil, p.errorAt(dollar, types.ErrSyntaxError, "expected parameter index or name after '$'")
		}
		node.Value = p.current.Value
	}
	p.advance()
	return node, nil
}

// resolve turns a bare identifier into a variable reference if a variable of
// that name is in scope, or into a member call on the implicit receiver. A
// call such as satisfies(r) that is not in the function table is a member
// call as well.
func (p *Parser) resolve(tok Token) *types.ASTNode {
	for i := len(p.scope) - 1; i >= 0; i-- {
		if p.scope[i].Name == tok.Value {
			return p.variableNode(p.scope[i], tok.Position)
		}
	}
	recv := p.variableNode(p.implicit[len(p.implicit)-1], tok.Position)
	return p.memberNode(recv, tok.Value, nil, tok.Position)
}

func (p *Parser) variableNode(v *types.Variable, pos int) *types.ASTNode {
	node := types.NewASTNode(types.NodeVariable, pos)
	node.Variable = v
	return node
}

func (p *Parser) memberNode(target *types.ASTNode, name string, args []*types.ASTNode, pos int) *types.ASTNode {
	node := types.NewASTNode(types.NodeMember, pos)
	node.LHS = target
	node.Value = name
	node.Arguments = args
	return node
}
