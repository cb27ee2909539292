package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenString     // "hello" or 'hello'
	TokenNumber     // 123
	TokenPattern    // /pattern/
	TokenIdentifier // name

	// Keyword literals
	TokenTrue  // true
	TokenFalse // false
	TokenNull  // null
	TokenAny   // _

	// Collection operator keywords
	TokenSelect   // select
	TokenCollect  // collect
	TokenExists   // exists
	TokenFirst    // first
	TokenAll      // all
	TokenTraverse // traverse
	TokenLatest   // latest
	TokenLimit    // limit
	TokenFlatten  // flatten
	TokenUnique   // unique

	// Grouping symbols
	TokenBracketOpen  // [
	TokenBracketClose // ]
	TokenBraceOpen    // {
	TokenBraceClose   // }
	TokenParenOpen    // (
	TokenParenClose   // )

	// Basic symbols
	TokenDot       // .
	TokenComma     // ,
	TokenColon     // :
	TokenCondition // ?
	TokenPipe      // |
	TokenDollar    // $
	TokenNot       // !

	// Comparison operators
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenMatches      // ~=

	// Logical operators
	TokenAnd // &&
	TokenOr  // ||
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenString:
		return "(string)"
	case TokenNumber:
		return "(number)"
	case TokenPattern:
		return "(pattern)"
	case TokenIdentifier:
		return "(identifier)"
	case TokenTrue:
		return "true"
	case TokenFalse:
		return "false"
	case TokenNull:
		return "null"
	case TokenAny:
		return "_"
	case TokenSelect:
		return "select"
	case TokenCollect:
		return "collect"
	case TokenExists:
		return "exists"
	case TokenFirst:
		return "first"
	case TokenAll:
		return "all"
	case TokenTraverse:
		return "traverse"
	case TokenLatest:
		return "latest"
	case TokenLimit:
		return "limit"
	case TokenFlatten:
		return "flatten"
	case TokenUnique:
		return "unique"
	case TokenBracketOpen:
		return "["
	case TokenBracketClose:
		return "]"
	case TokenBraceOpen:
		return "{"
	case TokenBraceClose:
		return "}"
	case TokenParenOpen:
		return "("
	case TokenParenClose:
		return ")"
	case TokenDot:
		return "."
	case TokenComma:
		return ","
	case TokenColon:
		return ":"
	case TokenCondition:
		return "?"
	case TokenPipe:
		return "|"
	case TokenDollar:
		return "$"
	case TokenNot:
		return "!"
	case TokenEqual:
		return "=="
	case TokenNotEqual:
		return "!="
	case TokenLess:
		return "<"
	case TokenLessEqual:
		return "<="
	case TokenGreater:
		return ">"
	case TokenGreaterEqual:
		return ">="
	case TokenMatches:
		return "~="
	case TokenAnd:
		return "&&"
	case TokenOr:
		return "||"
	default:
		return "(unknown)"
	}
}

// IsCollectionOp reports whether tt is a collection operator keyword.
func (tt TokenType) IsCollectionOp() bool {
	return tt >= TokenSelect && tt <= TokenUnique
}

// Token represents a lexical token in a query.
type Token struct {
	Type     TokenType // Type of the token
	Value    string    // Literal value of the token
	Position int       // Starting position in the input string
}

// symbols1 maps single-character symbols to token types.
var symbols1 = [...]TokenType{
	'[': TokenBracketOpen,
	']': TokenBracketClose,
	'{': TokenBraceOpen,
	'}': TokenBraceClose,
	'(': TokenParenOpen,
	')': TokenParenClose,
	'.': TokenDot,
	',': TokenComma,
	':': TokenColon,
	'?': TokenCondition,
	'|': TokenPipe,
	'$': TokenDollar,
	'!': TokenNot,
	'<': TokenLess,
	'>': TokenGreater,
}

// runeTokenType pairs a rune with its corresponding token type.
type runeTokenType struct {
	r  rune
	tt TokenType
}

// symbols2 maps two-character symbol sequences to token types.
// The key is the first character of the sequence.
var symbols2 = [...][]runeTokenType{
	'|': {{'|', TokenOr}},
	'&': {{'&', TokenAnd}},
	'=': {{'=', TokenEqual}},
	'!': {{'=', TokenNotEqual}},
	'~': {{'=', TokenMatches}},
	'<': {{'=', TokenLessEqual}},
	'>': {{'=', TokenGreaterEqual}},
}

const (
	symbol1Count = rune(len(symbols1))
	symbol2Count = rune(len(symbols2))
)

// lookupSymbol1 returns the token type for a single-character symbol.
// Returns TokenEOF if the rune is not a valid symbol.
func lookupSymbol1(r rune) TokenType {
	if r < 0 || r >= symbol1Count {
		return TokenEOF
	}
	return symbols1[r]
}

// lookupSymbol2 returns possible two-character symbol completions.
// Returns nil if the rune cannot start a two-character symbol.
func lookupSymbol2(r rune) []runeTokenType {
	if r < 0 || r >= symbol2Count {
		return nil
	}
	return symbols2[r]
}

// keywords maps reserved identifiers to their token types.
var keywords = map[string]TokenType{
	"true":     TokenTrue,
	"false":    TokenFalse,
	"null":     TokenNull,
	"_":        TokenAny,
	"select":   TokenSelect,
	"collect":  TokenCollect,
	"exists":   TokenExists,
	"first":    TokenFirst,
	"all":      TokenAll,
	"traverse": TokenTraverse,
	"latest":   TokenLatest,
	"limit":    TokenLimit,
	"flatten":  TokenFlatten,
	"unique":   TokenUnique,
}

// lookupKeyword returns the token type for a keyword, or TokenIdentifier.
func lookupKeyword(s string) TokenType {
	if tt, ok := keywords[s]; ok {
		return tt
	}
	return TokenIdentifier
}
