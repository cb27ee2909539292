package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/catql/pkg/types"
)

const eof = -1

// Lexer converts a query into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     *types.Error
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all
// subsequent calls. After an error token, Next keeps returning TokenEOF.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	// Two-character symbols take precedence (e.g. ==, <=, ||)
	if rts := lookupSymbol2(ch); rts != nil {
		for _, rt := range rts {
			if l.acceptRune(rt.r) {
				return l.newToken(rt.tt)
			}
		}
	}

	if tt := lookupSymbol1(ch); tt != TokenEOF {
		return l.newToken(tt)
	}

	switch {
	case ch == '"' || ch == '\'':
		l.ignore()
		return l.scanString(ch)
	case ch == '/':
		l.ignore()
		return l.scanPattern(ch)
	case isDigit(ch):
		l.backup()
		return l.scanNumber()
	case isIdentStart(ch):
		l.backup()
		return l.scanIdentifier()
	}

	return l.error(types.ErrUnknownCharacter, fmt.Sprintf("unexpected character %q", ch))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() *types.Error {
	return l.err
}

// Pos returns the current cursor offset.
func (l *Lexer) Pos() int {
	return l.current
}

// SetPos moves the cursor back to an offset previously obtained from Pos.
// Any error recorded past that offset is discarded.
func (l *Lexer) SetPos(pos int) {
	if l.err != nil && l.err.Position >= pos {
		l.err = nil
	}
	l.current = pos
	l.start = pos
	l.width = 0
}

// scanString reads a string literal. The opening quote has already been
// consumed. The contents are copied literally, there are no escapes.
func (l *Lexer) scanString(quote rune) Token {
	for {
		switch l.nextRune() {
		case quote:
			l.backup()
			t := l.newToken(TokenString)
			l.acceptRune(quote)
			l.ignore()
			return t
		case eof:
			return l.error(types.ErrStringNotClosed, "unterminated string literal")
		}
	}
}

// scanPattern reads a /pattern/ literal. The opening slash has already been
// consumed. A backslash before the delimiter escapes it; any other backslash
// is kept as is.
func (l *Lexer) scanPattern(delim rune) Token {
	escaped := false
	for {
		switch l.nextRune() {
		case delim:
			l.backup()
			t := l.newToken(TokenPattern)
			if escaped {
				t.Value = strings.ReplaceAll(t.Value, `\`+string(delim), string(delim))
			}
			l.acceptRune(delim)
			l.ignore()
			return t
		case '\\':
			if l.acceptRune(delim) {
				escaped = true
			}
		case eof:
			return l.error(types.ErrPatternNotClosed, "unterminated pattern")
		}
	}
}

// scanNumber reads a decimal integer literal.
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)
	return l.newToken(TokenNumber)
}

// scanIdentifier reads an identifier or keyword.
func (l *Lexer) scanIdentifier() Token {
	l.accept(isIdentStart)
	l.acceptAll(isIdentPart)
	t := l.newToken(TokenIdentifier)
	t.Type = lookupKeyword(t.Value)
	return t
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = &types.Error{
		Code:     code,
		Message:  message,
		Position: t.Position,
		Token:    t.Value,
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
