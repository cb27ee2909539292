package types

import "fmt"

// ErrorCode represents a query error code.
type ErrorCode string

// Error codes.
const (
	// S0xxx: lexical and syntax errors
	ErrStringNotClosed  ErrorCode = "S0101"
	ErrNumberOutOfRange ErrorCode = "S0102"
	ErrUnexpectedEnd    ErrorCode = "S0104"
	ErrSyntaxError      ErrorCode = "S0201"
	ErrExpectedToken    ErrorCode = "S0202"
	ErrUnknownCharacter ErrorCode = "S0204"
	ErrTooDeep          ErrorCode = "S0205"
	ErrLambdaArity      ErrorCode = "S0210"
	ErrLambdaWildcard   ErrorCode = "S0211"
	ErrNoVariables      ErrorCode = "S0212"
	ErrMisplacedAny     ErrorCode = "S0213"
	ErrPatternNotClosed ErrorCode = "S0302"

	// T1xxx: function table errors
	ErrArgumentCount ErrorCode = "T1010"
	ErrArgumentType  ErrorCode = "T1011"
	ErrInvalidValue  ErrorCode = "T1012"

	// D0xxx: evaluation errors that do propagate
	ErrInvalidExpression ErrorCode = "D1001"
)

// MsgUnexpectedEnd is the message used for errors raised at end of input.
const MsgUnexpectedEnd = "unexpected end of expression"

// Error represents a structured query error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
