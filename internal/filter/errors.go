package filter

import (
	"errors"
	"fmt"
)

// List of the error kinds a filter expression may fail to parse with.
// They are always returned wrapped in a *ParseError, use errors.Is to check for a specific kind.
var (
	// ErrEmptyExpression is returned when no value was ever supplied, e.g. "" or "()".
	ErrEmptyExpression = errors.New("empty expression")
	// ErrMissingOperator is returned when two terms follow each other without an operator, e.g. "ab".
	ErrMissingOperator = errors.New("missing logical operator")
	// ErrDanglingOperator is returned when an operator lacks an operand, e.g. "a**b" or "a+".
	ErrDanglingOperator = errors.New("dangling logical operator")
	// ErrUnbalancedBrackets is returned for a ')' without matching '(' or a '(' that is never closed.
	ErrUnbalancedBrackets = errors.New("unbalanced brackets")
	// ErrOutOfBounds is returned by Cursor when reading past the end of its input.
	ErrOutOfBounds = errors.New("read past the end of the input")
	// ErrNoProgress is returned when a LeafReader neither consumed any input nor failed.
	ErrNoProgress = errors.New("leaf reader did not consume any input")
)

// ParseError describes why and where a filter expression could not be parsed.
type ParseError struct {
	Expr string // Expr is the whole filter expression.
	Pos  int    // Pos is the rune offset at which the error was detected.
	Err  error  // Err is the underlying error, usually one of the Err* kinds of this package.
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid filter '%s', %s at pos %d", e.Expr, e.Err, e.Pos)
}

// Unwrap returns the underlying error kind.
func (e *ParseError) Unwrap() error {
	return e.Err
}
