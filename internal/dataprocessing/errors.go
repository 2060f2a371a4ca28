package dataprocessing

import (
	"errors"
	"fmt"
)

// Loader error kinds. A *ParseError wraps exactly one of these.
var (
	// ErrParse matches every *ParseError via errors.Is
	ErrParse = errors.New("parse error")

	ErrMalformedInput = errors.New("malformed delimited text")
	ErrMissingHeader  = errors.New("missing header row")
	ErrMissingColumn  = errors.New("required column not found")
	ErrNotNumeric     = errors.New("value is not a number")
	ErrOutOfRange     = errors.New("percent outside [0, 100]")
	ErrDuplicateKey   = errors.New("duplicate year and student group")
)

// ParseError reports input that could not be turned into rows.
// Line is 1-based and counts the header; 0 means the position is unknown.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s on line %d", msg, e.Line)
	}
	if e.Column != "" {
		msg = fmt.Sprintf("%s, column %q", msg, e.Column)
	}
	if e.Value != "" {
		msg = fmt.Sprintf("%s, value %q", msg, e.Value)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap allows errors.Is and errors.As to reach the error kind
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match ErrParse
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func newParseError(line int, column, value string, err error) *ParseError {
	return &ParseError{Line: line, Column: column, Value: value, Err: err}
}
