package fxsolve

import (
	"errors"
	"strconv"
)

// ErrEmptyExpression is wrapped by the InvalidExpressionError for an empty or
// all-whitespace expression.
var ErrEmptyExpression = errors.New("expression must be a non-empty string")

// InvalidExpressionError is the error returned by Compile for any expression
// that cannot be compiled. It wraps either ErrEmptyExpression or an InputError
// describing what was wrong and where.
type InvalidExpressionError struct {
	Err error
}

func (err *InvalidExpressionError) Error() string {
	return "invalid expression: " + err.Err.Error()
}

func (err *InvalidExpressionError) Unwrap() error {
	return err.Err
}

// IdentError is an error indicating a name other than x, sqrt, or log10. It
// implements InputError.
type IdentError struct {
	// Col is the position of the identifier.
	Col int
	// Name is the identifier as written.
	Name string
}

func (err *IdentError) Error() string {
	return errpos(err.Col, "unknown identifier "+strconv.Quote(err.Name))
}

func (err *IdentError) Pos() int {
	return err.Col
}

// OperatorError is an error indicating an operator token that is not
// understood by the parser. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected a unary operator at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Col, "unknown "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// MissingOperatorError is an error indicating two terms written next to each
// other, as in "2 x" or "x(1)". Multiplication must be explicit. It implements
// InputError.
type MissingOperatorError struct {
	// Col is the position of the second term.
	Col int
	// Text is the token starting the second term.
	Text string
}

func (err *MissingOperatorError) Error() string {
	return errpos(err.Col, "missing operator before "+strconv.Quote(err.Text))
}

func (err *MissingOperatorError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched brackets in the
// input. It implements InputError.
type BracketError struct {
	// Col is the position of the bracket.
	Col int
	// Left is the opening bracket, or empty if there is none.
	Left string
	// Right is the closing bracket, or empty if there is none.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
}

func (err *BracketError) Pos() int {
	return err.Col
}

// CallError is an error indicating a function name that isn't followed by a
// parenthesized argument. It implements InputError.
type CallError struct {
	// Col is the position of the token following the function name.
	Col int
	// Func is the function name that was called.
	Func string
	// Bare is true if the function name was not followed by an open bracket.
	Bare bool
}

func (err *CallError) Error() string {
	if err.Bare {
		return errpos(err.Col, err.Func+" must be followed by a bracketed argument")
	}
	return errpos(err.Col, "cannot call "+err.Func+" with 0 arguments")
}

func (err *CallError) Pos() int {
	return err.Col
}

// EmptyExpressionError is an error indicating an empty subexpression.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*IdentError)(nil)
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*MissingOperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*CallError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
	_ InputError = (*LexError)(nil)
)
