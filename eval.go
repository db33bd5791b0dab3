package fxsolve

import (
	"fmt"
	"math"
)

// Func is a function of one real variable. A NaN result means the function is
// undefined at x, e.g. because of a division by zero. A non-nil error means
// evaluation itself failed; callers must not treat it as an undefined value.
type Func func(x float64) (float64, error)

// Pure adapts an ordinary function into a Func which never fails.
func Pure(f func(float64) float64) Func {
	return func(x float64) (float64, error) {
		return f(x), nil
	}
}

// IsUndefined reports whether y is the undefined result of a Func.
func IsUndefined(y float64) bool {
	return math.IsNaN(y)
}

// Eval evaluates the expression at x. Division by zero, roots of negative
// numbers, logarithms of non-positive numbers, and anything computed from an
// undefined value give NaN with a nil error. Any other failure is returned as
// an *EvaluationError.
func (e *Expr) Eval(x float64) (y float64, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		cause, ok := r.(error)
		if !ok {
			cause = fmt.Errorf("%v", r)
		}
		y, err = math.NaN(), &EvaluationError{Err: cause}
	}()
	return e.n.eval(x), nil
}

// Func returns e.Eval as a Func.
func (e *Expr) Func() Func {
	return e.Eval
}

// EvaluationError is an error from a fault while evaluating an expression
// other than an argument outside a function's domain.
type EvaluationError struct {
	Err error
}

func (err *EvaluationError) Error() string {
	return "error evaluating expression: " + err.Err.Error()
}

func (err *EvaluationError) Unwrap() error {
	return err.Err
}
