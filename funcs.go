package fxsolve

import (
	"errors"
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// builtin is a function that an expression can call. The set of builtins is
// fixed; nothing else is reachable from an expression.
type builtin struct {
	name string
	f    func(float64) float64
}

var builtins = map[string]*builtin{
	"sqrt":  {"sqrt", sqrt},
	"log10": {"log10", log10},
}

// call applies the function. An argument outside the function's domain, or a
// panic with big.ErrNaN from a computation, yields NaN. Other panics
// propagate.
func (b *builtin) call(v float64) (r float64) {
	if math.IsNaN(v) {
		return v
	}
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		err, ok := p.(error)
		if ok && errors.As(err, new(big.ErrNaN)) {
			r = math.NaN()
			return
		}
		panic(p)
	}()
	return b.f(v)
}

func sqrt(v float64) float64 {
	if v < 0 {
		return math.NaN()
	}
	return math.Sqrt(v)
}

// log10Prec is the precision at which log10 is computed before rounding.
const log10Prec = 128

// ln10 is ln(10) to log10Prec bits. It is never modified after init.
var ln10 = bigfloat.Log(new(big.Float).SetPrec(log10Prec), new(big.Float).SetPrec(log10Prec).SetInt64(10))

// log10 computes the base 10 logarithm. It works at extended precision and
// rounds once, so exact powers of ten give exact integers where math.Log10
// can be off by an ulp.
func log10(v float64) float64 {
	switch {
	case !(v > 0):
		return math.NaN()
	case v == 1:
		return 0
	case math.IsInf(v, 1):
		return v
	}
	in := new(big.Float).SetPrec(log10Prec).SetFloat64(v)
	r := new(big.Float).SetPrec(log10Prec)
	bigfloat.Log(r, in)
	r.Quo(r, ln10)
	f, _ := r.Float64()
	return f
}
