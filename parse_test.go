package fxsolve

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diff finds the first in-order node of n that differs from m, or nil, nil if
// the two ASTs are equal. If any node is nodeNone, it is returned.
func (n *node) diff(m *node) (*node, *node) {
	if n == nil {
		if m != nil {
			return n, m
		}
		return nil, nil
	}
	if m == nil {
		return n, m
	}
	if n.kind == nodeNone || m.kind == nodeNone {
		return n, m
	}
	if n.kind != m.kind {
		return n, m
	}
	switch n.kind {
	case nodeNum:
		if n.val != m.val {
			return n, m
		}
	case nodeVar:
		if n.name != m.name {
			return n, m
		}
	case nodeCall:
		if n.name != m.name || n.fn != m.fn {
			return n, m
		}
		if d, e := n.left.diff(m.left); d != nil || e != nil {
			return d, e
		}
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodePow:
		if d, e := n.left.diff(m.left); d != nil || e != nil {
			return d, e
		}
		if d, e := n.right.diff(m.right); d != nil || e != nil {
			return d, e
		}
	case nodeNeg, nodeNop:
		if d, e := n.left.diff(m.left); d != nil || e != nil {
			return d, e
		}
	default:
		panic(fmt.Errorf("invalid node kind: n=%+v m=%+v", n, m))
	}
	return nil, nil
}

func TestOpPrecsExist(t *testing.T) {
	for _, r := range Operators {
		b := binop(string(r))
		u := unop(string(r))
		if b.op == nodeNone && u.op == nodeNone {
			t.Errorf("no operator for %c", r)
		}
	}
	if binop("**") != binop("^") {
		t.Errorf("** is %+v but ^ is %+v", binop("**"), binop("^"))
	}
}

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"paren", "(x)", "x"},
		{"multi", "(((x)))", "x"},
		{"space", " x ", "x"},
		{"point", "2.", "2.0"},
		{"lead-point", ".5", "0.5"},

		{"plus", "+x", "(+(x))"},
		{"neg", "-x", "(-(x))"},
		{"negnum", "-1", "(-(1))"},
		{"add", "x+1", "((x)+(1))"},
		{"sub", "x-1", "((x)-(1))"},
		{"mul", "x*2", "((x)*(2))"},
		{"div", "x/2", "((x)/(2))"},
		{"pow", "x^2", "((x)^(2))"},
		{"starstar", "x**2", "x^2"},
		{"call-sqrt", "sqrt(x+1)", "sqrt((x+1))"},
		{"call-log10", "log10(x)", "log10((x))"},
		{"nested", "log10(sqrt(x))", "log10((sqrt((x))))"},

		{"add4", "x+1+2+3", "((x+1)+2)+3"},
		{"sub4", "x-1-2-3", "((x-1)-2)-3"},
		{"mul4", "x*1*2*3", "((x*1)*2)*3"},
		{"div4", "x/1/2/3", "((x/1)/2)/3"},
		{"pow4", "x^1^2^3", "x^(1^(2^3))"},
		{"starstar4", "x**1**2^3", "x^(1^(2^3))"},

		{"negpow", "-2^x", "-(2^x)"},
		{"desc", "x^2*3+4", "((x^2)*3)+4"},
		{"asc", "4+3*x^2", "4+(3*(x^2))"},
		{"quad", "x^2 - 4*x + 4", "((x^2)-(4*x))+4"},
		{"negneg", "--x", "-(-x)"},
		{"negsub", "-x-x", "(-x)-x"},
		{"negmul", "-x*2", "(-x)*2"},
		{"mulneg", "2*-x", "2*(-x)"},
		{"powneg", "x^-1", "x^(-1)"},
		{"pownegpow", "x^-x^-2", "x^(-(x^(-2)))"},
		{"pownegneg", "x^--2", "x^(-(-2))"},
		{"callpow", "sqrt(x)^2", "(sqrt(x))^2"},
		{"negcall", "-sqrt(x)", "-(sqrt(x))"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Compile(c.a)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.a, err)
			}
			b, err := Compile(c.b)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.b, err)
			}
			d, e := a.n.diff(b.n)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\t%q parses %v has %v\n\t%q parses %v has %v", c.a, a.n, d, c.b, b.n, e)
			}
		})
	}
}

func TestParseExact(t *testing.T) {
	cases := []struct {
		name string
		src  string
		n    *node
	}{
		{
			name: "sqrt",
			src:  "sqrt(x)",
			n: &node{
				kind: nodeCall,
				name: "sqrt",
				fn:   builtins["sqrt"],
				left: &node{kind: nodeVar, name: "x"},
			},
		},
		{
			name: "linear",
			src:  "2*x + 3",
			n: &node{
				kind: nodeAdd,
				left: &node{
					kind:  nodeMul,
					left:  &node{kind: nodeNum, val: 2},
					right: &node{kind: nodeVar, name: "x"},
				},
				right: &node{kind: nodeNum, val: 3},
			},
		},
		{
			name: "huge",
			src:  "1" + strings.Repeat("0", 400),
			n:    &node{kind: nodeNum, val: math.Inf(1)},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := Compile(c.src)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", c.src, err)
			}
			d, e := a.n.diff(c.n)
			if d != nil || e != nil {
				t.Errorf("mismatched AST:\n\twant %v has %v\n\tgot  %v has %v", c.n, e, a.n, d)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	type check func(t *testing.T, err error)
	is := func(target error) check {
		return func(t *testing.T, err error) {
			assert.ErrorIs(t, err, target)
		}
	}
	at := func(target InputError, col int) check {
		return func(t *testing.T, err error) {
			inner := errors.Unwrap(err)
			require.IsType(t, target, inner, "error %v", err)
			assert.Equal(t, col, inner.(InputError).Pos(), "error %v", err)
		}
	}
	cases := []struct {
		name  string
		src   string
		check check
	}{
		{"empty", "", is(ErrEmptyExpression)},
		{"blank", " \t\n", is(ErrEmptyExpression)},
		{"var-y", "2*y + 3", at(&IdentError{}, 3)},
		{"unknown-func", "2*x + unknown_func(3)", at(&IdentError{}, 7)},
		{"exp-notation", "1e5", at(&IdentError{}, 2)},
		{"dangling-add", "4+", at(&EmptyExpressionError{}, 3)},
		{"dangling-pow", "2**", at(&EmptyExpressionError{}, 4)},
		{"dangling-neg", "-", at(&EmptyExpressionError{}, 2)},
		{"close-after-op", "2*)", at(&EmptyExpressionError{}, 3)},
		{"empty-parens", "()", at(&EmptyExpressionError{}, 2)},
		{"neg-close", "(-)", at(&EmptyExpressionError{}, 3)},
		{"juxtaposed", "2 x", at(&MissingOperatorError{}, 3)},
		{"juxtaposed-paren", "x(1)", at(&MissingOperatorError{}, 2)},
		{"juxtaposed-call", "2sqrt(x)", at(&MissingOperatorError{}, 2)},
		{"unclosed", "(x", at(&BracketError{}, 3)},
		{"unopened", "x)", at(&BracketError{}, 2)},
		{"unclosed-call", "sqrt(x", at(&BracketError{}, 7)},
		{"bare-call", "sqrt x", at(&CallError{}, 6)},
		{"bare-call-end", "log10", at(&CallError{}, 6)},
		{"empty-call", "sqrt()", at(&CallError{}, 6)},
		{"unary-mul", "*2", at(&OperatorError{}, 1)},
		{"unary-pow", "x^*2", at(&OperatorError{}, 3)},
		{"bad-number", "1.2.3", at(&LexError{}, 5)},
		{"bad-rune", "x $ 1", at(&LexError{}, 4)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := Compile(c.src)
			require.Error(t, err, "compiled %q to %v", c.src, e)
			assert.Nil(t, e)
			var ie *InvalidExpressionError
			require.ErrorAs(t, err, &ie)
			c.check(t, err)
		})
	}
}

func TestExprString(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"x", "(x)"},
		{"1+x", "([1] + [x])"},
		{"-x", "(-[x])"},
		{"sqrt(x)", "(sqrt[x])"},
		{"2*x^2", "([2] * [(x) ^ (2)])"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, MustCompile(c.src).String(), "String of %q", c.src)
	}
}

func TestEvalInternalFault(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name string
		n    *node
		err  error
	}{
		{"invalid-node", &node{kind: nodeNone}, nil},
		{"panicking-builtin", &node{
			kind: nodeCall,
			name: "boom",
			fn:   &builtin{"boom", func(float64) float64 { panic(boom) }},
			left: &node{kind: nodeVar, name: "x"},
		}, boom},
		{"panicking-value", &node{
			kind: nodeCall,
			name: "boom",
			fn:   &builtin{"boom", func(float64) float64 { panic("boom") }},
			left: &node{kind: nodeVar, name: "x"},
		}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := &Expr{n: c.n}
			y, err := e.Eval(1)
			var ee *EvaluationError
			require.ErrorAs(t, err, &ee)
			assert.True(t, math.IsNaN(y))
			if c.err != nil {
				assert.ErrorIs(t, err, c.err)
			}
		})
	}
}

func TestBuiltinErrNaN(t *testing.T) {
	b := &builtin{"nan", func(v float64) float64 {
		panic(big.ErrNaN{})
	}}
	e := &Expr{n: &node{kind: nodeCall, name: "nan", fn: b, left: &node{kind: nodeVar, name: "x"}}}
	y, err := e.Eval(1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(y))
}
