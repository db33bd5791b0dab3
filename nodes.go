package fxsolve

import (
	"math"
	"strings"
)

// node is a node in the abstract syntax tree of an expression.
type node struct {
	kind nodeKind

	name string
	val  float64
	fn   *builtin

	left  *node
	right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum // val, name is the literal as written
	nodeVar // x

	nodeCall // fn applied to left

	nodeNeg // evaluate left, then negate
	nodeAdd // evaluate left, add right
	nodeSub // evaluate left, sub right
	nodeMul // evaluate left, mul right
	nodeDiv // evaluate left, div by right
	nodePow // evaluate left, exp by right
	nodeNop // evaluate left
)

//go:generate go mod edit -require=golang.org/x/tools@v0.1.0
//go:generate go mod download
//go:generate go run golang.org/x/tools/cmd/stringer -type=nodeKind -trimprefix=node
//go:generate go mod tidy

// eval computes the node's value at x. Undefined results are NaN, and any NaN
// operand makes the result NaN.
func (n *node) eval(x float64) float64 {
	switch n.kind {
	case nodeNum:
		return n.val
	case nodeVar:
		return x
	case nodeCall:
		return n.fn.call(n.left.eval(x))
	case nodeNeg:
		return -n.left.eval(x)
	case nodeAdd:
		return n.left.eval(x) + n.right.eval(x)
	case nodeSub:
		return n.left.eval(x) - n.right.eval(x)
	case nodeMul:
		return n.left.eval(x) * n.right.eval(x)
	case nodeDiv:
		l, r := n.left.eval(x), n.right.eval(x)
		if r == 0 {
			return math.NaN()
		}
		return l / r
	case nodePow:
		return pow(n.left.eval(x), n.right.eval(x))
	case nodeNop:
		return n.left.eval(x)
	default:
		panic("fxsolve: invalid AST node " + n.kind.String())
	}
}

// pow is math.Pow, except that a NaN operand or a zero base with a negative
// exponent is undefined.
func pow(l, r float64) float64 {
	switch {
	case math.IsNaN(l), math.IsNaN(r):
		return math.NaN()
	case l == 0 && r < 0:
		return math.NaN()
	}
	// Negative base with a non-integer exponent is already NaN.
	return math.Pow(l, r)
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.kind {
	case nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b, square)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b, square)
		}
		b.WriteByte('$')
	case nodeNum, nodeVar:
		b.WriteString(n.name)
	case nodeCall:
		b.WriteString(n.name)
		n.left.fmt(b, !square)
	case nodeNeg:
		b.WriteByte('-')
		n.left.fmt(b, !square)
	case nodeAdd:
		n.left.fmt(b, !square)
		b.WriteString(" + ")
		n.right.fmt(b, !square)
	case nodeSub:
		n.left.fmt(b, !square)
		b.WriteString(" - ")
		n.right.fmt(b, !square)
	case nodeMul:
		n.left.fmt(b, !square)
		b.WriteString(" * ")
		n.right.fmt(b, !square)
	case nodeDiv:
		n.left.fmt(b, !square)
		b.WriteString(" / ")
		n.right.fmt(b, !square)
	case nodePow:
		n.left.fmt(b, !square)
		b.WriteString(" ^ ")
		n.right.fmt(b, !square)
	case nodeNop:
		b.WriteByte('+')
		n.left.fmt(b, !square)
	default:
		panic("fxsolve: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
}
