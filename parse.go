package fxsolve

import (
	"errors"
	"strconv"
	"strings"
)

// Expr = num | 'x' | Call | Neg | Plus | Add | Sub | Mul | Div | Pow | '(' Expr ')'
// Call = ('sqrt' | 'log10') '(' Expr ')'
// Neg = '-' Expr
// Plus = '+' Expr
// Add = Expr '+' Expr
// Sub = Expr '-' Expr
// Mul = Expr '*' Expr
// Div = Expr '/' Expr
// Pow = Expr '^' Expr | Expr '**' Expr

// Expr is a compiled expression of the variable x. An Expr is immutable and
// safe for concurrent use.
type Expr struct {
	// n is the root node of the expression.
	n *node
}

// Compile parses an expression so it can be evaluated. Every problem with the
// input, including unknown names and incomplete arithmetic like "4+", is
// reported here as an *InvalidExpressionError; an Expr that compiles never
// fails to evaluate because of its syntax.
func Compile(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &InvalidExpressionError{Err: ErrEmptyExpression}
	}
	scan := lex(strings.NewReader(src))
	n, err := parseterm(scan, exprprec)
	if err != nil {
		return nil, &InvalidExpressionError{Err: err}
	}
	if tok := scan.must(); tok.kind != tokenEOF {
		return nil, &InvalidExpressionError{Err: itShouldNotHaveEndedThisWay(tok)}
	}
	return &Expr{n: n}, nil
}

// MustCompile is like Compile but panics if the expression is invalid.
func MustCompile(src string) *Expr {
	e, err := Compile(src)
	if err != nil {
		panic("fxsolve: Compile(" + strconv.Quote(src) + "): " + err.Error())
	}
	return e
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, until operator) (*node, error) {
	n, err := parselhs(scan, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenNum, tokenIdent, tokenOpen:
			// Terms are never multiplied implicitly.
			return nil, &MissingOperatorError{Col: tok.pos, Text: tok.text}
		case tokenOp:
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				end := scan.must()
				return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
			}
			n = &node{kind: prec.op, left: n, right: rhs}
		case tokenClose, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("fxsolve: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary and
// any encountered token must be valid as the start of a subexpression.
func parselhs(scan *lexer, until operator) (*node, error) {
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			// The lexer only produces digits with at most one point.
			panic("fxsolve: invalid number: " + tok.text + " (" + err.Error() + ")")
		}
		// Out of range literals are infinite.
		return &node{kind: nodeNum, name: tok.text, val: v}, nil
	case tokenIdent:
		if tok.text == Var {
			return &node{kind: nodeVar, name: tok.text}, nil
		}
		fn := builtins[tok.text]
		if fn == nil {
			panic("fxsolve: lexer accepted unknown identifier " + strconv.Quote(tok.text))
		}
		return parsecall(scan, fn, tok.text)
	case tokenOp:
		prec := unop(tok.text)
		if prec.op == nodeNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			end := scan.must()
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return &node{kind: prec.op, left: rhs}, nil
	case tokenOpen:
		rhs, err := parseterm(scan, exprprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose {
			return nil, itShouldNotHaveEndedThisWay(end)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		return rhs, nil
	case tokenClose:
		// Let the caller decide what an empty subexpression means.
		scan.push(tok)
		return nil, nil
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("fxsolve: unknown token: " + tok.String())
	}
}

// parsecall parses the bracketed argument to a call of fn.
func parsecall(scan *lexer, fn *builtin, name string) (*node, error) {
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenOpen {
		return nil, &CallError{Col: tok.pos, Func: name, Bare: true}
	}
	arg, err := parseterm(scan, exprprec)
	if err != nil {
		return nil, err
	}
	end := scan.must()
	if end.kind != tokenClose {
		return nil, itShouldNotHaveEndedThisWay(end)
	}
	if arg == nil {
		return nil, &CallError{Col: end.pos, Func: name}
	}
	return &node{kind: nodeCall, name: name, fn: fn, left: arg}, nil
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. EOF means an open bracket was never
// closed; a close bracket at the top level was never opened.
func itShouldNotHaveEndedThisWay(tok lexToken) error {
	switch tok.kind {
	case tokenEOF:
		return &BracketError{Col: tok.pos, Left: "("}
	case tokenClose:
		return &BracketError{Col: tok.pos, Right: tok.text}
	default:
		panic("fxsolve: it really should not have ended this way: " + tok.String())
	}
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b, false)
	return b.String()
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, nodeAdd}
	case "-":
		return operator{1, false, nodeSub}
	case "*":
		return operator{5, false, nodeMul}
	case "/":
		return operator{5, false, nodeDiv}
	case "^", "**":
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, nodeNop}
	case "-":
		return operator{10, true, nodeNeg}
	default:
		return operator{}
	}
}

// exprprec is the precedence required to parse an entire subexpression.
var exprprec = operator{-128, true, nodeNone}
