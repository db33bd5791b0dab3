// Package fxsolve finds where two functions of one variable intersect.
//
// Functions are written the way you'd type them into a calculator: "x^2 - 4",
// "3*x - 6", "sqrt(x) / 2", "log10(x + 1)". Compile checks an expression
// against a small fixed grammar up front. The only names it knows are the
// variable x and the functions sqrt and log10, so a compiled expression can
// do nothing but arithmetic on x. Values outside a function's domain, like
// 1/0 or sqrt(-1), evaluate to NaN instead of failing.
//
// Intersections samples the difference of two functions over a Range and
// refines every sign change it sees by bisection. Any Func works, compiled or
// not.
//
// Package plot draws the result as a PNG, and cmd/fxsolve wraps both for the
// command line.
package fxsolve
