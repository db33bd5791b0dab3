package fxsolve

import (
	"context"
	"math"
	"strconv"
)

const (
	// NearZero is the bracket width below which bisection stops.
	NearZero = 1e-9
	// MaxBisections caps the number of halvings used to refine one root.
	MaxBisections = 100
)

// Range is an interval to search for intersections and the number of evenly
// spaced samples to take over it, including both ends.
type Range struct {
	Min, Max float64
	Steps    int
}

// DefaultRange returns the range [-10, 10] with 5000 samples.
func DefaultRange() Range {
	return Range{Min: -10, Max: 10, Steps: 5000}
}

// Validate checks that the range has finite bounds and width with Min < Max
// and at least two samples.
func (r Range) Validate() error {
	switch {
	case math.IsNaN(r.Min) || math.IsInf(r.Min, 0) || math.IsNaN(r.Max) || math.IsInf(r.Max, 0):
		return &RangeError{Range: r, Reason: "bounds must be finite"}
	case !(r.Min < r.Max):
		return &RangeError{Range: r, Reason: "min must be less than max"}
	case math.IsInf(r.Max-r.Min, 0):
		return &RangeError{Range: r, Reason: "range is too wide"}
	case r.Steps < 2:
		return &RangeError{Range: r, Reason: "need at least 2 steps"}
	}
	return nil
}

// Step is the distance between adjacent samples.
func (r Range) Step() float64 {
	return (r.Max - r.Min) / float64(r.Steps-1)
}

// Around returns a range with the same number of steps covering [lo-span,
// hi+span].
func (r Range) Around(lo, hi, span float64) Range {
	return Range{Min: lo - span, Max: hi + span, Steps: r.Steps}
}

// widen doubles the range about its center.
func (r Range) widen() Range {
	c, h := r.Min/2+r.Max/2, r.Max/2-r.Min/2
	return Range{Min: c - 2*h, Max: c + 2*h, Steps: r.Steps}
}

func (r Range) String() string {
	return "[" + strconv.FormatFloat(r.Min, 'g', -1, 64) + ", " + strconv.FormatFloat(r.Max, 'g', -1, 64) + "]"
}

// RangeError is an error indicating an unusable Range.
type RangeError struct {
	Range  Range
	Reason string
}

func (err *RangeError) Error() string {
	return "invalid search range " + err.Range.String() + " with " + strconv.Itoa(err.Range.Steps) + " steps: " + err.Reason
}

// Root is a point where two functions intersect. Y is the first function's
// value at X.
type Root struct {
	X, Y float64
}

// Intersections finds the points in r where f1 and f2 are equal. See
// IntersectionsContext.
func Intersections(f1, f2 Func, r Range) ([]Root, error) {
	return IntersectionsContext(context.Background(), f1, f2, r)
}

// IntersectionsContext finds the points in r where f1 and f2 are equal, in
// ascending order of x.
//
// The difference f1 - f2 is sampled at r.Steps evenly spaced points. A sample
// where the difference is exactly zero is a root. Between adjacent samples
// whose differences have opposite signs, the crossing is refined by bisection
// to within NearZero. Pairs with an undefined sample are skipped, so crossings
// in undefined regions, crossings narrower than r.Step(), and points where the
// functions touch without crossing can be missed.
//
// A sample where the difference is exactly zero borders two pairs of samples
// but is reported only once.
//
// Finding no intersections is not an error. The error is non-nil only if r is
// invalid, ctx is done before sampling finishes, or f1 or f2 returns an error,
// in which case that error is returned as is.
func IntersectionsContext(ctx context.Context, f1, f2 Func, r Range) ([]Root, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	g := difference(f1, f2)
	xs, gs, err := sample(ctx, g, r)
	if err != nil {
		return nil, err
	}
	return scan(xs, gs, f1, g)
}

// difference returns f1 - f2.
func difference(f1, f2 Func) Func {
	return func(x float64) (float64, error) {
		a, err := f1(x)
		if err != nil {
			return 0, err
		}
		b, err := f2(x)
		if err != nil {
			return 0, err
		}
		return a - b, nil
	}
}

// sample evaluates g at r.Steps evenly spaced points. The last point is
// exactly r.Max.
func sample(ctx context.Context, g Func, r Range) (xs, gs []float64, err error) {
	xs = make([]float64, r.Steps)
	gs = make([]float64, r.Steps)
	step := r.Step()
	for i := range xs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		x := r.Min + float64(i)*step
		if i == len(xs)-1 {
			x = r.Max
		}
		y, err := g(x)
		if err != nil {
			return nil, nil, err
		}
		xs[i], gs[i] = x, y
	}
	return xs, gs, nil
}

// scan finds a root for each exact zero and each sign change in the samples.
func scan(xs, gs []float64, f1, g Func) ([]Root, error) {
	var roots []Root
	add := func(x float64) error {
		// A zero sample borders two pairs; report it once.
		if len(roots) > 0 && roots[len(roots)-1].X == x {
			return nil
		}
		y, err := f1(x)
		if err != nil {
			return err
		}
		roots = append(roots, Root{X: x, Y: y})
		return nil
	}
	for i := 0; i+1 < len(xs); i++ {
		g0, g1 := gs[i], gs[i+1]
		var err error
		switch {
		case math.IsNaN(g0), math.IsNaN(g1):
			continue
		case g0 == 0:
			err = add(xs[i])
		case g1 == 0:
			err = add(xs[i+1])
		case (g0 < 0) != (g1 < 0):
			var x float64
			x, err = bisect(xs[i], xs[i+1], g0, g)
			if err == nil {
				err = add(x)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return roots, nil
}

// bisect narrows [l, r] around a sign change of g, where gl is g(l). The
// sign of gl stays the sign at the left end throughout, so it is not
// recomputed. If g is undefined at a midpoint, that midpoint is the result.
func bisect(l, r, gl float64, g Func) (float64, error) {
	for i := 0; i < MaxBisections; i++ {
		m := (l + r) / 2
		gm, err := g(m)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(gm) {
			break
		}
		if gm == 0 || math.Abs(r-l) < NearZero {
			return m, nil
		}
		if (gl < 0) != (gm < 0) {
			r = m
		} else {
			l = m
		}
	}
	return (l + r) / 2, nil
}

// Widen searches for intersections in r. While none are found, it retries
// with the range doubled about its center, up to limit times. The result
// includes the range in which the roots were found, or the last range
// searched if there are none.
func Widen(ctx context.Context, f1, f2 Func, r Range, limit int) ([]Root, Range, error) {
	for i := 0; ; i++ {
		roots, err := IntersectionsContext(ctx, f1, f2, r)
		if err != nil || len(roots) > 0 || i >= limit {
			return roots, r, err
		}
		w := r.widen()
		if w.Validate() != nil {
			// Doubling overflowed.
			return roots, r, nil
		}
		r = w
	}
}
