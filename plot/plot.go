// Package plot draws the curves of an intersection problem and the roots
// found between them as a PNG image.
package plot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/zephyrtronium/fxsolve"
)

// MinSize is the smallest width or height Render accepts.
const MinSize = 32

// ErrCanvasSize is returned by Render when the requested image is smaller
// than MinSize in either dimension.
var ErrCanvasSize = fmt.Errorf("plot: width and height must be at least %d pixels", MinSize)

// ErrYInterval is returned by Render when YMin or YMax is not finite or YMin
// is greater than YMax.
var ErrYInterval = errors.New("plot: y interval must be finite with YMin <= YMax")

var (
	// Background fills the canvas.
	Background color.Color = color.White
	// AxisColor draws the lines x = 0 and y = 0 when they are visible.
	AxisColor color.Color = color.Gray{Y: 0xa0}
	// RootColor marks each root.
	RootColor color.Color = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	// TextColor draws root labels.
	TextColor color.Color = color.Black
)

// palette colors curves without their own Color, in order.
var palette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

// Curve is one function to draw.
type Curve struct {
	// Label names the curve in the legend. Empty labels are not drawn.
	Label string
	// F is the function to draw.
	F fxsolve.Func
	// Color is the color of the curve. If nil, a color is chosen from a
	// fixed palette by the curve's index.
	Color color.Color
}

// Options configures Render.
type Options struct {
	// Width and Height are the image dimensions in pixels.
	Width, Height int
	// Window is the interval of x to draw. If Window.Steps is zero, each
	// curve is sampled once per pixel column.
	Window fxsolve.Range
	// YMin and YMax are the interval of y to draw. If they are equal, the
	// interval is chosen from the sampled values and the roots.
	YMin, YMax float64
}

// DefaultOptions returns an 800x600 plot of the default search range with
// automatic y scaling.
func DefaultOptions() Options {
	w := fxsolve.DefaultRange()
	w.Steps = 0
	return Options{Width: 800, Height: 600, Window: w}
}

// Render draws curves and roots and writes the result to w as a PNG.
// Segments of a curve with an undefined or infinite end are not drawn. An
// error from any curve's function stops rendering and is returned as is.
func Render(w io.Writer, curves []Curve, roots []fxsolve.Root, opts Options) error {
	img, err := Draw(curves, roots, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Draw is like Render but returns the image instead of encoding it.
func Draw(curves []Curve, roots []fxsolve.Root, opts Options) (*image.RGBA, error) {
	if opts.Width < MinSize || opts.Height < MinSize {
		return nil, ErrCanvasSize
	}
	win := opts.Window
	if win.Steps == 0 {
		win.Steps = opts.Width
	}
	if err := win.Validate(); err != nil {
		return nil, err
	}
	if !finite(opts.YMin) || !finite(opts.YMax) || opts.YMin > opts.YMax {
		return nil, ErrYInterval
	}

	samples := make([][]float64, len(curves))
	xs := make([]float64, win.Steps)
	step := win.Step()
	for i := range xs {
		xs[i] = win.Min + float64(i)*step
	}
	xs[len(xs)-1] = win.Max
	for i, c := range curves {
		ys := make([]float64, len(xs))
		for j, x := range xs {
			y, err := c.F(x)
			if err != nil {
				return nil, err
			}
			ys[j] = y
		}
		samples[i] = ys
	}

	lo, hi := opts.YMin, opts.YMax
	if lo == hi {
		lo, hi = autoscale(samples, roots)
	}
	fr := frame{
		img:  image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		xmin: win.Min,
		xmax: win.Max,
		ymin: lo,
		ymax: hi,
	}
	draw.Draw(fr.img, fr.img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	fr.axes()
	for i, c := range curves {
		col := c.Color
		if col == nil {
			col = palette[i%len(palette)]
		}
		fr.curve(xs, samples[i], col)
	}
	for _, r := range roots {
		fr.root(r)
	}
	fr.legend(curves)
	return fr.img, nil
}

// autoscale chooses a y interval covering the middle 90% of the defined
// samples and every root, padded by a tenth of its height on each side.
func autoscale(samples [][]float64, roots []fxsolve.Root) (lo, hi float64) {
	var ys []float64
	for _, s := range samples {
		for _, y := range s {
			if finite(y) {
				ys = append(ys, y)
			}
		}
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	if len(ys) > 0 {
		sort.Float64s(ys)
		lo = ys[int(0.05*float64(len(ys)-1))]
		hi = ys[int(0.95*float64(len(ys)-1))]
	}
	for _, r := range roots {
		if finite(r.Y) {
			lo = math.Min(lo, r.Y)
			hi = math.Max(hi, r.Y)
		}
	}
	switch {
	case lo > hi:
		// Nothing is defined.
		return -1, 1
	case lo == hi:
		return lo - 1, hi + 1
	}
	pad := (hi - lo) / 10
	return lo - pad, hi + pad
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// frame maps plot coordinates onto an image.
type frame struct {
	img        *image.RGBA
	xmin, xmax float64
	ymin, ymax float64
}

// px is the pixel column of x.
func (f *frame) px(x float64) float64 {
	w := f.img.Bounds().Dx() - 1
	return (x - f.xmin) / (f.xmax - f.xmin) * float64(w)
}

// py is the pixel row of y. Rows grow downward.
func (f *frame) py(y float64) float64 {
	h := f.img.Bounds().Dy() - 1
	return (f.ymax - y) / (f.ymax - f.ymin) * float64(h)
}

func (f *frame) point(x, y float64) image.Point {
	return image.Pt(int(math.Round(f.px(x))), int(math.Round(f.py(y))))
}

func (f *frame) axes() {
	b := f.img.Bounds()
	if f.xmin <= 0 && 0 <= f.xmax {
		c := f.point(0, 0).X
		for y := b.Min.Y; y < b.Max.Y; y++ {
			f.img.Set(c, y, AxisColor)
		}
	}
	if f.ymin <= 0 && 0 <= f.ymax {
		r := f.point(0, 0).Y
		for x := b.Min.X; x < b.Max.X; x++ {
			f.img.Set(x, r, AxisColor)
		}
	}
}

func (f *frame) curve(xs, ys []float64, col color.Color) {
	h := float64(f.img.Bounds().Dy())
	for i := 0; i+1 < len(xs); i++ {
		y0, y1 := ys[i], ys[i+1]
		if !finite(y0) || !finite(y1) {
			continue
		}
		r0, r1 := f.py(y0), f.py(y1)
		if r0 < 0 && r1 < 0 || r0 >= h && r1 >= h {
			continue
		}
		// Keep rows near the canvas so that steep segments stay short.
		r0 = math.Max(-1, math.Min(h, r0))
		r1 = math.Max(-1, math.Min(h, r1))
		p := image.Pt(int(math.Round(f.px(xs[i]))), int(math.Round(r0)))
		q := image.Pt(int(math.Round(f.px(xs[i+1]))), int(math.Round(r1)))
		f.line(p, q, col)
	}
}

// line draws from p to q inclusive using Bresenham's algorithm. Points
// outside the image are ignored by Set.
func (f *frame) line(p, q image.Point, col color.Color) {
	dx, dy := abs(q.X-p.X), -abs(q.Y-p.Y)
	sx, sy := 1, 1
	if p.X > q.X {
		sx = -1
	}
	if p.Y > q.Y {
		sy = -1
	}
	e := dx + dy
	for {
		f.img.Set(p.X, p.Y, col)
		if p == q {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			p.X += sx
		}
		if e2 <= dx {
			e += dx
			p.Y += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// root marks r with a dot and labels it with its coordinates.
func (f *frame) root(r fxsolve.Root) {
	if !finite(r.Y) {
		return
	}
	c := f.point(r.X, r.Y)
	const rad = 3
	for y := -rad; y <= rad; y++ {
		for x := -rad; x <= rad; x++ {
			if x*x+y*y <= rad*rad {
				f.img.Set(c.X+x, c.Y+y, RootColor)
			}
		}
	}
	f.text(c.X+rad+3, c.Y-rad-1, fmt.Sprintf("(%.4g, %.4g)", r.X, r.Y), TextColor)
}

// legend writes each curve's label in its color at the top left.
func (f *frame) legend(curves []Curve) {
	face := basicfont.Face7x13
	y := face.Metrics().Ascent.Ceil() + 4
	for i, c := range curves {
		if c.Label == "" {
			continue
		}
		col := c.Color
		if col == nil {
			col = palette[i%len(palette)]
		}
		f.text(6, y, c.Label, col)
		y += face.Metrics().Height.Ceil()
	}
}

// text draws s with its baseline starting at (x, y).
func (f *frame) text(x, y int, s string, col color.Color) {
	d := font.Drawer{
		Dst:  f.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
