package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/fxsolve"
	"github.com/zephyrtronium/fxsolve/plot"
)

func main() {
	log.SetFlags(0)
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, log.Default()))
}

// errMissing is reported when either function is absent or blank.
var errMissing = errors.New("Both function inputs must be provided.")

type config struct {
	r       fxsolve.Range
	widen   int
	timeout time.Duration
	verb    string
	echo    bool

	plot          string
	width, height int
	span          float64

	in   string
	jobs int
}

// run executes the command with the given arguments and returns the exit
// status. Results go to stdout, errors to lg.
func run(args []string, stdin io.Reader, stdout io.Writer, lg *log.Logger) int {
	var cfg config
	fs := flag.NewFlagSet("fxsolve", flag.ContinueOnError)
	fs.SetOutput(lg.Writer())
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: fxsolve [flags] f1 f2\n       fxsolve [flags] -in file")
		fs.PrintDefaults()
	}
	def := fxsolve.DefaultRange()
	fs.Float64Var(&cfg.r.Min, "min", def.Min, "left end of the search range")
	fs.Float64Var(&cfg.r.Max, "max", def.Max, "right end of the search range")
	fs.IntVar(&cfg.r.Steps, "steps", def.Steps, "number of samples over the search range")
	fs.IntVar(&cfg.widen, "widen", 0, "times to double the search range while no intersections are found")
	fs.DurationVar(&cfg.timeout, "timeout", 0, "time limit for each search (0 for none)")
	fs.StringVar(&cfg.verb, "fmt", "%g", "result formatting string for each coordinate")
	fs.BoolVar(&cfg.echo, "echo", false, "print parse trees")
	fs.StringVar(&cfg.plot, "plot", "", "write a PNG plot of both functions and their intersections")
	fs.IntVar(&cfg.width, "width", 800, "plot width in pixels")
	fs.IntVar(&cfg.height, "height", 600, "plot height in pixels")
	fs.Float64Var(&cfg.span, "span", 5, "plot this far on either side of the intersections")
	fs.StringVar(&cfg.in, "in", "", `input file with one "f1 ; f2" pair per line ("-" for stdin)`)
	fs.IntVar(&cfg.jobs, "j", 4, "number of pairs from -in to solve concurrently")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if cfg.jobs < 1 {
		lg.Printf("Error: -j (%d) must be positive", cfg.jobs)
		return 2
	}
	if !(cfg.span > 0) {
		lg.Printf("Error: -span (%g) must be positive", cfg.span)
		return 2
	}

	if cfg.in != "" {
		if fs.NArg() != 0 {
			lg.Print("Error: functions cannot be given with -in")
			return 2
		}
		var plotting []string
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "plot", "width", "height", "span":
				plotting = append(plotting, "-"+f.Name)
			}
		})
		if len(plotting) != 0 {
			lg.Printf("Error: %s cannot be used with -in", strings.Join(plotting, ", "))
			return 2
		}
		in := stdin
		if cfg.in != "-" {
			f, err := os.Open(cfg.in)
			if err != nil {
				lg.Printf("Error: %v", err)
				return 1
			}
			defer f.Close()
			in = f
		}
		return batch(context.Background(), cfg, in, stdout)
	}

	var f1, f2 string
	if fs.NArg() > 0 {
		f1 = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		f2 = fs.Arg(1)
	}
	if fs.NArg() > 2 {
		lg.Printf("Error: unexpected arguments after f2: %q", fs.Args()[2:])
		return 2
	}
	res, err := solve(context.Background(), cfg, f1, f2)
	if err != nil {
		lg.Printf("Error: %v", err)
		return 1
	}
	res.write(stdout, cfg)
	if cfg.plot != "" {
		if err := writePlot(cfg, res); err != nil {
			lg.Printf("Error: %v", err)
			return 1
		}
	}
	return 0
}

// result is a solved pair of functions.
type result struct {
	e1, e2 *fxsolve.Expr
	roots  []fxsolve.Root
	// r is the range that was searched last.
	r fxsolve.Range
}

func solve(ctx context.Context, cfg config, src1, src2 string) (*result, error) {
	if strings.TrimSpace(src1) == "" || strings.TrimSpace(src2) == "" {
		return nil, errMissing
	}
	e1, err := fxsolve.Compile(src1)
	if err != nil {
		return nil, fmt.Errorf("f1: %w", err)
	}
	e2, err := fxsolve.Compile(src2)
	if err != nil {
		return nil, fmt.Errorf("f2: %w", err)
	}
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}
	roots, r, err := fxsolve.Widen(ctx, e1.Func(), e2.Func(), cfg.r, cfg.widen)
	if err != nil {
		return nil, err
	}
	return &result{e1: e1, e2: e2, roots: roots, r: r}, nil
}

func (res *result) write(w io.Writer, cfg config) {
	if cfg.echo {
		fmt.Fprintf(w, "f1: %v\nf2: %v\n", res.e1, res.e2)
	}
	if len(res.roots) == 0 {
		fmt.Fprintf(w, "No solution found in %v\n", res.r)
		return
	}
	verb := "(" + cfg.verb + ", " + cfg.verb + ")\n"
	for _, r := range res.roots {
		fmt.Fprintf(w, verb, r.X, r.Y)
	}
}

// window is the x interval to plot: span on either side of the roots, or the
// searched range if there are none.
func (res *result) window(span float64) fxsolve.Range {
	if len(res.roots) == 0 {
		w := res.r
		w.Steps = 0
		return w
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range res.roots {
		lo = math.Min(lo, r.X)
		hi = math.Max(hi, r.X)
	}
	return fxsolve.Range{}.Around(lo, hi, span)
}

// writePlot draws the result and writes it to cfg.plot. The file is only
// created once drawing has succeeded.
func writePlot(cfg config, res *result) error {
	curves := []plot.Curve{
		{Label: "f1(x) = " + res.e1.String(), F: res.e1.Func()},
		{Label: "f2(x) = " + res.e2.String(), F: res.e2.Func()},
	}
	opts := plot.Options{Width: cfg.width, Height: cfg.height, Window: res.window(cfg.span)}
	img, err := plot.Draw(curves, res.roots, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(cfg.plot)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(cfg.plot)
		return err
	}
	return f.Close()
}

// batch solves each "f1 ; f2" line of in, up to cfg.jobs at a time, and
// writes the results in input order. Blank lines and lines starting with #
// are skipped. A failed line is reported in place and makes the exit status
// 1 once every line is done.
func batch(ctx context.Context, cfg config, in io.Reader, stdout io.Writer) int {
	type job struct {
		line int
		src  string
		out  bytes.Buffer
		err  error
	}
	var jobs []*job
	sc := bufio.NewScanner(in)
	for n := 1; sc.Scan(); n++ {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		jobs = append(jobs, &job{line: n, src: s})
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(stdout, "Error: reading input: %v\n", err)
		return 1
	}

	var g errgroup.Group
	g.SetLimit(cfg.jobs)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			src1, src2, ok := strings.Cut(j.src, ";")
			if !ok {
				j.err = fmt.Errorf(`expected "f1 ; f2", got %q`, j.src)
				return nil
			}
			res, err := solve(ctx, cfg, src1, src2)
			if err != nil {
				j.err = err
				return nil
			}
			res.write(&j.out, cfg)
			return nil
		})
	}
	g.Wait()

	status := 0
	for _, j := range jobs {
		fmt.Fprintf(stdout, "# %d: %s\n", j.line, j.src)
		if j.err != nil {
			fmt.Fprintf(stdout, "Error: %v\n", j.err)
			status = 1
			continue
		}
		stdout.Write(j.out.Bytes())
	}
	return status
}
