// Package bench provides tools for testing the swarm against benchmark
// optimization functions from
// http://en.wikipedia.org/wiki/Test_functions_for_optimization.
package bench

import (
	"fmt"
	"math"

	"github.com/rwcarlsen/swarmloc"
	"github.com/rwcarlsen/swarmloc/swarm"
)

var (
	sin  = math.Sin
	cos  = math.Cos
	abs  = math.Abs
	exp  = math.Exp
	sqrt = math.Sqrt
)

var AllFuncs = []Func{
	Quadratic{Center: 3, Radius: 10},
	Ackley{},
	CrossTray{},
	Eggholder{},
	HolderTable{},
	Schaffer2{},
	Styblinski{NDim: 1},
	Styblinski{NDim: 10},
	Styblinski{NDim: 30},
	Rosenbrock{NDim: 2},
	Rosenbrock{NDim: 10},
}

type Func interface {
	Eval(v []float64) float64
	Bounds() swarmloc.Bounds
	Optima() []swarmloc.Point
	Name() string
}

// Quadratic is the one dimensional bowl (x-Center)^2 on
// [Center-Radius, Center+Radius].
type Quadratic struct {
	Center float64
	Radius float64
}

func (fn Quadratic) Name() string { return fmt.Sprintf("Quadratic_%v", fn.Center) }

func (fn Quadratic) Eval(v []float64) float64 {
	d := v[0] - fn.Center
	return d * d
}

func (fn Quadratic) Bounds() swarmloc.Bounds {
	return swarmloc.Bounds{{Min: fn.Center - fn.Radius, Max: fn.Center + fn.Radius}}
}

func (fn Quadratic) Optima() []swarmloc.Point {
	return []swarmloc.Point{
		swarmloc.NewPoint([]float64{fn.Center}, 0),
	}
}

type Ackley struct{}

func (fn Ackley) Name() string { return "Ackley" }

func (fn Ackley) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -20*math.Exp(-0.2*math.Sqrt(0.5*(x*x+y*y))) -
		math.Exp(0.5*(math.Cos(2*math.Pi*x)+math.Cos(2*math.Pi*y))) +
		20 + math.E
}

func (fn Ackley) Bounds() swarmloc.Bounds {
	return swarmloc.NewBounds([]float64{-5, -5}, []float64{5, 5})
}

func (fn Ackley) Optima() []swarmloc.Point {
	return []swarmloc.Point{
		swarmloc.NewPoint([]float64{0, 0}, 0),
	}
}

type CrossTray struct{}

func (fn CrossTray) Name() string { return "CrossTray" }

func (fn CrossTray) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -.0001 * math.Pow(abs(sin(x)*sin(y)*exp(abs(100-sqrt(x*x+y*y)/math.Pi)))+1, 0.1)
}

func (fn CrossTray) Bounds() swarmloc.Bounds {
	return swarmloc.NewBounds([]float64{-10, -10}, []float64{10, 10})
}

func (fn CrossTray) Optima() []swarmloc.Point {
	return []swarmloc.Point{
		swarmloc.NewPoint([]float64{1.34941, -1.34941}, -2.06261),
		swarmloc.NewPoint([]float64{1.34941, 1.34941}, -2.06261),
		swarmloc.NewPoint([]float64{-1.34941, 1.34941}, -2.06261),
		swarmloc.NewPoint([]float64{-1.34941, -1.34941}, -2.06261),
	}
}

type Eggholder struct{}

func (fn Eggholder) Name() string { return "Eggholder" }

func (fn Eggholder) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -(y+47)*sin(sqrt(abs(y+x/2+47))) - x*sin(sqrt(abs(x-(y+47))))
}

func (fn Eggholder) Bounds() swarmloc.Bounds {
	return swarmloc.NewBounds([]float64{-512, -512}, []float64{512, 512})
}

func (fn Eggholder) Optima() []swarmloc.Point {
	return []swarmloc.Point{
		swarmloc.NewPoint([]float64{512, 404.2319}, -959.6407),
	}
}

type HolderTable struct{}

func (fn HolderTable) Name() string { return "HolderTable" }

func (fn HolderTable) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return -abs(sin(x) * cos(y) * exp(abs(1-sqrt(x*x+y*y)/math.Pi)))
}

func (fn HolderTable) Bounds() swarmloc.Bounds {
	return swarmloc.NewBounds([]float64{-10, -10}, []float64{10, 10})
}

func (fn HolderTable) Optima() []swarmloc.Point {
	return []swarmloc.Point{
		swarmloc.NewPoint([]float64{8.05502, 9.66459}, -19.2085),
		swarmloc.NewPoint([]float64{-8.05502, 9.66459}, -19.2085),
		swarmloc.NewPoint([]float64{8.05502, -9.66459}, -19.2085),
		swarmloc.NewPoint([]float64{-8.05502, -9.66459}, -19.2085),
	}
}

type Schaffer2 struct{}

func (fn Schaffer2) Name() string { return "Schaffer2" }

func (fn Schaffer2) Eval(v []float64) float64 {
	if !InsideBounds(v, fn) {
		return math.Inf(1)
	}

	x := v[0]
	y := v[1]
	return 0.5 + (math.Pow(sin(x*x-y*y), 2)-0.5)/math.Pow(1+.001*(x*x+y*y), 2)
}

func (fn Schaffer2) Bounds() swarmloc.Bounds {
	return swarmloc.NewBounds([]float64{-100, -100}, []float64{100, 100})
}

func (fn Schaffer2) Optima() []swarmloc.Point {
	return []swarmloc.Point{
		swarmloc.NewPoint([]float64{0, 0}, 0),
	}
}

type Styblinski struct {
	NDim int
}

func (fn Styblinski) Name() string { return fmt.Sprintf("Styblinski_%vD", fn.NDim) }

func (fn Styblinski) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for _, v := range x {
		tot += math.Pow(v, 4) - 16*math.Pow(v, 2) + 5*v
	}
	return tot / 2
}

func (fn Styblinski) Bounds() swarmloc.Bounds {
	b := make(swarmloc.Bounds, fn.NDim)
	for i := range b {
		b[i] = swarmloc.Range{Min: -5, Max: 5}
	}
	return b
}

func (fn Styblinski) Optima() []swarmloc.Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = -2.903534
	}
	return []swarmloc.Point{
		swarmloc.NewPoint(pos, -39.16599*float64(fn.NDim)),
	}
}

type Rosenbrock struct {
	NDim int
}

func (fn Rosenbrock) Name() string { return fmt.Sprintf("Rosenbrock_%vD", fn.NDim) }

func (fn Rosenbrock) Eval(x []float64) float64 {
	if !InsideBounds(x, fn) {
		return math.Inf(1)
	}

	tot := 0.0
	for i := 0; i < fn.NDim-1; i++ {
		tot += 100*math.Pow(x[i+1]-x[i]*x[i], 2) + math.Pow(x[i]-1, 2)
	}
	return tot
}

func (fn Rosenbrock) Bounds() swarmloc.Bounds {
	b := make(swarmloc.Bounds, fn.NDim)
	for i := range b {
		b[i] = swarmloc.Range{Min: -1000, Max: 1000}
	}
	return b
}

func (fn Rosenbrock) Optima() []swarmloc.Point {
	pos := make([]float64, fn.NDim)
	for i := range pos {
		pos[i] = 1
	}
	return []swarmloc.Point{
		swarmloc.NewPoint(pos, 0),
	}
}

// Benchmark minimizes fn with a swarm that converges at spread tol and
// returns the best current point when the swarm stops along with the number
// of epochs and objective evaluations it used.
func Benchmark(fn Func, tol float64, opts ...swarm.Option) (best swarmloc.Point, nepoch, neval int, err error) {
	s, err := swarm.New(fn.Bounds(), swarmloc.Func(fn.Eval), tol, opts...)
	if err != nil {
		return swarmloc.Point{Val: math.Inf(1)}, 0, 0, err
	}
	err = s.Minimize()
	return s.Best(), s.Epoch(), s.Neval(), err
}

// Solved reports whether val is within a fraction tol of fn's optimum (or
// within 0.001 of it, whichever is larger).
func Solved(fn Func, val, tol float64) bool {
	optimum := fn.Optima()[0].Val
	thresh := tol * abs(optimum)
	if 0.001 > thresh {
		thresh = 0.001
	}
	return abs(optimum-val) < thresh
}

func InsideBounds(p []float64, fn Func) bool {
	return fn.Bounds().Contains(p)
}
