// Package swarmloc holds the types shared by the swarm optimizer and its
// callers: points, search bounds, objective functions and the evaluators that
// call them.
package swarmloc

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cespare/xxhash/v2"
)

type Point struct {
	pos []float64
	Val float64
}

func NewPoint(pos []float64, val float64) Point {
	cpos := make([]float64, len(pos))
	copy(cpos, pos)
	return Point{pos: cpos, Val: val}
}

func (p Point) At(i int) float64 { return p.pos[i] }

func (p Point) Len() int { return len(p.pos) }

func (p Point) Pos() []float64 {
	pos := make([]float64, len(p.pos))
	copy(pos, p.pos)
	return pos
}

func (p Point) String() string { return fmt.Sprintf("%v at %v", p.Val, p.pos) }

// Hash returns a 64 bit digest of p's position (not its value).
func (p Point) Hash() uint64 {
	data := make([]byte, p.Len()*8)
	for i := 0; i < p.Len(); i++ {
		binary.BigEndian.PutUint64(data[i*8:], math.Float64bits(p.At(i)))
	}
	return xxhash.Sum64(data)
}

type Objectiver interface {
	// Objective evaluates the variables in v and returns the objective
	// function value.  The objective function must be framed so that lower
	// values are better and must return the same value every time it is
	// called with the same v. If the evaluation fails, positive infinity
	// should be returned along with an error.
	Objective(v []float64) (float64, error)
}

// Func adapts an ordinary function to the Objectiver interface.
type Func func([]float64) float64

func (fn Func) Objective(v []float64) (float64, error) { return fn(v), nil }

type Evaler interface {
	// Eval evaluates each point using obj and returns the values and number
	// of function evaluations n.  Unevaluated points should not be returned
	// in the results slice.
	Eval(obj Objectiver, points ...Point) (results []Point, n int, err error)
}

// SerialEvaler evaluates points one after another in the order given.
type SerialEvaler struct {
	ContinueOnErr bool
}

func (ev SerialEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	results = make([]Point, 0, len(points))
	var firsterr error
	for _, p := range points {
		p.Val, err = obj.Objective(p.pos)
		results = append(results, p)
		if err != nil {
			if !ev.ContinueOnErr {
				return results, len(results), err
			} else if firsterr == nil {
				firsterr = err
			}
		}
	}
	return results, len(results), firsterr
}

// CacheEvaler wraps another Evaler and remembers the value of every position
// it has successfully evaluated.  Points seen before are not passed on to
// the underlying Evaler.  It relies on the objective being deterministic.
type CacheEvaler struct {
	ev    Evaler
	cache map[uint64]float64
	Hits  int
}

func NewCacheEvaler(ev Evaler) *CacheEvaler {
	if ev == nil {
		ev = SerialEvaler{}
	}
	return &CacheEvaler{
		ev:    ev,
		cache: map[uint64]float64{},
	}
}

func (ev *CacheEvaler) Eval(obj Objectiver, points ...Point) (results []Point, n int, err error) {
	results = make([]Point, len(points))
	copy(results, points)

	fromnew := make([]int, 0, len(points))
	newp := make([]Point, 0, len(points))
	for i, p := range points {
		if val, ok := ev.cache[p.Hash()]; ok {
			results[i].Val = val
			ev.Hits++
		} else {
			fromnew = append(fromnew, i)
			newp = append(newp, p)
		}
	}

	newresults, n, err := ev.ev.Eval(obj, newp...)
	for i, p := range newresults {
		results[fromnew[i]].Val = p.Val
		if err == nil {
			ev.cache[p.Hash()] = p.Val
		}
	}

	// shrink if error resulted in fewer new results being returned
	if len(newresults) < len(fromnew) {
		results = results[:fromnew[len(newresults)]]
	}
	return results, n, err
}

// ObjectivePrinter writes every evaluation it performs to W as a line
// holding the evaluation count, the position and the value.
type ObjectivePrinter struct {
	Objectiver
	W     io.Writer
	Count int
}

func NewObjectivePrinter(obj Objectiver, w io.Writer) *ObjectivePrinter {
	return &ObjectivePrinter{Objectiver: obj, W: w}
}

func (op *ObjectivePrinter) Objective(v []float64) (float64, error) {
	val, err := op.Objectiver.Objective(v)

	op.Count++
	fmt.Fprint(op.W, op.Count, " ")
	for _, x := range v {
		fmt.Fprint(op.W, x, " ")
	}
	fmt.Fprintln(op.W, "    ", val)

	return val, err
}
