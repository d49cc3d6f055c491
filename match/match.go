// Package match locates a small model image inside a larger target image by
// minimizing their pixel dissimilarity with a particle swarm.
//
// Images are grayscale matrices with one element per pixel, row index first.
// A search position is the pair (x, y) where x is the column and y the row of
// the top left corner of the target window compared against the model.
// Fractional positions are truncated toward zero.
package match

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/rwcarlsen/swarmloc"
	"github.com/rwcarlsen/swarmloc/swarm"
)

const (
	// DefaultTol is the position spread below which a localization swarm is
	// considered converged.
	DefaultTol = 0.5
	// DefaultCandidates is the number of best evaluated positions
	// remembered by NewSwarm.
	DefaultCandidates = 10
)

// Dissimilarity returns the Frobenius norm of the difference between model
// and the window of target whose top left corner is at column x and row y.
// Windows that do not fit inside target have infinite dissimilarity.
func Dissimilarity(x, y float64, model, target *mat.Dense) float64 {
	i, j := int(y), int(x)
	h, w := model.Dims()
	r, c := target.Dims()
	if i < 0 || j < 0 || i+h > r || j+w > c {
		return math.Inf(1)
	}

	var diff mat.Dense
	diff.Sub(target.Slice(i, i+h, j, j+w), model)
	return mat.Norm(&diff, 2)
}

// Objective returns the dissimilarity of model against target as a function
// of the position vector (x, y).
func Objective(model, target *mat.Dense) swarmloc.Objectiver {
	return swarmloc.Func(func(v []float64) float64 {
		return Dissimilarity(v[0], v[1], model, target)
	})
}

// SearchBounds returns the box of window positions that keep model inside
// target.
func SearchBounds(model, target *mat.Dense) (swarmloc.Bounds, error) {
	h, w := model.Dims()
	r, c := target.Dims()
	if h > r || w > c {
		return nil, fmt.Errorf("%w: model (%vx%v) larger than target (%vx%v)", swarmloc.ConfigErr, w, h, c, r)
	}
	return swarmloc.Bounds{
		{Min: 0, Max: float64(c - w)},
		{Min: 0, Max: float64(r - h)},
	}, nil
}

// PixelEvaler truncates every position to whole pixels before handing it to
// the wrapped Evaler.  Since the dissimilarity only depends on the whole
// pixel offset this changes no values, but it lets a CacheEvaler recognize
// particles sitting on the same pixel.
type PixelEvaler struct {
	swarmloc.Evaler
}

func (ev PixelEvaler) Eval(obj swarmloc.Objectiver, points ...swarmloc.Point) (results []swarmloc.Point, n int, err error) {
	snapped := make([]swarmloc.Point, len(points))
	for i, p := range points {
		pos := p.Pos()
		for j := range pos {
			pos[j] = math.Trunc(pos[j])
		}
		snapped[i] = swarmloc.NewPoint(pos, p.Val)
	}

	vals, n, err := ev.Evaler.Eval(obj, snapped...)
	results = make([]swarmloc.Point, len(vals))
	for i, p := range vals {
		results[i] = swarmloc.NewPoint(points[i].Pos(), p.Val)
	}
	return results, n, err
}

// NewSwarm builds a swarm searching for model inside target.  By default
// evaluations are cached per pixel and the DefaultCandidates best positions
// are archived; opts are applied after these defaults.
func NewSwarm(model, target *mat.Dense, tol float64, opts ...swarm.Option) (*swarm.Swarm, error) {
	b, err := SearchBounds(model, target)
	if err != nil {
		return nil, err
	}

	defaults := []swarm.Option{
		swarm.Evaler(PixelEvaler{swarmloc.NewCacheEvaler(nil)}),
		swarm.Archive(DefaultCandidates),
	}
	return swarm.New(b, Objective(model, target), tol, append(defaults, opts...)...)
}

// Candidate is a window position and its dissimilarity.
type Candidate struct {
	X, Y int
	Val  float64
}

type Result struct {
	Candidate
	// Converged is false if the swarm stopped at its epoch cap instead.
	Converged bool
	Epochs    int
	Neval     int
	// Candidates holds the best distinct window positions the swarm
	// evaluated, best first.  It is empty unless the swarm archived points.
	Candidates []Candidate
}

// Summarize reports the current best window position of s.
func Summarize(s *swarm.Swarm) Result {
	best := s.Best()
	r := Result{
		Candidate: Candidate{X: int(best.At(0)), Y: int(best.At(1)), Val: best.Val},
		Converged: s.Spread() <= s.Tol(),
		Epochs:    s.Epoch(),
		Neval:     s.Neval(),
	}

	seen := map[[2]int]bool{}
	for _, p := range s.Archived() {
		c := Candidate{X: int(p.At(0)), Y: int(p.At(1)), Val: p.Val}
		if !seen[[2]int{c.X, c.Y}] {
			seen[[2]int{c.X, c.Y}] = true
			r.Candidates = append(r.Candidates, c)
		}
	}
	return r
}

// Locate runs a swarm built by NewSwarm to completion and summarizes it.
func Locate(model, target *mat.Dense, tol float64, opts ...swarm.Option) (Result, error) {
	s, err := NewSwarm(model, target, tol, opts...)
	if err != nil {
		return Result{}, err
	}
	if err := s.Minimize(); err != nil {
		return Summarize(s), err
	}
	return Summarize(s), nil
}
