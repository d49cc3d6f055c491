package swarmloc

import (
	"math"
)

// Rng is the source of uniform random numbers in [0, 1) used to initialize
// and move particles.  *math/rand.Rand satisfies it.
type Rng interface {
	Float64() float64
}

// RandPop generates n randomly positioned points in the box b.  Points are
// generated one after another, each coordinate drawn in dimension order, so
// the same rng state always gives the same population.  Returned points have
// their values initialized to +infinity.
func RandPop(rng Rng, n int, b Bounds) []Point {
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		pos := make([]float64, len(b))
		for j, r := range b {
			pos[j] = r.Min + rng.Float64()*(r.Max-r.Min)
		}
		points[i] = Point{pos: pos, Val: math.Inf(1)}
	}
	return points
}
