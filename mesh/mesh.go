// Package mesh projects arbitrary points onto the feasible search box.
package mesh

import (
	"math"

	"github.com/rwcarlsen/swarmloc"
)

// Bounded is an axis-aligned box.  Points outside it are slid back onto its
// surface one dimension at a time; nothing else about them is changed.
type Bounded struct {
	Lower []float64
	Upper []float64
}

func NewBounded(b swarmloc.Bounds) *Bounded {
	return &Bounded{
		Lower: b.Low(),
		Upper: b.Up(),
	}
}

// Clamp moves p in place to the nearest point inside the box by sliding each
// dimensional position to the nearest value inside bounds.  It panics if p
// has the wrong number of dimensions.
func (m *Bounded) Clamp(p []float64) {
	if len(p) != len(m.Lower) {
		panic("point and mesh bounds have different lengths")
	}
	for i := range p {
		p[i] = math.Max(m.Lower[i], p[i])
		p[i] = math.Min(m.Upper[i], p[i])
	}
}
