package swarmloc

import (
	"errors"
	"fmt"
	"math"
)

// ConfigErr is wrapped by every error caused by an invalid problem or solver
// configuration.
var ConfigErr = errors.New("invalid configuration")

// Range is the closed interval [Min, Max] for a single dimension.
type Range struct {
	Min, Max float64
}

// Bounds is an axis-aligned box search space with one Range per dimension.
type Bounds []Range

// NewBounds builds Bounds from separate lower and upper limit vectors.
func NewBounds(low, up []float64) Bounds {
	if len(low) != len(up) {
		panic("low and up vectors are not same length")
	}
	b := make(Bounds, len(low))
	for i := range low {
		b[i] = Range{Min: low[i], Max: up[i]}
	}
	return b
}

func (b Bounds) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("%w: bounds have no dimensions", ConfigErr)
	}
	for i, r := range b {
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
			return fmt.Errorf("%w: dimension %v has NaN limit", ConfigErr, i)
		} else if math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
			return fmt.Errorf("%w: dimension %v has infinite limit", ConfigErr, i)
		} else if r.Min > r.Max {
			return fmt.Errorf("%w: dimension %v has min %v > max %v", ConfigErr, i, r.Min, r.Max)
		}
	}
	return nil
}

func (b Bounds) Low() []float64 {
	low := make([]float64, len(b))
	for i, r := range b {
		low[i] = r.Min
	}
	return low
}

func (b Bounds) Up() []float64 {
	up := make([]float64, len(b))
	for i, r := range b {
		up[i] = r.Max
	}
	return up
}

// Contains reports whether every coordinate of v lies inside b.
func (b Bounds) Contains(v []float64) bool {
	for i, r := range b {
		if v[i] < r.Min || v[i] > r.Max {
			return false
		}
	}
	return true
}
