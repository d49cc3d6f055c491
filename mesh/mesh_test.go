package mesh

import (
	"testing"

	"github.com/rwcarlsen/swarmloc"
)

type Problem struct {
	Point, Exp []float64
}

var tests = []Problem{
	{
		Point: []float64{0.1, 0.1},
		Exp:   []float64{0.1, 0.1},
	},
	{
		Point: []float64{-3, 12},
		Exp:   []float64{-1, 10},
	},
	{
		Point: []float64{7, -0.5},
		Exp:   []float64{1, 0},
	},
}

func TestBounded(t *testing.T) {
	m := NewBounded(swarmloc.Bounds{{Min: -1, Max: 1}, {Min: 0, Max: 10}})

	for i, prob := range tests {
		got := append([]float64{}, prob.Point...)
		m.Clamp(got)
		t.Logf("prob %v:", i)
		for j := range got {
			if got[j] != prob.Exp[j] {
				t.Errorf("    v[%v]=%v: got %v, expected %v", j, prob.Point[j], got[j], prob.Exp[j])
			}
		}
	}
}

func TestClampDegenerate(t *testing.T) {
	m := NewBounded(swarmloc.Bounds{{Min: 4, Max: 4}})
	p := []float64{-100}
	m.Clamp(p)
	if p[0] != 4 {
		t.Errorf("got %v, expected 4", p[0])
	}
}

func TestClampWrongLength(t *testing.T) {
	m := NewBounded(swarmloc.Bounds{{Min: 0, Max: 1}, {Min: 0, Max: 1}})
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic clamping a 1-D point into a 2-D box")
		}
	}()
	m.Clamp([]float64{3})
}
