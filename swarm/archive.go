package swarm

import (
	"math"

	"github.com/petar/GoLLRB/llrb"
	"gonum.org/v1/gonum/mat"

	"github.com/rwcarlsen/swarmloc"
)

type item struct {
	swarmloc.Point
}

// Less orders by value and then lexicographically by position so that two
// items compare equal only if they are the same point.
func (p1 item) Less(than llrb.Item) bool {
	p2 := than.(item)
	if p1.Val != p2.Val {
		return p1.Val < p2.Val
	}
	n := min(p1.Len(), p2.Len())
	for i := 0; i < n; i++ {
		if p1.At(i) != p2.At(i) {
			return p1.At(i) < p2.At(i)
		}
	}
	return p1.Len() < p2.Len()
}

// archive is a bounded, sorted set of the best points seen.  A nil *archive
// is a valid, disabled archive.
type archive struct {
	tree *llrb.LLRB
	size int
}

func newArchive(size int) *archive {
	if size <= 0 {
		return nil
	}
	return &archive{tree: llrb.New(), size: size}
}

func (a *archive) add(pos *mat.Dense, vals []float64) {
	if a == nil {
		return
	}
	for i, val := range vals {
		if math.IsNaN(val) {
			continue
		}
		a.tree.ReplaceOrInsert(item{swarmloc.NewPoint(pos.RawRowView(i), val)})
		for a.tree.Len() > a.size {
			a.tree.DeleteMax()
		}
	}
}

func (a *archive) points() []swarmloc.Point {
	if a == nil {
		return nil
	}
	points := make([]swarmloc.Point, 0, a.tree.Len())
	pivot := item{swarmloc.NewPoint(nil, math.Inf(-1))}
	a.tree.AscendGreaterOrEqual(pivot, func(i llrb.Item) bool {
		points = append(points, i.(item).Point)
		return true
	})
	return points
}
