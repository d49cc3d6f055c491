package match

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/rwcarlsen/swarmloc"
	"github.com/rwcarlsen/swarmloc/swarm"
)

// bump is a w by h image holding a single wide Gaussian centered at (cx, cy).
func bump(w, h int, cx, cy, sigma float64) *mat.Dense {
	m := mat.NewDense(h, w, nil)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			dx, dy := float64(c)-cx, float64(r)-cy
			m.Set(r, c, math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma)))
		}
	}
	return m
}

func TestDissimilarity(t *testing.T) {
	target := Scene(rand.New(rand.NewSource(1)), 40, 30, 4)
	model := Crop(target, 7, 3, 5, 4)

	assert.Equal(t, 0.0, Dissimilarity(7, 3, model, target))
	assert.Equal(t, 0.0, Dissimilarity(7.9, 3.2, model, target), "positions are truncated to whole pixels")
	assert.Greater(t, Dissimilarity(8, 3, model, target), 0.0)
	assert.Greater(t, Dissimilarity(7, 4, model, target), 0.0)

	// last valid window and one past it
	assert.False(t, math.IsInf(Dissimilarity(35, 26, model, target), 1))
	assert.True(t, math.IsInf(Dissimilarity(36, 26, model, target), 1))
	assert.True(t, math.IsInf(Dissimilarity(-1, 0, model, target), 1))
}

func TestDissimilarityNorm(t *testing.T) {
	target := mat.NewDense(2, 3, []float64{
		0, 1, 2,
		3, 4, 5,
	})
	model := mat.NewDense(1, 2, []float64{1, 1})

	// window at x=1,y=1 is [4 5]; diff is [3 4]
	assert.InDelta(t, 5.0, Dissimilarity(1, 1, model, target), 1e-12)
}

func TestSearchBounds(t *testing.T) {
	target := mat.NewDense(30, 40, nil)
	model := mat.NewDense(4, 5, nil)

	b, err := SearchBounds(model, target)
	require.NoError(t, err)
	assert.Equal(t, swarmloc.Bounds{{Min: 0, Max: 35}, {Min: 0, Max: 26}}, b)

	_, err = SearchBounds(target, model)
	assert.ErrorIs(t, err, swarmloc.ConfigErr)

	_, err = Locate(mat.NewDense(31, 2, nil), target, DefaultTol)
	assert.ErrorIs(t, err, swarmloc.ConfigErr)
}

type countObj struct {
	count int
}

func (o *countObj) Objective(v []float64) (float64, error) {
	o.count++
	return v[0] + 10*v[1], nil
}

func TestPixelEvaler(t *testing.T) {
	obj := &countObj{}
	ev := PixelEvaler{swarmloc.NewCacheEvaler(nil)}

	a := swarmloc.NewPoint([]float64{2.3, 1.9}, math.Inf(1))
	b := swarmloc.NewPoint([]float64{2.7, 1.1}, math.Inf(1))

	results, n, err := ev.Eval(obj, a)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 12.0, results[0].Val)

	results, n, err = ev.Eval(obj, b)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "same pixel should come from the cache")
	assert.Equal(t, 12.0, results[0].Val)
	assert.Equal(t, []float64{2.7, 1.1}, results[0].Pos(), "callers must get their own positions back")
	assert.Equal(t, 1, obj.count)
}

func TestLocate(t *testing.T) {
	target := bump(120, 80, 60, 40, 25)
	model := Crop(target, 50, 30, 20, 20)

	r, err := Locate(model, target, DefaultTol, swarm.Logger(testr.New(t)))
	require.NoError(t, err)
	t.Logf("found %+v after %v epochs and %v evaluations", r.Candidate, r.Epochs, r.Neval)

	assert.True(t, r.Converged)
	assert.InDelta(t, 50, r.X, 1)
	assert.InDelta(t, 30, r.Y, 1)
	assert.Less(t, r.Val, Dissimilarity(53, 33, model, target))

	require.NotEmpty(t, r.Candidates)
	assert.LessOrEqual(t, r.Candidates[0].Val, r.Val)
	seen := map[[2]int]bool{}
	for _, c := range r.Candidates {
		key := [2]int{c.X, c.Y}
		assert.False(t, seen[key], "duplicate candidate %+v", c)
		seen[key] = true
	}
}

func TestLocateEpochCap(t *testing.T) {
	target := bump(60, 40, 30, 20, 10)
	model := Crop(target, 20, 10, 10, 10)

	r, err := Locate(model, target, DefaultTol, swarm.MaxEpochs(2))
	require.NoError(t, err)
	assert.False(t, r.Converged)
	assert.Equal(t, 2, r.Epochs)
}

func TestEmbed(t *testing.T) {
	target := mat.NewDense(10, 10, nil)
	model := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	Embed(target, model, 4, 7)

	assert.Equal(t, 0.0, Dissimilarity(4, 7, model, target))
	assert.Equal(t, 6.0, target.At(8, 6))
	assert.Equal(t, 0.0, target.At(7, 3))
	assert.True(t, mat.Equal(model, Crop(target, 4, 7, 3, 2)))
}

func TestScene(t *testing.T) {
	s1 := Scene(rand.New(rand.NewSource(3)), 50, 20, 5)
	s2 := Scene(rand.New(rand.NewSource(3)), 50, 20, 5)

	r, c := s1.Dims()
	assert.Equal(t, 20, r)
	assert.Equal(t, 50, c)
	assert.True(t, mat.Equal(s1, s2))
	assert.InDelta(t, 0, mat.Min(s1), 1e-12)
	assert.InDelta(t, 1, mat.Max(s1), 1e-12)
}

func TestGrayLoad(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(0, 0, color.Gray{Y: 255})
	img.SetGray(2, 1, color.Gray{Y: 51})

	path := filepath.Join(t.TempDir(), "model.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	m, err := Load(path)
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.InDelta(t, 1.0, m.At(0, 0), 1e-9)
	assert.InDelta(t, 0.2, m.At(1, 2), 1e-9)
	assert.Equal(t, 0.0, m.At(1, 0))

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
