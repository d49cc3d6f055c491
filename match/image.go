package match

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/rwcarlsen/swarmloc"
)

// Gray converts img to a matrix of luminance values in [0, 1].
func Gray(img image.Image) *mat.Dense {
	b := img.Bounds()
	m := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			m.Set(y-b.Min.Y, x-b.Min.X, float64(g.Y)/math.MaxUint16)
		}
	}
	return m
}

// Load decodes the PNG or JPEG image at path into a luminance matrix.
func Load(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %v: %w", path, err)
	}
	return Gray(img), nil
}

// Scene generates a w by h image made of nblobs overlapping Gaussian blobs
// with random centers and widths, rescaled to [0, 1].  Blob landscapes are
// smooth, which gives the swarm a dissimilarity surface it can descend.
func Scene(rng swarmloc.Rng, w, h, nblobs int) *mat.Dense {
	type blob struct{ x, y, sigma, amp float64 }
	blobs := make([]blob, nblobs)
	diag := math.Hypot(float64(w), float64(h))
	for i := range blobs {
		blobs[i] = blob{
			x:     rng.Float64() * float64(w),
			y:     rng.Float64() * float64(h),
			sigma: (0.05 + 0.15*rng.Float64()) * diag,
			amp:   0.5 + rng.Float64(),
		}
	}

	data := make([]float64, w*h)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			tot := 0.0
			for _, b := range blobs {
				dx, dy := float64(c)-b.x, float64(r)-b.y
				tot += b.amp * math.Exp(-(dx*dx+dy*dy)/(2*b.sigma*b.sigma))
			}
			data[r*w+c] = tot
		}
	}

	lo, hi := floats.Min(data), floats.Max(data)
	if hi > lo {
		floats.AddConst(-lo, data)
		floats.Scale(1/(hi-lo), data)
	}
	return mat.NewDense(h, w, data)
}

// Crop copies the w by h window of img with top left corner at column x and
// row y.
func Crop(img *mat.Dense, x, y, w, h int) *mat.Dense {
	return mat.DenseCopyOf(img.Slice(y, y+h, x, x+w))
}

// Embed overwrites the window of target with top left corner at column x and
// row y with model.
func Embed(target, model *mat.Dense, x, y int) {
	h, w := model.Dims()
	target.Slice(y, y+h, x, x+w).(*mat.Dense).Copy(model)
}
