// Package swarm implements a constriction-factor particle swarm optimizer
// with a ring (lbest) neighborhood over a bounded box search space.
package swarm

import (
	"database/sql"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/rwcarlsen/swarmloc"
	"github.com/rwcarlsen/swarmloc/mesh"
)

// The default c1 and c2 of 2.05 give a constriction coefficient of about
// 0.7298 as described in:
//
//	Clerc and M.  “The swarm and the queen: towards a deterministic and
//	adaptive particle swarm optimization” Proc. 1999 Congress on
//	Evolutionary Computation, pp. 1951-1957
const (
	DefaultCognition = 2.05
	DefaultSocial    = 2.05
	DefaultParticles = 50
	DefaultMaxEpochs = 2000
	DefaultSeed      = 42
)

// Constriction calculates the constriction coefficient for the given c1 and
// c2 for the particle velocity equation:
//
//	v_next = k(v_curr + c1*rand*(p_local-x) + c2*rand*(p_personal-x))
//
// c1+c2 should usually be greater than (but close to) 4.  For 0 < c1+c2 < 4
// the coefficient is not real and NaN is returned.
func Constriction(c1, c2 float64) float64 {
	phi := c1 + c2
	return 2 / math.Abs(2-phi-math.Sqrt(phi*phi-4*phi))
}

type Option func(*Swarm)

// Particles sets the swarm population size.
func Particles(n int) Option {
	return func(s *Swarm) {
		s.n = n
	}
}

// LearnFactors sets the cognitive (c1) and social (c2) acceleration
// coefficients.  c1 pulls particles toward their neighborhood best and c2
// toward their own best.  c1+c2 must be at least 4.
func LearnFactors(c1, c2 float64) Option {
	return func(s *Swarm) {
		s.c1 = c1
		s.c2 = c2
	}
}

// Seed sets the seed of the swarm's random source.  It is ignored if Rand is
// also given.
func Seed(seed int64) Option {
	return func(s *Swarm) {
		s.seed = seed
	}
}

// Rand sets the random source used for initialization and every update.
func Rand(rng swarmloc.Rng) Option {
	return func(s *Swarm) {
		s.rng = rng
	}
}

// MaxEpochs sets the epoch cap used by Minimize and Iter.
func MaxEpochs(n int) Option {
	return func(s *Swarm) {
		s.maxEpochs = n
	}
}

func Evaler(ev swarmloc.Evaler) Option {
	return func(s *Swarm) {
		s.ev = ev
	}
}

func Logger(l logr.Logger) Option {
	return func(s *Swarm) {
		s.log = l
	}
}

// DB records particle positions and values for every epoch into db.
func DB(db *sql.DB) Option {
	return func(s *Swarm) {
		s.db = db
	}
}

// Archive keeps the k best distinct points the swarm has evaluated.  See
// Swarm.Archived.
func Archive(k int) Option {
	return func(s *Swarm) {
		s.archive = newArchive(k)
	}
}

// Swarm holds the complete optimizer state.  Particle state is stored as
// N by D matrices with one row per particle; row order defines the ring
// neighborhood.  A Swarm is not safe for concurrent use.
type Swarm struct {
	bounds swarmloc.Bounds
	box    *mesh.Bounded
	obj    swarmloc.Objectiver
	ev     swarmloc.Evaler
	tol    float64

	n         int
	c1, c2    float64
	k         float64
	maxEpochs int
	seed      int64
	rng       swarmloc.Rng

	log     logr.Logger
	db      *sql.DB
	archive *archive

	pos   *mat.Dense
	vel   *mat.Dense
	pbest *mat.Dense
	lbest *mat.Dense
	// vals and pbestvals cache the objective value of every row of pos and
	// pbest.
	vals      []float64
	pbestvals []float64

	epoch int
	neval int
}

// New builds a swarm searching the box b for the minimum of obj.  The swarm
// is considered converged once the norm of the per-dimension variance of
// particle positions is no larger than tol.  Positions and velocities are
// drawn uniformly inside b and every initial position is evaluated, so New
// returns any error from obj.  Invalid bounds, a negative tol, fewer than one
// particle or c1+c2 in (0, 4) give an error wrapping swarmloc.ConfigErr.
func New(b swarmloc.Bounds, obj swarmloc.Objectiver, tol float64, opts ...Option) (*Swarm, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	} else if math.IsNaN(tol) || tol < 0 {
		return nil, fmt.Errorf("%w: tolerance %v must not be negative", swarmloc.ConfigErr, tol)
	}

	s := &Swarm{
		bounds:    append(swarmloc.Bounds{}, b...),
		box:       mesh.NewBounded(b),
		obj:       obj,
		tol:       tol,
		n:         DefaultParticles,
		c1:        DefaultCognition,
		c2:        DefaultSocial,
		maxEpochs: DefaultMaxEpochs,
		seed:      DefaultSeed,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.n < 1 {
		return nil, fmt.Errorf("%w: need at least one particle, got %v", swarmloc.ConfigErr, s.n)
	}
	phi := s.c1 + s.c2
	if disc := phi*phi - 4*phi; disc < 0 || math.IsNaN(disc) {
		return nil, fmt.Errorf("%w: c1+c2 = %v gives no real constriction factor (need c1+c2 >= 4)", swarmloc.ConfigErr, phi)
	}
	s.k = Constriction(s.c1, s.c2)

	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(s.seed))
	}
	if s.ev == nil {
		s.ev = swarmloc.SerialEvaler{}
	}

	ndim := len(b)
	s.pos = mat.NewDense(s.n, ndim, nil)
	s.vel = mat.NewDense(s.n, ndim, nil)
	for i, p := range swarmloc.RandPop(s.rng, s.n, b) {
		s.pos.SetRow(i, p.Pos())
	}
	for i, p := range swarmloc.RandPop(s.rng, s.n, b) {
		s.vel.SetRow(i, p.Pos())
	}
	s.pbest = mat.DenseCopyOf(s.pos)
	s.lbest = mat.NewDense(s.n, ndim, nil)

	vals, err := s.eval(s.pos)
	if err != nil {
		return nil, err
	}
	s.vals = vals
	s.pbestvals = append([]float64{}, vals...)
	s.updateLocalBests()
	s.archive.add(s.pos, s.vals)

	if err := s.initdb(); err != nil {
		return nil, err
	}
	if err := s.updateDb(); err != nil {
		return nil, err
	}
	return s, nil
}

// Update performs one epoch: every particle's velocity and position are
// updated and clamped into the search box, all new positions are evaluated,
// and personal and local bests are refreshed.  If the objective fails, its
// error is returned and the swarm is left as it was after the previous
// epoch.
func (s *Swarm) Update() error {
	n, ndim := s.pos.Dims()
	r1 := s.randDense(n, ndim)
	r2 := s.randDense(n, ndim)

	var cognitive, social mat.Dense
	cognitive.Sub(s.lbest, s.pos)
	cognitive.MulElem(&cognitive, r1)
	cognitive.Scale(s.c1, &cognitive)
	social.Sub(s.pbest, s.pos)
	social.MulElem(&social, r2)
	social.Scale(s.c2, &social)

	vel := mat.NewDense(n, ndim, nil)
	vel.Add(s.vel, &cognitive)
	vel.Add(vel, &social)
	vel.Scale(s.k, vel)

	// Positions are clamped but velocities are left alone, so a particle can
	// keep pushing against a wall for several epochs.
	pos := mat.NewDense(n, ndim, nil)
	pos.Add(s.pos, vel)
	for i := 0; i < n; i++ {
		s.box.Clamp(pos.RawRowView(i))
	}

	vals, err := s.eval(pos)
	if err != nil {
		return err
	}

	s.pos, s.vel, s.vals = pos, vel, vals
	s.updatePersonalBests()
	s.updateLocalBests()
	s.epoch++

	s.archive.add(s.pos, s.vals)
	if s.log.V(1).Enabled() {
		best := s.Best()
		s.log.V(1).Info("epoch complete", "epoch", s.epoch, "best", best.Val, "spread", s.Spread())
	}
	return s.updateDb()
}

// HasNotConverged reports whether the swarm should keep iterating: the
// position spread is still above the tolerance and fewer than maxEpochs
// epochs have run.  Reaching either stopping condition is logged along with
// the current best point.
func (s *Swarm) HasNotConverged(maxEpochs int) bool {
	spread := s.Spread()
	spreading := spread > s.tol
	capped := s.epoch >= maxEpochs

	if !spreading || capped {
		best := s.Best()
		if !spreading {
			s.log.Info("swarm converged", "epochs", s.epoch, "spread", spread, "minimum", best.Val, "at", best.Pos())
		}
		if capped {
			s.log.Info("reached maximum number of epochs", "epochs", s.epoch, "spread", spread, "minimum", best.Val, "at", best.Pos())
		}
	}
	return spreading && !capped
}

// Minimize updates the swarm until it converges or hits its epoch cap.  Both
// are normal terminations; only objective (or recording) failures are
// returned.
func (s *Swarm) Minimize() error {
	for s.HasNotConverged(s.maxEpochs) {
		if err := s.Update(); err != nil {
			return err
		}
	}
	return nil
}

// Spread returns the Euclidean norm of the vector of per-dimension
// population variances of the particle positions.
func (s *Swarm) Spread() float64 {
	n, ndim := s.pos.Dims()
	vars := make([]float64, ndim)
	col := make([]float64, n)
	for j := range vars {
		mat.Col(col, j, s.pos)
		floats.AddConst(-stat.Mean(col, nil), col)
		vars[j] = floats.Dot(col, col) / float64(n)
	}
	return floats.Norm(vars, 2)
}

// ObjectiveValues returns the objective value at every current position in
// particle order.
func (s *Swarm) ObjectiveValues() []float64 { return append([]float64{}, s.vals...) }

// BestPosition returns the current position with the lowest objective value.
// Ties go to the lowest particle index.
func (s *Swarm) BestPosition() []float64 { return s.Best().Pos() }

// Best returns the current position with the lowest objective value along
// with that value.
func (s *Swarm) Best() swarmloc.Point {
	i := floats.MinIdx(s.vals)
	return swarmloc.NewPoint(s.pos.RawRowView(i), s.vals[i])
}

// Epoch returns the number of completed updates.
func (s *Swarm) Epoch() int { return s.epoch }

// Neval returns the number of objective evaluations reported by the
// swarm's Evaler so far.
func (s *Swarm) Neval() int { return s.neval }

func (s *Swarm) MaxEpochs() int { return s.maxEpochs }

func (s *Swarm) Tol() float64 { return s.tol }

func (s *Swarm) Bounds() swarmloc.Bounds { return append(swarmloc.Bounds{}, s.bounds...) }

func (s *Swarm) Len() int { return s.n }

func (s *Swarm) Positions() [][]float64 { return rows(s.pos) }

func (s *Swarm) Velocities() [][]float64 { return rows(s.vel) }

func (s *Swarm) PersonalBests() [][]float64 { return rows(s.pbest) }

func (s *Swarm) LocalBests() [][]float64 { return rows(s.lbest) }

// Archived returns the best distinct evaluated points in ascending order of
// value if the swarm was built with the Archive option and nil otherwise.
func (s *Swarm) Archived() []swarmloc.Point { return s.archive.points() }

// PrintInfo writes the epoch count and the current best point to w.
func (s *Swarm) PrintInfo(w io.Writer) error {
	best := s.Best()
	if _, err := fmt.Fprintln(w, "Number of epochs:", s.epoch); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Minimum: %v at %v\n", best.Val, best.Pos())
	return err
}

func (s *Swarm) eval(x *mat.Dense) ([]float64, error) {
	n, _ := x.Dims()
	points := make([]swarmloc.Point, n)
	for i := range points {
		points[i] = swarmloc.NewPoint(x.RawRowView(i), math.Inf(1))
	}

	results, neval, err := s.ev.Eval(s.obj, points...)
	s.neval += neval
	if err != nil {
		return nil, err
	} else if len(results) != n {
		return nil, fmt.Errorf("evaluated %v of %v particles", len(results), n)
	}

	vals := make([]float64, n)
	for i, p := range results {
		vals[i] = p.Val
	}
	return vals, nil
}

// updatePersonalBests only replaces a personal best on strict improvement.
func (s *Swarm) updatePersonalBests() {
	for i, val := range s.vals {
		if val < s.pbestvals[i] {
			s.pbest.SetRow(i, s.pos.RawRowView(i))
			s.pbestvals[i] = val
		}
	}
}

// updateLocalBests sets each particle's local best to the best current
// position among its left ring neighbor, itself and its right ring
// neighbor.  Exact ties go to the leftmost candidate.
func (s *Swarm) updateLocalBests() {
	n := len(s.vals)
	for i := 0; i < n; i++ {
		best := (i - 1 + n) % n
		for _, j := range [...]int{i, (i + 1) % n} {
			if s.vals[j] < s.vals[best] {
				best = j
			}
		}
		s.lbest.SetRow(i, s.pos.RawRowView(best))
	}
}

// randDense draws an r by c matrix of uniform [0, 1) numbers in row-major
// order.
func (s *Swarm) randDense(r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = s.rng.Float64()
	}
	return mat.NewDense(r, c, data)
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	rs := make([][]float64, r)
	for i := range rs {
		rs[i] = mat.Row(nil, i, m)
	}
	return rs
}
