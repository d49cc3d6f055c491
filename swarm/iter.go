package swarm

// Snapshot is the state of the swarm right after one epoch.
type Snapshot struct {
	// Positions holds one position vector per particle.
	Positions [][]float64
	// Values holds the objective value at each position.
	Values []float64
	Epoch  int
}

// Coord returns coordinate d of every particle, e.g. Coord(0) and Coord(1)
// give the x and y series of a two dimensional swarm.
func (s Snapshot) Coord(d int) []float64 {
	c := make([]float64, len(s.Positions))
	for i, p := range s.Positions {
		c[i] = p[d]
	}
	return c
}

// Iterator steps a swarm one epoch per call to Next for as long as the swarm
// has not converged and is under its epoch cap:
//
//	it := s.Iter()
//	for it.Next() {
//		draw(it.Snapshot())
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
//
// Once Next returns false it always returns false.  The swarm state lives in
// the Swarm, so a new Iterator picks up wherever the last one left off.
type Iterator struct {
	s    *Swarm
	snap Snapshot
	err  error
	done bool
}

func (s *Swarm) Iter() *Iterator { return &Iterator{s: s} }

func (it *Iterator) Next() bool {
	if it.done {
		return false
	} else if !it.s.HasNotConverged(it.s.maxEpochs) {
		it.done = true
		return false
	}

	if err := it.s.Update(); err != nil {
		it.err = err
		it.done = true
		return false
	}
	it.snap = Snapshot{
		Positions: it.s.Positions(),
		Values:    it.s.ObjectiveValues(),
		Epoch:     it.s.epoch,
	}
	return true
}

// Snapshot returns the state produced by the most recent successful call to
// Next.
func (it *Iterator) Snapshot() Snapshot { return it.snap }

// Err returns the error that stopped iteration, if any.
func (it *Iterator) Err() error { return it.err }
