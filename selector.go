package edmd

import (
	"errors"
	"math"
	"slices"
	"sync"
)

// A NeighborFinder narrows down the bodies a particle may hit soon.
type NeighborFinder interface {
	// Neighbors returns at least every particle and obstacle of s, b excluded,
	// whose surface is within Cutoff of the surface of b. Walls are ignored.
	Neighbors(b Body, s *State) []Body

	// Cutoff returns the surface distance covered by Neighbors.
	Cutoff() float64
}

// A Selector computes the ordered set of pending collisions of a State.
// The zero value scans all pairs sequentially.
type Selector struct {
	// Neighbors, if set, prunes far pairs. The earliest collision is
	// guaranteed to be the same as with the all-pairs scan.
	Neighbors NeighborFinder

	// Workers is the number of goroutines sharing the scan.
	Workers int
}

// errDegenerate marks a pair whose geometry cannot be evaluated.
var errDegenerate = errors.New("edmd: degenerate geometry")

// Scan returns the pending collisions of s ordered by time then by ids,
// and the number of pairs skipped because of degenerate geometry.
func (sel *Selector) Scan(s *State) ([]Collision, int, error) {
	if sel.Neighbors != nil {
		c, n, err := sel.scan(s, true)
		if err != nil {
			return nil, 0, err
		}
		if sel.safe(s, c) {
			return c, n, nil
		}
	}
	return sel.scan(s, false)
}

// safe reports whether no pruned pair can collide before the earliest candidate.
// Pruned pairs start more than Cutoff apart and close in at most twice the top speed.
func (sel *Selector) safe(s *State, c []Collision) bool {
	v := s.MaxSpeed()
	if v == 0 {
		return true
	}
	if len(c) == 0 {
		return false
	}
	return 2*v*c[0].T < sel.Neighbors.Cutoff()
}

type partial struct {
	c   []Collision
	n   int
	err error
}

func (sel *Selector) scan(s *State, pruned bool) ([]Collision, int, error) {
	var movers, walls []Body
	for _, b := range s.bodies {
		switch b.Kind() {
		case KindParticle:
			movers = append(movers, b)
		case KindWall:
			walls = append(walls, b)
		}
	}

	workers := max(sel.Workers, 1)
	workers = min(workers, len(movers))
	if workers <= 1 {
		r := sel.candidates(s, movers, walls, pruned)
		if r.err != nil {
			return nil, 0, r.err
		}
		slices.SortFunc(r.c, compareCollisions)
		return r.c, r.n, nil
	}

	// each worker reads s and fills its own slot
	results := make([]partial, workers)
	var wg sync.WaitGroup
	for w := range results {
		lo, hi := w*len(movers)/workers, (w+1)*len(movers)/workers
		wg.Add(1)
		go func(r *partial, part []Body) {
			defer wg.Done()
			*r = sel.candidates(s, part, walls, pruned)
		}(&results[w], movers[lo:hi])
	}
	wg.Wait()

	var c []Collision
	var n int
	for _, r := range results {
		if r.err != nil {
			return nil, 0, r.err
		}
		c = append(c, r.c...)
		n += r.n
	}
	slices.SortFunc(c, compareCollisions)
	return c, n, nil
}

// candidates computes the collisions of the given particles against
// particles of higher id, obstacles and walls.
func (sel *Selector) candidates(s *State, movers, walls []Body, pruned bool) partial {
	var r partial
	add := func(p Particle, q Body) bool {
		t, err := collisionTime(p, q)
		switch {
		case errors.Is(err, errDegenerate):
			r.n++
		case err != nil:
			r.err = err
			return false
		case !math.IsInf(t, 1):
			r.c = append(r.c, Collision{A: p.id, B: q.ID(), T: t})
		}
		return true
	}

	for _, b := range movers {
		p := b.(Particle)
		others := s.bodies
		if pruned {
			others = sel.Neighbors.Neighbors(p, s)
		}
		for _, q := range others {
			if q.ID() == p.id || q.Kind() == KindWall {
				continue
			}
			if q.Kind() == KindParticle && q.ID() < p.id {
				continue
			}
			if !add(p, q) {
				return r
			}
		}
		for _, w := range walls {
			if !add(p, w) {
				return r
			}
		}
	}
	return r
}
