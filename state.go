package edmd

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// A State is an immutable snapshot of the simulation right after an event.
type State struct {
	Epoch int        // number of events applied so far
	Time  float64    // absolute simulated time
	Event *Collision // event that produced this state, nil for the initial state

	bodies     []Body      // sorted by id
	index      map[int]int // id → position in bodies
	pending    []Collision // ordered by time then ids
	degenerate int         // pairs skipped because of degenerate geometry
}

// newState assembles a state from bodies sorted by id.
// index may be shared with the previous state since ids never change.
func newState(epoch int, time float64, bodies []Body, index map[int]int, event *Collision) *State {
	if index == nil {
		index = make(map[int]int, len(bodies))
		for i, b := range bodies {
			index[b.ID()] = i
		}
	}
	return &State{
		Epoch:  epoch,
		Time:   time,
		Event:  event,
		bodies: bodies,
		index:  index,
	}
}

// sortByID sorts bodies by increasing id.
func sortByID(bodies []Body) {
	slices.SortFunc(bodies, func(a, b Body) int { return a.ID() - b.ID() })
}

// Len returns the number of bodies, walls included.
func (s *State) Len() int {
	return len(s.bodies)
}

// At returns the i-th body in id order.
func (s *State) At(i int) Body {
	return s.bodies[i]
}

// Bodies returns a copy of all bodies in id order.
func (s *State) Bodies() []Body {
	return slices.Clone(s.bodies)
}

// Lookup returns the body with the given id.
func (s *State) Lookup(id int) (Body, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.bodies[i], true
}

// Pending returns a copy of the ordered set of predicted collisions.
func (s *State) Pending() []Collision {
	return slices.Clone(s.pending)
}

// Earliest returns the next collision, or false if nothing will ever collide.
func (s *State) Earliest() (Collision, bool) {
	if len(s.pending) == 0 {
		return Collision{}, false
	}
	return s.pending[0], true
}

// Degenerate returns the number of pairs whose geometry could not be evaluated.
func (s *State) Degenerate() int {
	return s.degenerate
}

// MaxSpeed returns the largest particle speed.
func (s *State) MaxSpeed() float64 {
	var v float64
	for _, b := range s.bodies {
		if b.Kind() == KindParticle {
			v = math.Max(v, r2.Norm(b.Velocity()))
		}
	}
	return v
}

// KineticEnergy returns the total kinetic energy of the particles.
func (s *State) KineticEnergy() float64 {
	var e float64
	for _, b := range s.bodies {
		if b.Kind() == KindParticle {
			e += 0.5 * b.Mass() * r2.Norm2(b.Velocity())
		}
	}
	return e
}

// Momentum returns the total momentum of the particles.
func (s *State) Momentum() r2.Vec {
	var p r2.Vec
	for _, b := range s.bodies {
		if b.Kind() == KindParticle {
			p = r2.Add(p, r2.Scale(b.Mass(), b.Velocity()))
		}
	}
	return p
}
