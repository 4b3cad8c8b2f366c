// Package edmd runs event-driven simulations of hard discs.
//
// Mobile particles, static obstacles and walls live in a 2D world.
// Bodies fly in straight lines at constant velocity and only interact
// through instantaneous elastic collisions, so the simulation jumps
// from one collision to the next instead of stepping time.
// Every step produces a new immutable State.
package edmd

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Options contains the parameters of a Simulation.
type Options struct {
	// MaxTime is the time horizon. Zero or +Inf means no horizon.
	MaxTime float64

	// ReportInterval is the window of the collision counters. Zero disables them.
	ReportInterval float64

	// Workers is the number of goroutines scanning pairs within a step.
	Workers int

	// Neighbors optionally prunes the pair scan.
	Neighbors NeighborFinder

	// History keeps every committed State.
	History bool
}

// A Reason tells why Run stopped.
type Reason int

// Terminal reasons.
const (
	Quiescent Reason = iota // no collision will ever happen
	Exhausted               // epoch budget reached with collisions pending
	Horizon                 // next collision beyond MaxTime
	Canceled                // context canceled or observer failed
)

func (r Reason) String() string {
	switch r {
	case Quiescent:
		return "quiescent"
	case Exhausted:
		return "exhausted"
	case Horizon:
		return "horizon"
	case Canceled:
		return "canceled"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// A Result summarizes a call to Run.
type Result struct {
	Reason Reason
	Events int    // events applied by this call
	State  *State // last committed state
}

// An Observer is called with every committed State.
// Returning an error stops the run.
type Observer func(s *State) error

// A Simulation drives the event loop. It is not safe for concurrent use.
type Simulation struct {
	opts      Options
	sel       Selector
	current   *State
	history   []*State
	telemetry *Telemetry
}

// New validates the initial bodies and computes their first collisions.
func New(bodies []Body, opts Options) (*Simulation, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	sorted, err := validate(bodies)
	if err != nil {
		return nil, err
	}
	s := &Simulation{
		opts:      opts,
		sel:       Selector{Neighbors: opts.Neighbors, Workers: opts.Workers},
		telemetry: NewTelemetry(opts.ReportInterval),
	}
	st := newState(0, 0, sorted, nil, nil)
	if err := s.fill(st); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	s.commit(st)
	return s, nil
}

func (o Options) check() error {
	switch {
	case math.IsNaN(o.MaxTime) || o.MaxTime < 0:
		return fmt.Errorf("%w: horizon %g", ErrInvalidConfiguration, o.MaxTime)
	case !(o.ReportInterval >= 0) || math.IsInf(o.ReportInterval, 0):
		return fmt.Errorf("%w: report interval %g", ErrInvalidConfiguration, o.ReportInterval)
	}
	return nil
}

// validate checks the bodies and returns them sorted by id.
func validate(bodies []Body) ([]Body, error) {
	seen := make(map[int]bool, len(bodies))
	sorted := make([]Body, 0, len(bodies))
	for _, b := range bodies {
		if b == nil {
			return nil, fmt.Errorf("%w: nil body", ErrInvalidConfiguration)
		}
		if seen[b.ID()] {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidConfiguration, b.ID())
		}
		seen[b.ID()] = true

		r := b.Radius()
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: body %d has radius %g", ErrInvalidConfiguration, b.ID(), r)
		}
		if b.Kind() != KindWall && !finite(b.Position()) {
			return nil, fmt.Errorf("%w: body %d has position %v", ErrInvalidConfiguration, b.ID(), b.Position())
		}
		if b.Kind() == KindParticle {
			if m := b.Mass(); !(m > 0) || math.IsInf(m, 0) {
				return nil, fmt.Errorf("%w: particle %d has mass %g", ErrInvalidConfiguration, b.ID(), m)
			}
			if !finite(b.Velocity()) {
				return nil, fmt.Errorf("%w: particle %d has velocity %v", ErrInvalidConfiguration, b.ID(), b.Velocity())
			}
		}
		sorted = append(sorted, b)
	}
	sortByID(sorted)
	return sorted, nil
}

// State returns the current state.
func (s *Simulation) State() *State {
	return s.current
}

// History returns the committed states indexed by epoch,
// or nil if Options.History is not set.
func (s *Simulation) History() []*State {
	return s.history
}

// Telemetry returns the collision counters.
func (s *Simulation) Telemetry() *Telemetry {
	return s.telemetry
}

// Step applies the earliest pending collision and returns the new state.
// It returns ErrNoEvents if nothing will ever collide.
// On error the current state is left unchanged.
func (s *Simulation) Step() (*State, error) {
	cur := s.current
	c, ok := cur.Earliest()
	if !ok {
		return nil, ErrNoEvents
	}
	if math.IsNaN(c.T) || c.T < 0 {
		return nil, &InvariantError{Epoch: cur.Epoch + 1, Event: c, Msg: "invalid collision time"}
	}

	// free flight up to the contact
	bodies := make([]Body, len(cur.bodies))
	for i, b := range cur.bodies {
		bodies[i] = Advance(b, c.T)
	}

	ia, ib := cur.index[c.A], cur.index[c.B]
	p, ok := bodies[ia].(Particle)
	if !ok {
		return nil, &InvariantError{Epoch: cur.Epoch + 1, Event: c, Msg: "first participant is not a particle"}
	}
	a, b, err := Resolve(p, bodies[ib])
	if err != nil {
		return nil, &InvariantError{Epoch: cur.Epoch + 1, Event: c, Msg: err.Error()}
	}
	bodies[ia], bodies[ib] = a, b

	// A is always mobile and a collision needs a nonzero relative
	// velocity, so scale is positive even when B is static.
	scale := r2.Norm(p.vel) + r2.Norm(cur.bodies[ib].Velocity())
	if sep := separation(a, b); sep < -Tolerance*scale {
		return nil, &InvariantError{Epoch: cur.Epoch + 1, Event: c, Msg: fmt.Sprintf("bodies approach at %g after contact", -sep)}
	}

	next := newState(cur.Epoch+1, cur.Time+c.T, bodies, cur.index, &c)
	if err := s.fill(next); err != nil {
		return nil, err
	}
	s.commit(next)
	return next, nil
}

// Run applies events until no collision remains, maxEpochs events
// have been applied, the horizon is reached or ctx is done.
// A negative maxEpochs means no limit. observe may be nil.
// When the simulation is still at epoch 0, observe is first called with the initial state.
func (s *Simulation) Run(ctx context.Context, maxEpochs int, observe Observer) (Result, error) {
	res := Result{State: s.current}
	if observe != nil && s.current.Epoch == 0 {
		if err := observe(s.current); err != nil {
			res.Reason = Canceled
			return res, err
		}
	}
	for {
		if err := ctx.Err(); err != nil {
			res.Reason = Canceled
			return res, err
		}
		c, ok := s.current.Earliest()
		switch {
		case !ok:
			res.Reason = Quiescent
			return res, nil
		case maxEpochs >= 0 && res.Events >= maxEpochs:
			res.Reason = Exhausted
			return res, nil
		case s.opts.MaxTime > 0 && s.current.Time+c.T > s.opts.MaxTime:
			res.Reason = Horizon
			return res, nil
		}

		st, err := s.Step()
		if err != nil {
			return res, err
		}
		res.Events++
		res.State = st

		if observe != nil {
			if err := observe(st); err != nil {
				res.Reason = Canceled
				return res, err
			}
		}
	}
}

// fill computes the pending collisions of st.
func (s *Simulation) fill(st *State) error {
	c, n, err := s.sel.Scan(st)
	if err != nil {
		return err
	}
	st.pending, st.degenerate = c, n
	return nil
}

func (s *Simulation) commit(st *State) {
	s.current = st
	if s.opts.History {
		s.history = append(s.history, st)
	}
	s.telemetry.Record(st)
}
