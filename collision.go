package edmd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// A Collision is a predicted contact between particle A and body B
// occurring T after the State it was computed from.
// It is only meaningful for that State.
type Collision struct {
	A int     // id of the particle
	B int     // id of the other body
	T float64 // time to collision
}

// Pair returns the ids of the participants in increasing order.
func (c Collision) Pair() (lo, hi int) {
	if c.A < c.B {
		return c.A, c.B
	}
	return c.B, c.A
}

// Involves reports whether the body with the given id takes part in c.
func (c Collision) Involves(id int) bool {
	return c.A == id || c.B == id
}

func (c Collision) String() string {
	return fmt.Sprintf("%d-%d in %g", c.A, c.B, c.T)
}

// Less orders collisions by time, then by the pair of ids.
func (c Collision) Less(d Collision) bool {
	return compareCollisions(c, d) < 0
}

func compareCollisions(c, d Collision) int {
	switch {
	case c.T < d.T:
		return -1
	case c.T > d.T:
		return 1
	}
	clo, chi := c.Pair()
	dlo, dhi := d.Pair()
	switch {
	case clo != dlo:
		return clo - dlo
	case chi != dhi:
		return chi - dhi
	}
	return 0
}

// Resolve applies an elastic collision between particle a and body b,
// both taken at the instant of contact. Positions are left untouched.
func Resolve(a Particle, b Body) (Particle, Body, error) {
	switch q := b.(type) {
	case Particle:
		a, q = resolveParticles(a, q)
		return a, q, nil
	case Obstacle:
		return resolveObstacle(a, q), q, nil
	case Wall:
		return bounce(a, q), q, nil
	}
	return a, b, fmt.Errorf("edmd: cannot resolve %v against %v", a, b)
}

// resolveParticles exchanges the impulse
// J = 2 m1 m2 (Δv·Δr) / (σ (m1+m2)) along the line of centers.
// The normal is taken from the actual distance, which is σ at contact.
func resolveParticles(p, q Particle) (Particle, Particle) {
	n, ok := normal(p.pos, q.pos)
	if !ok {
		return p, q
	}
	m1, m2 := p.mass, q.mass
	J := 2 * m1 * m2 * r2.Dot(r2.Sub(p.vel, q.vel), n) / (m1 + m2)
	p.vel = r2.Sub(p.vel, r2.Scale(J/m1, n))
	q.vel = r2.Add(q.vel, r2.Scale(J/m2, n))
	return p, q
}

// resolveObstacle is resolveParticles with m2 → ∞.
func resolveObstacle(p Particle, o Obstacle) Particle {
	n, ok := normal(p.pos, o.pos)
	if !ok {
		return p
	}
	J := 2 * p.mass * r2.Dot(p.vel, n)
	p.vel = r2.Sub(p.vel, r2.Scale(J/p.mass, n))
	return p
}

// normal returns the unit vector from b to a.
func normal(a, b r2.Vec) (r2.Vec, bool) {
	dr := r2.Sub(a, b)
	d := r2.Norm(dr)
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return r2.Vec{}, false
	}
	return r2.Vec{X: dr.X / d, Y: dr.Y / d}, true
}

// bounce negates the normal component of the velocity of p.
func bounce(p Particle, w Wall) Particle {
	if w.axis == Vertical {
		p.vel.X = -p.vel.X
	} else {
		p.vel.Y = -p.vel.Y
	}
	return p
}

// separation returns the rate at which a and b move apart along their
// line of centers (or along the normal of a wall). It is negative while approaching.
func separation(a Particle, b Body) float64 {
	if w, ok := b.(Wall); ok {
		x, v := w.along(a.pos), w.along(a.vel)
		if x < w.coord {
			return -v
		}
		return v
	}
	dr := r2.Sub(a.pos, b.Position())
	d := r2.Norm(dr)
	if d == 0 || math.IsNaN(d) {
		return 0
	}
	return r2.Dot(r2.Sub(a.vel, b.Velocity()), dr) / d
}
