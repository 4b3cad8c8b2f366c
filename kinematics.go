package edmd

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Never is the time to collision of bodies that will not touch.
var Never = math.Inf(1)

// Tolerance is the relative overlap accepted between touching bodies.
// It absorbs the rounding of positions advanced up to a contact.
const Tolerance = 1e-9

// Advance returns b after free flight for dt. Only particles move.
func Advance(b Body, dt float64) Body {
	p, ok := b.(Particle)
	if !ok {
		return b
	}
	p.pos = r2.Add(p.pos, r2.Scale(dt, p.vel))
	return p
}

// TimeToCollision returns the smallest t ≥ 0 at which the surfaces of a and b touch,
// or Never. At least one of the bodies must be a particle.
// An error matching ErrInvariantViolation is returned if the bodies already overlap.
func TimeToCollision(a, b Body) (float64, error) {
	if _, ok := a.(Particle); !ok {
		a, b = b, a
	}
	p, ok := a.(Particle)
	if !ok {
		return Never, nil
	}
	t, err := collisionTime(p, b)
	if errors.Is(err, errDegenerate) {
		return Never, nil
	}
	return t, err
}

// collisionTime dispatches on the variant of q.
// Degenerate geometry is reported as errDegenerate.
func collisionTime(p Particle, q Body) (float64, error) {
	switch q := q.(type) {
	case Particle:
		return discTime(p, q)
	case Obstacle:
		return discTime(p, q)
	case Wall:
		return wallTime(p, q)
	}
	return Never, nil
}

// discTime solves |Δr + Δv t| = σ for the first contact of two discs.
func discTime(p Particle, q Body) (float64, error) {
	dr := r2.Sub(p.pos, q.Position())
	dv := r2.Sub(p.vel, q.Velocity())
	σ := p.radius + q.Radius()
	if !finite(dr) || !finite(dv) || math.IsNaN(σ) {
		return Never, errDegenerate
	}

	d := r2.Norm(dr)
	if σ == 0 && d == 0 {
		// coincident points have no normal
		return Never, errDegenerate
	}
	if σ-d > Tolerance*σ {
		return Never, &OverlapError{A: p.id, B: q.ID(), Gap: d - σ}
	}

	// moving apart or parallel
	b := r2.Dot(dv, dr)
	if b >= 0 {
		return Never, nil
	}

	a := r2.Dot(dv, dv)
	c := r2.Dot(dr, dr) - σ*σ
	disc := b*b - a*c
	if disc < 0 {
		return Never, nil
	}

	// smaller root; disc == 0 is a graze, still a valid contact
	t := c / (math.Sqrt(disc) - b)
	if t < 0 {
		t = 0
	}
	return t, nil
}

// wallTime solves x + v t = c ∓ r along the normal of the wall.
func wallTime(p Particle, w Wall) (float64, error) {
	x, v := w.along(p.pos), w.along(p.vel)
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(v) || math.IsInf(v, 0) {
		return Never, errDegenerate
	}

	var gap, speed float64
	switch {
	case x < w.coord:
		gap, speed = w.coord-p.radius-x, v
	case x > w.coord:
		gap, speed = x-p.radius-w.coord, -v
	case p.radius == 0:
		return Never, errDegenerate
	default:
		return Never, &OverlapError{A: p.id, B: w.id, Gap: -p.radius}
	}

	if gap < -Tolerance*math.Max(p.radius, math.Abs(w.coord)) {
		return Never, &OverlapError{A: p.id, B: w.id, Gap: gap}
	}
	if speed <= 0 {
		return Never, nil
	}
	return math.Max(gap, 0) / speed, nil
}

// finite reports whether both coordinates of v are finite numbers.
func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
