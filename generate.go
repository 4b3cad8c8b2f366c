package edmd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// A Source is a source of uniformly distributed numbers in [0, 1).
// *rand.Rand from golang.org/x/exp/rand satisfies it.
type Source interface {
	Float64() float64
}

// Setup contains the parameters of a random initial condition.
type Setup struct {
	Particles      int     // number of mobile particles
	Width, Height  float64 // domain size (m)
	Radius         float64 // particle radius (m)
	Mass           float64 // particle mass (kg)
	Speed          float64 // particle speed (m/s)
	ObstacleRadius float64 // radius of the anchor obstacle at the center, 0 for none (m)
	MaxAttempts    int     // placement attempts per particle, 0 means DefaultAttempts
}

// DefaultAttempts is the number of placement attempts per particle used
// when Setup.MaxAttempts is zero.
const DefaultAttempts = 10000

// maxPacking is the density of the hexagonal packing of equal discs.
var maxPacking = math.Pi / (2 * math.Sqrt(3))

// Generate places non-overlapping particles uniformly at random in the
// domain with velocity directions uniform in [0, 2π).
// The anchor obstacle, if any, gets id 0 and sits at the center.
// Particles follow, then the four walls of the domain.
// An error matching ErrInvalidConfiguration is returned when the setup is
// invalid or the particles cannot be placed within the allowed attempts.
func Generate(setup Setup, rng Source) ([]Body, error) {
	if err := setup.check(); err != nil {
		return nil, err
	}
	attempts := setup.MaxAttempts
	if attempts == 0 {
		attempts = DefaultAttempts
	}

	var bodies []Body
	id := 0
	if setup.ObstacleRadius > 0 {
		center := r2.Vec{X: setup.Width / 2, Y: setup.Height / 2}
		bodies = append(bodies, NewObstacle(id, center, setup.ObstacleRadius))
		id++
	}

	r := setup.Radius
	for n := 0; n < setup.Particles; n++ {
		placed := false
		for try := 0; try < attempts && !placed; try++ {
			pos := r2.Vec{
				X: r + rng.Float64()*(setup.Width-2*r),
				Y: r + rng.Float64()*(setup.Height-2*r),
			}
			if overlaps(pos, r, bodies) {
				continue
			}
			θ := 2 * math.Pi * rng.Float64()
			vel := r2.Vec{X: setup.Speed * math.Cos(θ), Y: setup.Speed * math.Sin(θ)}
			bodies = append(bodies, NewParticle(id, pos, vel, r, setup.Mass))
			id++
			placed = true
		}
		if !placed {
			return nil, fmt.Errorf("%w: could not place particle %d of %d after %d attempts", ErrInvalidConfiguration, n+1, setup.Particles, attempts)
		}
	}

	return append(bodies, Box(setup.Width, setup.Height, id)...), nil
}

// check rejects setups that cannot work before sampling anything.
func (s Setup) check() error {
	bad := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidConfiguration}, args...)...)
	}
	switch {
	case s.Particles < 0:
		return bad("negative particle count %d", s.Particles)
	case !(s.Width > 0) || !(s.Height > 0) || math.IsInf(s.Width, 0) || math.IsInf(s.Height, 0):
		return bad("domain %g×%g", s.Width, s.Height)
	case !(s.Radius >= 0) || math.IsInf(s.Radius, 0):
		return bad("radius %g", s.Radius)
	case !(s.ObstacleRadius >= 0) || math.IsInf(s.ObstacleRadius, 0):
		return bad("obstacle radius %g", s.ObstacleRadius)
	case !(s.Mass > 0) || math.IsInf(s.Mass, 0):
		return bad("mass %g", s.Mass)
	case !(s.Speed >= 0) || math.IsInf(s.Speed, 0):
		return bad("speed %g", s.Speed)
	case s.MaxAttempts < 0:
		return bad("negative attempts %d", s.MaxAttempts)
	}
	if s.Particles == 0 {
		return nil
	}
	if 2*s.Radius > s.Width || 2*s.Radius > s.Height {
		return bad("particle diameter %g larger than domain %g×%g", 2*s.Radius, s.Width, s.Height)
	}
	if 2*s.ObstacleRadius > math.Min(s.Width, s.Height) {
		return bad("obstacle diameter %g larger than domain %g×%g", 2*s.ObstacleRadius, s.Width, s.Height)
	}
	occupied := float64(s.Particles)*math.Pi*s.Radius*s.Radius + math.Pi*s.ObstacleRadius*s.ObstacleRadius
	if occupied > maxPacking*s.Width*s.Height {
		return bad("%d particles of radius %g cannot fit in %g×%g", s.Particles, s.Radius, s.Width, s.Height)
	}
	return nil
}

// overlaps reports whether a disc at pos with radius r would intersect any body.
func overlaps(pos r2.Vec, r float64, bodies []Body) bool {
	for _, b := range bodies {
		σ := r + b.Radius()
		if r2.Norm2(r2.Sub(pos, b.Position())) < σ*σ {
			return true
		}
	}
	return false
}
