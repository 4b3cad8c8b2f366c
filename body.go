package edmd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Kind identifies the variant of a Body.
type Kind int

// Body variants.
const (
	KindParticle Kind = iota // mobile disc
	KindObstacle             // static disc
	KindWall                 // infinite line
)

func (k Kind) String() string {
	switch k {
	case KindParticle:
		return "particle"
	case KindObstacle:
		return "obstacle"
	case KindWall:
		return "wall"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// A Body is one of Particle, Obstacle or Wall.
// The set of variants is closed: Body cannot be implemented outside this package.
type Body interface {
	ID() int
	Kind() Kind
	Position() r2.Vec
	Velocity() r2.Vec
	Radius() float64
	Mass() float64

	sealed()
}

// A Particle is a mobile rigid disc.
type Particle struct {
	id     int
	pos    r2.Vec // center
	vel    r2.Vec
	radius float64
	mass   float64
}

// NewParticle returns a mobile disc.
func NewParticle(id int, pos, vel r2.Vec, radius, mass float64) Particle {
	return Particle{id: id, pos: pos, vel: vel, radius: radius, mass: mass}
}

func (p Particle) ID() int { return p.id }
func (p Particle) Kind() Kind { return KindParticle }
func (p Particle) Position() r2.Vec { return p.pos }
func (p Particle) Velocity() r2.Vec { return p.vel }
func (p Particle) Radius() float64 { return p.radius }
func (p Particle) Mass() float64 { return p.mass }
func (Particle) sealed() {}
func (p Particle) String() string { return fmt.Sprintf("particle %d at %v moving %v", p.id, p.pos, p.vel) }

// With returns a copy of p with the given position and velocity.
func (p Particle) With(pos, vel r2.Vec) Particle {
	p.pos, p.vel = pos, vel
	return p
}

// An Obstacle is a static disc. Its mass is infinite.
type Obstacle struct {
	id     int
	pos    r2.Vec
	radius float64
}

// NewObstacle returns a static disc.
func NewObstacle(id int, pos r2.Vec, radius float64) Obstacle {
	return Obstacle{id: id, pos: pos, radius: radius}
}

func (o Obstacle) ID() int { return o.id }
func (o Obstacle) Kind() Kind { return KindObstacle }
func (o Obstacle) Position() r2.Vec { return o.pos }
func (o Obstacle) Velocity() r2.Vec { return r2.Vec{} }
func (o Obstacle) Radius() float64 { return o.radius }
func (o Obstacle) Mass() float64 { return math.Inf(1) }
func (Obstacle) sealed() {}
func (o Obstacle) String() string { return fmt.Sprintf("obstacle %d at %v", o.id, o.pos) }

// Axis is the orientation of a Wall.
type Axis int

const (
	// Vertical walls are lines x = c. They reflect the x component of velocity.
	Vertical Axis = iota
	// Horizontal walls are lines y = c. They reflect the y component of velocity.
	Horizontal
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// A Wall is an infinite straight line at a fixed coordinate.
// Particles bounce off whichever face they approach.
type Wall struct {
	id    int
	axis  Axis
	coord float64
}

// NewWall returns the line x = coord (Vertical) or y = coord (Horizontal).
func NewWall(id int, axis Axis, coord float64) Wall {
	return Wall{id: id, axis: axis, coord: coord}
}

func (w Wall) ID() int { return w.id }
func (w Wall) Kind() Kind { return KindWall }
func (w Wall) Velocity() r2.Vec { return r2.Vec{} }
func (w Wall) Radius() float64 { return 0 }
func (w Wall) Mass() float64 { return math.Inf(1) }
func (Wall) sealed() {}
func (w Wall) Axis() Axis { return w.axis }
func (w Wall) Coord() float64 { return w.coord }
func (w Wall) String() string { return fmt.Sprintf("%s wall %d at %g", w.axis, w.id, w.coord) }

// Position returns the point of the line closest to the origin.
func (w Wall) Position() r2.Vec {
	if w.axis == Vertical {
		return r2.Vec{X: w.coord}
	}
	return r2.Vec{Y: w.coord}
}

// Normal returns the unit normal of the wall pointing towards +x or +y.
func (w Wall) Normal() r2.Vec {
	if w.axis == Vertical {
		return r2.Vec{X: 1}
	}
	return r2.Vec{Y: 1}
}

// along returns the component of v along the normal of the wall.
func (w Wall) along(v r2.Vec) float64 {
	if w.axis == Vertical {
		return v.X
	}
	return v.Y
}

// Box returns the four walls bounding [0,width]×[0,height]
// numbered left, right, bottom, top starting at firstID.
func Box(width, height float64, firstID int) []Body {
	return []Body{
		NewWall(firstID, Vertical, 0),
		NewWall(firstID+1, Vertical, width),
		NewWall(firstID+2, Horizontal, 0),
		NewWall(firstID+3, Horizontal, height),
	}
}
