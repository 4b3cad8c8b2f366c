// Package trace records simulation states as text files or as a msgpack
// stream of frames.
package trace

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/PrincetonUniversity/edmd"
)

// A Row is the state of one body in a Frame.
// Walls store their coordinate in X or Y depending on their axis.
type Row struct {
	ID   int       `msgpack:"id"`
	Kind edmd.Kind `msgpack:"k"`
	Axis edmd.Axis `msgpack:"a,omitempty"`
	X    float64   `msgpack:"x"`
	Y    float64   `msgpack:"y"`
	VX   float64   `msgpack:"vx,omitempty"`
	VY   float64   `msgpack:"vy,omitempty"`
	R    float64   `msgpack:"r,omitempty"`
	M    float64   `msgpack:"m,omitempty"`
}

// An Event names the participants of the collision that produced a Frame.
type Event struct {
	A int `msgpack:"a"`
	B int `msgpack:"b"`
}

// A Frame is a committed state.
type Frame struct {
	Epoch  int     `msgpack:"e"`
	Time   float64 `msgpack:"t"`
	Event  *Event  `msgpack:"ev,omitempty"`
	Bodies []Row   `msgpack:"b"`
}

// FrameOf returns the frame of s.
func FrameOf(s *edmd.State) Frame {
	f := Frame{
		Epoch:  s.Epoch,
		Time:   s.Time,
		Bodies: make([]Row, s.Len()),
	}
	if s.Event != nil {
		f.Event = &Event{A: s.Event.A, B: s.Event.B}
	}
	for i := range f.Bodies {
		f.Bodies[i] = RowOf(s.At(i))
	}
	return f
}

// RowOf returns the row of b.
func RowOf(b edmd.Body) Row {
	p, v := b.Position(), b.Velocity()
	r := Row{ID: b.ID(), Kind: b.Kind(), X: p.X, Y: p.Y, VX: v.X, VY: v.Y, R: b.Radius()}
	switch b := b.(type) {
	case edmd.Particle:
		r.M = b.Mass()
	case edmd.Wall:
		r.Axis = b.Axis()
	}
	return r
}

// Body rebuilds the body described by r.
func (r Row) Body() (edmd.Body, error) {
	pos := r2.Vec{X: r.X, Y: r.Y}
	switch r.Kind {
	case edmd.KindParticle:
		return edmd.NewParticle(r.ID, pos, r2.Vec{X: r.VX, Y: r.VY}, r.R, r.M), nil
	case edmd.KindObstacle:
		return edmd.NewObstacle(r.ID, pos, r.R), nil
	case edmd.KindWall:
		if r.Axis == edmd.Vertical {
			return edmd.NewWall(r.ID, r.Axis, r.X), nil
		}
		return edmd.NewWall(r.ID, r.Axis, r.Y), nil
	}
	return nil, fmt.Errorf("trace: body %d has unknown kind %d", r.ID, int(r.Kind))
}

// Restore rebuilds the bodies of f.
func (f Frame) Restore() ([]edmd.Body, error) {
	out := make([]edmd.Body, len(f.Bodies))
	for i, r := range f.Bodies {
		b, err := r.Body()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
