// Package render draws simulation states as PNG images.
package render

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/PrincetonUniversity/edmd"
)

// A Disc is a body as drawn on screen.
type Disc struct {
	ID     int
	Kind   edmd.Kind
	Pos    r2.Vec
	Radius float64
}

// Discs returns the particles and obstacles among bodies.
func Discs(bodies []edmd.Body) []Disc {
	var out []Disc
	for _, b := range bodies {
		if b.Kind() == edmd.KindWall {
			continue
		}
		out = append(out, Disc{ID: b.ID(), Kind: b.Kind(), Pos: b.Position(), Radius: b.Radius()})
	}
	return out
}

// Domain returns the box enclosed by the walls among bodies.
// Axes without two walls are taken from the extent of the discs,
// or [0, 1] when there is nothing to measure.
func Domain(bodies []edmd.Body) r2.Box {
	box := r2.Box{
		Min: r2.Vec{X: math.Inf(1), Y: math.Inf(1)},
		Max: r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	var walls r2.Box
	var vertical, horizontal int
	for _, b := range bodies {
		switch w, ok := b.(edmd.Wall); {
		case ok && w.Axis() == edmd.Vertical:
			if vertical == 0 {
				walls.Min.X, walls.Max.X = w.Coord(), w.Coord()
			}
			walls.Min.X, walls.Max.X = math.Min(walls.Min.X, w.Coord()), math.Max(walls.Max.X, w.Coord())
			vertical++
		case ok:
			if horizontal == 0 {
				walls.Min.Y, walls.Max.Y = w.Coord(), w.Coord()
			}
			walls.Min.Y, walls.Max.Y = math.Min(walls.Min.Y, w.Coord()), math.Max(walls.Max.Y, w.Coord())
			horizontal++
		default:
			p, r := b.Position(), b.Radius()
			box.Min.X, box.Min.Y = math.Min(box.Min.X, p.X-r), math.Min(box.Min.Y, p.Y-r)
			box.Max.X, box.Max.Y = math.Max(box.Max.X, p.X+r), math.Max(box.Max.Y, p.Y+r)
		}
	}
	box.Min.X, box.Max.X = span(vertical, walls.Min.X, walls.Max.X, box.Min.X, box.Max.X)
	box.Min.Y, box.Max.Y = span(horizontal, walls.Min.Y, walls.Max.Y, box.Min.Y, box.Max.Y)
	return box
}

// span picks the extent of one axis: the walls if there are two of them,
// else the discs, else [0, 1].
func span(walls int, wmin, wmax, dmin, dmax float64) (float64, float64) {
	switch {
	case walls >= 2:
		return wmin, wmax
	case !math.IsInf(dmin, 0):
		return dmin, dmax
	}
	return 0, 1
}

// Colors of the discs, as RGB in [0, 1].
var (
	Background = [3]float64{1, 1, 1}
	Particle   = [3]float64{0.12, 0.47, 0.71}
	Obstacle   = [3]float64{0.84, 0.15, 0.16}
	Colliding  = [3]float64{1, 0.5, 0.05}
)

// A Canvas draws discs of a domain on an image of fixed size.
type Canvas struct {
	dc    *gg.Context
	box   r2.Box
	scale float64
}

// NewCanvas returns a canvas whose largest side is size pixels.
func NewCanvas(size int, box r2.Box) *Canvas {
	w, h := box.Max.X-box.Min.X, box.Max.Y-box.Min.Y
	scale := float64(size) / math.Max(w, h)
	width := max(int(math.Round(w*scale)), 1)
	height := max(int(math.Round(h*scale)), 1)
	return &Canvas{dc: gg.NewContext(width, height), box: box, scale: scale}
}

// Draw clears the canvas and draws discs. The participants of event,
// if not nil, are highlighted.
func (c *Canvas) Draw(discs []Disc, event *edmd.Collision) {
	setRGB(c.dc, Background)
	c.dc.Clear()
	for _, d := range discs {
		switch {
		case event != nil && event.Involves(d.ID):
			setRGB(c.dc, Colliding)
		case d.Kind == edmd.KindObstacle:
			setRGB(c.dc, Obstacle)
		default:
			setRGB(c.dc, Particle)
		}
		x, y := c.pixel(d.Pos)
		// keep tiny discs visible
		c.dc.DrawCircle(x, y, math.Max(d.Radius*c.scale, 0.5))
		c.dc.Fill()
	}
}

// pixel maps a point of the domain to the image, y pointing up.
func (c *Canvas) pixel(p r2.Vec) (float64, float64) {
	x := (p.X - c.box.Min.X) * c.scale
	y := float64(c.dc.Height()) - (p.Y-c.box.Min.Y)*c.scale
	return x, y
}

// Image returns the current image.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// SavePNG writes the current image to path.
func (c *Canvas) SavePNG(path string) error {
	return c.dc.SavePNG(path)
}

func setRGB(dc *gg.Context, c [3]float64) {
	dc.SetRGB(c[0], c[1], c[2])
}

// DefaultSize is the image size used by a Sequence without Size.
const DefaultSize = 512

// A Sequence writes one PNG per recorded state to a directory.
type Sequence struct {
	Dir   string // created if missing
	Every int    // epochs between frames, 0 or 1 for all
	Size  int    // pixels of the largest side, DefaultSize if 0

	canvas *Canvas
}

// Record draws s if its epoch is a multiple of Every.
// It can be used as an edmd.Observer.
func (q *Sequence) Record(s *edmd.State) error {
	if q.Every > 1 && s.Epoch%q.Every != 0 {
		return nil
	}
	bodies := s.Bodies()
	if q.canvas == nil {
		if err := os.MkdirAll(q.Dir, 0o755); err != nil {
			return err
		}
		size := q.Size
		if size <= 0 {
			size = DefaultSize
		}
		q.canvas = NewCanvas(size, Domain(bodies))
	}
	q.canvas.Draw(Discs(bodies), s.Event)
	return q.canvas.SavePNG(filepath.Join(q.Dir, fmt.Sprintf("frame_%06d.png", s.Epoch)))
}
