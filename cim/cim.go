// Package cim implements the cell index method: bodies are binned in an
// M×M grid so that the bodies within an interaction distance of a body
// are found by looking at its cell and the 8 surrounding ones.
//
// A *Method can be used as the edmd.NeighborFinder of a simulation.
package cim

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/PrincetonUniversity/edmd"
)

// A Method indexes the discs of a State in a grid of cells.
// It is safe for concurrent use.
type Method struct {
	M        int     // requested number of cells per side
	Box      r2.Box  // domain
	Rc       float64 // interaction distance between surfaces (m)
	Periodic bool    // wrap the domain around its edges

	mu     sync.Mutex
	cached *grid
}

// New returns a Method with m×m cells over box.
func New(m int, box r2.Box, rc float64, periodic bool) (*Method, error) {
	w, h := box.Max.X-box.Min.X, box.Max.Y-box.Min.Y
	switch {
	case m < 1:
		return nil, fmt.Errorf("%w: %d cells per side", edmd.ErrInvalidConfiguration, m)
	case !(w > 0) || !(h > 0):
		return nil, fmt.Errorf("%w: empty domain %v", edmd.ErrInvalidConfiguration, box)
	case !(rc >= 0) || math.IsInf(rc, 0):
		return nil, fmt.Errorf("%w: interaction distance %g", edmd.ErrInvalidConfiguration, rc)
	}
	return &Method{M: m, Box: box, Rc: rc, Periodic: periodic}, nil
}

// Cutoff returns the interaction distance.
func (m *Method) Cutoff() float64 {
	return m.Rc
}

// Cells returns the number of cells per side used for s. It is at most M
// and small enough that a cell side covers Rc plus two of the largest radii.
func (m *Method) Cells(s *edmd.State) int {
	return m.index(s).m
}

// Neighbors returns the particles and obstacles of s, b excluded,
// whose surface lies within Rc of the surface of b.
func (m *Method) Neighbors(b edmd.Body, s *edmd.State) []edmd.Body {
	g := m.index(s)
	var out []edmd.Body
	g.visit(b.Position(), func(i int) {
		q := s.At(i)
		if q.ID() != b.ID() && m.gap(b, q) <= m.Rc {
			out = append(out, q)
		}
	})
	return out
}

// Interactions returns, for every disc of s, the sorted ids of the other
// discs whose surface lies within Rc. Discs without neighbors are omitted.
func (m *Method) Interactions(s *edmd.State) map[int][]int {
	g := m.index(s)
	out := make(map[int][]int)
	for _, i := range g.discs {
		b := s.At(i)
		g.visit(b.Position(), func(j int) {
			q := s.At(j)
			if i != j && m.gap(b, q) <= m.Rc {
				out[b.ID()] = append(out[b.ID()], q.ID())
			}
		})
	}
	for _, ids := range out {
		slices.Sort(ids)
	}
	return out
}

// BruteForce computes the same result as Interactions by comparing every pair.
func (m *Method) BruteForce(s *edmd.State) map[int][]int {
	out := make(map[int][]int)
	for i := 0; i < s.Len(); i++ {
		b := s.At(i)
		if b.Kind() == edmd.KindWall {
			continue
		}
		for j := 0; j < s.Len(); j++ {
			q := s.At(j)
			if i != j && q.Kind() != edmd.KindWall && m.gap(b, q) <= m.Rc {
				out[b.ID()] = append(out[b.ID()], q.ID())
			}
		}
	}
	return out
}

// gap returns the distance between the surfaces of two discs.
func (m *Method) gap(a, b edmd.Body) float64 {
	d := r2.Sub(a.Position(), b.Position())
	if m.Periodic {
		w, h := m.Box.Max.X-m.Box.Min.X, m.Box.Max.Y-m.Box.Min.Y
		d.X -= w * math.Round(d.X/w)
		d.Y -= h * math.Round(d.Y/h)
	}
	return r2.Norm(d) - a.Radius() - b.Radius()
}

// index returns the grid of s, building it on first use.
func (m *Method) index(s *edmd.State) *grid {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cached == nil || m.cached.state != s {
		m.cached = m.build(s)
	}
	return m.cached
}

// A grid holds the positions in s of the discs of each cell, row-major.
type grid struct {
	state    *edmd.State
	m        int
	size     r2.Vec // cell size
	min      r2.Vec
	periodic bool
	cells    [][]int
	discs    []int
}

func (m *Method) build(s *edmd.State) *grid {
	var maxR float64
	var discs []int
	for i := 0; i < s.Len(); i++ {
		b := s.At(i)
		if b.Kind() == edmd.KindWall {
			continue
		}
		discs = append(discs, i)
		maxR = math.Max(maxR, b.Radius())
	}

	w, h := m.Box.Max.X-m.Box.Min.X, m.Box.Max.Y-m.Box.Min.Y
	n := m.M
	if reach := m.Rc + 2*maxR; reach > 0 {
		n = min(n, int(math.Min(w, h)/reach))
	}
	n = max(n, 1)

	g := &grid{
		state:    s,
		m:        n,
		size:     r2.Vec{X: w / float64(n), Y: h / float64(n)},
		min:      m.Box.Min,
		periodic: m.Periodic,
		cells:    make([][]int, n*n),
		discs:    discs,
	}
	for _, i := range discs {
		cx, cy := g.cell(s.At(i).Position())
		g.cells[cy*n+cx] = append(g.cells[cy*n+cx], i)
	}
	return g
}

// cell returns the coordinates of the cell containing p, clamped to the grid.
func (g *grid) cell(p r2.Vec) (int, int) {
	cx := int(math.Floor((p.X - g.min.X) / g.size.X))
	cy := int(math.Floor((p.Y - g.min.Y) / g.size.Y))
	return min(max(cx, 0), g.m-1), min(max(cy, 0), g.m-1)
}

// visit calls fn with every disc in the 3×3 block around the cell of p.
func (g *grid) visit(p r2.Vec, fn func(i int)) {
	cx, cy := g.cell(p)
	seen := make(map[int]bool, 9)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := cx+dx, cy+dy
			if g.periodic {
				x, y = (x+g.m)%g.m, (y+g.m)%g.m
			} else if x < 0 || x >= g.m || y < 0 || y >= g.m {
				continue
			}
			// small grids wrap onto the same cell more than once
			k := y*g.m + x
			if seen[k] {
				continue
			}
			seen[k] = true
			for _, i := range g.cells[k] {
				fn(i)
			}
		}
	}
}
