package trace

import (
	"bufio"
	"fmt"
	"io"
	"slices"

	"github.com/PrincetonUniversity/edmd"
)

// WriteStatic writes the static description of the discs of s:
// their count, the domain size, then one "radius<TAB>color" line per disc
// in id order. The color hint is the kind of the disc.
func WriteStatic(w io.Writer, s *edmd.State, width, height float64) error {
	bw := bufio.NewWriter(w)
	ds := discs(s)
	fmt.Fprintf(bw, "%d\n%g\t%g\n", len(ds), width, height)
	for _, b := range ds {
		fmt.Fprintf(bw, "%g\t%d\n", b.Radius(), int(b.Kind()))
	}
	return bw.Flush()
}

// WriteFrame appends one epoch to a dynamic file: the time on its own line,
// then one "id<TAB>x<TAB>y" line per disc.
func WriteFrame(w io.Writer, s *edmd.State) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%g\n", s.Time)
	for _, b := range discs(s) {
		p := b.Position()
		fmt.Fprintf(bw, "%d\t%g\t%g\n", b.ID(), p.X, p.Y)
	}
	return bw.Flush()
}

// WriteInteractions writes one "id<TAB>n1<TAB>n2…" line per body in
// increasing id order.
func WriteInteractions(w io.Writer, interactions map[int][]int) error {
	bw := bufio.NewWriter(w)
	ids := make([]int, 0, len(interactions))
	for id := range interactions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fmt.Fprint(bw, id)
		for _, n := range interactions[id] {
			fmt.Fprintf(bw, "\t%d", n)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// An Interactor lists the neighbors of every disc of a State.
// It is implemented by *cim.Method.
type Interactor interface {
	Interactions(s *edmd.State) map[int][]int
}

// A Text recorder writes every state it is given to a dynamic file and,
// if set, the interactions of that state to a second file.
type Text struct {
	Dynamic      io.Writer
	Interactions io.Writer
	Interactor   Interactor
}

// Record writes s. It can be used as an edmd.Observer.
func (t *Text) Record(s *edmd.State) error {
	if err := WriteFrame(t.Dynamic, s); err != nil {
		return err
	}
	if t.Interactions == nil || t.Interactor == nil {
		return nil
	}
	if _, err := fmt.Fprintf(t.Interactions, "%g\n", s.Time); err != nil {
		return err
	}
	return WriteInteractions(t.Interactions, t.Interactor.Interactions(s))
}

// discs returns the particles and obstacles of s.
func discs(s *edmd.State) []edmd.Body {
	var out []edmd.Body
	for i := 0; i < s.Len(); i++ {
		if b := s.At(i); b.Kind() != edmd.KindWall {
			out = append(out, b)
		}
	}
	return out
}
