package trace

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/PrincetonUniversity/edmd"
)

func simulation(t *testing.T) *edmd.Simulation {
	t.Helper()
	bodies := []edmd.Body{
		edmd.NewObstacle(0, r2.Vec{X: 5, Y: 5}, 1),
		edmd.NewParticle(1, r2.Vec{X: 1, Y: 5}, r2.Vec{X: 1}, 0.5, 1),
		edmd.NewParticle(2, r2.Vec{X: 5, Y: 8}, r2.Vec{Y: 2}, 0.25, 2),
	}
	bodies = append(bodies, edmd.Box(10, 10, 3)...)
	sim, err := edmd.New(bodies, edmd.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return sim
}

func TestStream(t *testing.T) {
	sim := simulation(t)
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	var want []Frame
	_, err := sim.Run(context.Background(), 5, func(s *edmd.State) error {
		want = append(want, FrameOf(s))
		return enc.Record(s)
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := ReadAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decoded frames differ:\ngot  %+v\nwant %+v", got, want)
	}
	if got[0].Event != nil || got[1].Event == nil {
		t.Errorf("unexpected events %v and %v", got[0].Event, got[1].Event)
	}

	// the last frame restarts the simulation where it stopped
	bodies, err := got[len(got)-1].Restore()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(bodies, sim.State().Bodies()) {
		t.Errorf("restored bodies %v, want %v", bodies, sim.State().Bodies())
	}
}

func TestRowBody(t *testing.T) {
	for _, b := range []edmd.Body{
		edmd.NewParticle(1, r2.Vec{X: 1, Y: 2}, r2.Vec{X: 3, Y: 4}, 0.5, 6),
		edmd.NewObstacle(2, r2.Vec{X: 1, Y: 2}, 0.5),
		edmd.NewWall(3, edmd.Vertical, 7),
		edmd.NewWall(4, edmd.Horizontal, 8),
	} {
		got, err := RowOf(b).Body()
		if err != nil {
			t.Fatal(err)
		}
		if got != b {
			t.Errorf("got %v, want %v", got, b)
		}
	}
	if _, err := (Row{Kind: 7}).Body(); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}

func TestText(t *testing.T) {
	sim := simulation(t)
	s := sim.State()

	var static bytes.Buffer
	if err := WriteStatic(&static, s, 10, 10); err != nil {
		t.Fatal(err)
	}
	if got, want := static.String(), "3\n10\t10\n1\t1\n0.5\t0\n0.25\t0\n"; got != want {
		t.Errorf("static file:\n%q\nwant\n%q", got, want)
	}

	var dynamic, inter bytes.Buffer
	rec := &Text{Dynamic: &dynamic, Interactions: &inter, Interactor: fixed{1: {0}, 0: {1, 2}}}
	if err := rec.Record(s); err != nil {
		t.Fatal(err)
	}
	if got, want := dynamic.String(), "0\n0\t5\t5\n1\t1\t5\n2\t5\t8\n"; got != want {
		t.Errorf("dynamic file:\n%q\nwant\n%q", got, want)
	}
	if got, want := inter.String(), "0\n0\t1\t2\n1\t0\n"; got != want {
		t.Errorf("interactions file:\n%q\nwant\n%q", got, want)
	}

	dynamic.Reset()
	rec = &Text{Dynamic: &dynamic}
	if _, err := sim.Step(); err != nil {
		t.Fatal(err)
	}
	if err := rec.Record(sim.State()); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(dynamic.String()), "\n"); len(lines) != 4 || lines[0] != "0.875" {
		t.Errorf("unexpected frame %q", dynamic.String())
	}
}

type fixed map[int][]int

func (f fixed) Interactions(*edmd.State) map[int][]int { return f }
