package cim

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/PrincetonUniversity/edmd"
)

var unit = r2.Box{Max: r2.Vec{X: 1, Y: 1}}

func state(t *testing.T, n int, radius float64, seed uint64) *edmd.State {
	t.Helper()
	bodies, err := edmd.Generate(edmd.Setup{
		Particles:      n,
		Width:          1,
		Height:         1,
		Radius:         radius,
		Mass:           1,
		Speed:          1,
		ObstacleRadius: 0.05,
	}, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatal(err)
	}
	sim, err := edmd.New(bodies, edmd.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return sim.State()
}

func TestInteractions(t *testing.T) {
	s := state(t, 300, 0.005, 1)
	for _, test := range []struct {
		m        int
		rc       float64
		periodic bool
	}{
		{m: 1, rc: 0.05},
		{m: 5, rc: 0.05},
		{m: 13, rc: 0.05},
		{m: 13, rc: 0.05, periodic: true},
		{m: 2, rc: 0.1, periodic: true},
		{m: 40, rc: 0.01},
	} {
		cm, err := New(test.m, unit, test.rc, test.periodic)
		if err != nil {
			t.Fatal(err)
		}
		got := cm.Interactions(s)
		want := cm.BruteForce(s)
		if len(want) == 0 {
			t.Fatalf("M=%d rc=%g: no interactions at all", test.m, test.rc)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("M=%d rc=%g periodic=%t: cell index differs from brute force", test.m, test.rc, test.periodic)
		}
	}
}

func TestNeighbors(t *testing.T) {
	s := state(t, 100, 0.01, 2)
	cm, err := New(10, unit, 0.1, false)
	if err != nil {
		t.Fatal(err)
	}
	want := cm.BruteForce(s)
	for i := 0; i < s.Len(); i++ {
		b := s.At(i)
		if b.Kind() == edmd.KindWall {
			continue
		}
		var got []int
		for _, q := range cm.Neighbors(b, s) {
			got = append(got, q.ID())
		}
		if len(got) != len(want[b.ID()]) {
			t.Errorf("body %d: got %d neighbors, want %d", b.ID(), len(got), len(want[b.ID()]))
		}
	}
}

func TestCells(t *testing.T) {
	s := state(t, 10, 0.01, 3)
	cm, err := New(100, unit, 0.1, false)
	if err != nil {
		t.Fatal(err)
	}
	// the anchor obstacle sets the largest radius
	if got, want := cm.Cells(s), int(1/(0.1+2*0.05)); got != want {
		t.Errorf("got %d cells per side, want %d", got, want)
	}
	cm.M = 3
	cm.cached = nil
	if got := cm.Cells(s); got != 3 {
		t.Errorf("got %d cells per side, want 3", got)
	}
}

func TestNew(t *testing.T) {
	for _, test := range []struct {
		m   int
		box r2.Box
		rc  float64
	}{
		{0, unit, 1},
		{1, r2.Box{}, 1},
		{1, unit, -1},
	} {
		if _, err := New(test.m, test.box, test.rc, false); !errors.Is(err, edmd.ErrInvalidConfiguration) {
			t.Errorf("New(%d, %v, %g): got error %v", test.m, test.box, test.rc, err)
		}
	}
}

func TestPrunedRun(t *testing.T) {
	run := func(nf edmd.NeighborFinder) []edmd.Collision {
		s := state(t, 150, 0.005, 4)
		sim, err := edmd.New(s.Bodies(), edmd.Options{Neighbors: nf, Workers: 2})
		if err != nil {
			t.Fatal(err)
		}
		var events []edmd.Collision
		_, err = sim.Run(context.Background(), 500, func(s *edmd.State) error {
			if s.Event != nil {
				events = append(events, *s.Event)
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		return events
	}

	want := run(nil)
	cm, err := New(20, unit, 0.02, false)
	if err != nil {
		t.Fatal(err)
	}
	got := run(cm)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pruned run diverged from the all-pairs run")
	}
}
