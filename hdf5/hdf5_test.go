package hdf5

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/PrincetonUniversity/edmd"
	"github.com/PrincetonUniversity/edmd/trace"
)

type params struct {
	Particles int
	Radius    float64
	Periodic  bool
	Format    string
	skipped   []int
}

func TestRoundTrip(t *testing.T) {
	bodies, err := edmd.Generate(edmd.Setup{Particles: 20, Width: 1, Height: 1, Radius: 0.02, Mass: 1, Speed: 1, ObstacleRadius: 0.1}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	sim, err := edmd.New(bodies, edmd.Options{History: true})
	if err != nil {
		t.Fatal(err)
	}

	const steps = 10
	path := filepath.Join(t.TempDir(), "out", "run.h5")
	rec, err := Create(&Config{
		Output:   path,
		Steps:    steps + 5,
		Datasets: Datasets(len(bodies) + 3),
		Params:   &params{Particles: 20, Radius: 0.02, Format: "hdf5"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Run(context.Background(), steps, rec.Record); err != nil {
		t.Fatal(err)
	}
	if rec.Frames() != steps+1 {
		t.Errorf("recorded %d frames, want %d", rec.Frames(), steps+1)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	l, err := NewLoader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	if l.Len() != steps+1 {
		t.Fatalf("loader has %d frames, want %d", l.Len(), steps+1)
	}
	for _, s := range append(sim.History(), sim.History()[0]) {
		got, err := l.Load()
		if err != nil {
			t.Fatal(err)
		}
		if want := trace.FrameOf(s); !reflect.DeepEqual(got, want) {
			t.Fatalf("frame %d:\ngot  %+v\nwant %+v", s.Epoch, got, want)
		}
	}
}

func TestFull(t *testing.T) {
	bodies := edmd.Box(1, 1, 0)
	sim, err := edmd.New(bodies, edmd.Options{})
	if err != nil {
		t.Fatal(err)
	}
	rec, err := Create(&Config{Output: filepath.Join(t.TempDir(), "full.h5"), Steps: 1, Datasets: Datasets(4)})
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()
	if err := rec.Record(sim.State()); err != nil {
		t.Fatal(err)
	}
	if err := rec.Record(sim.State()); !errors.Is(err, ErrFull) {
		t.Errorf("got %v, want %v", err, ErrFull)
	}
}
