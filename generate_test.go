package edmd

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestGenerate(t *testing.T) {
	setup := Setup{Particles: 100, Width: 2, Height: 1, Radius: 0.02, Mass: 2, Speed: 0.5, ObstacleRadius: 0.1}
	bodies, err := Generate(setup, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatal(err)
	}
	if len(bodies) != 1+setup.Particles+4 {
		t.Fatalf("got %d bodies, want %d", len(bodies), 1+setup.Particles+4)
	}

	anchor, ok := bodies[0].(Obstacle)
	if !ok || anchor.ID() != 0 || anchor.Position() != (r2.Vec{X: 1, Y: 0.5}) || anchor.Radius() != 0.1 {
		t.Errorf("unexpected anchor %v", bodies[0])
	}
	for i, b := range bodies {
		if b.ID() != i {
			t.Errorf("body %d has id %d", i, b.ID())
		}
	}
	for i, b := range bodies[1 : 1+setup.Particles] {
		if b.Kind() != KindParticle || b.Mass() != 2 || b.Radius() != 0.02 {
			t.Errorf("unexpected particle %v", b)
		}
		if v := r2.Norm(b.Velocity()); math.Abs(v-0.5) > 1e-12 {
			t.Errorf("particle %d has speed %g", b.ID(), v)
		}
		p := b.Position()
		if p.X < 0.02 || p.X > 1.98 || p.Y < 0.02 || p.Y > 0.98 {
			t.Errorf("particle %d outside the domain at %v", b.ID(), p)
		}
		for _, c := range bodies[:1+i] {
			if d := r2.Norm(r2.Sub(p, c.Position())); d < b.Radius()+c.Radius() {
				t.Errorf("particles %d and %d overlap", b.ID(), c.ID())
			}
		}
	}
	for _, b := range bodies[1+setup.Particles:] {
		if b.Kind() != KindWall {
			t.Errorf("unexpected body %v after the particles", b)
		}
	}

	again, err := Generate(setup, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(bodies, again) {
		t.Error("same seed gave different bodies")
	}

	if _, err := New(bodies, Options{}); err != nil {
		t.Errorf("generated bodies rejected: %v", err)
	}
}

func TestGenerateInvalid(t *testing.T) {
	base := Setup{Particles: 10, Width: 1, Height: 1, Radius: 0.01, Mass: 1, Speed: 1}
	for _, test := range []struct {
		name   string
		modify func(*Setup)
	}{
		{"negative count", func(s *Setup) { s.Particles = -1 }},
		{"zero width", func(s *Setup) { s.Width = 0 }},
		{"nan height", func(s *Setup) { s.Height = math.NaN() }},
		{"negative radius", func(s *Setup) { s.Radius = -1 }},
		{"zero mass", func(s *Setup) { s.Mass = 0 }},
		{"negative speed", func(s *Setup) { s.Speed = -1 }},
		{"too wide", func(s *Setup) { s.Radius = 0.6 }},
		{"large obstacle", func(s *Setup) { s.ObstacleRadius = 0.6 }},
		{"too dense", func(s *Setup) { s.Particles = 10000 }},
		{"no room left", func(s *Setup) { s.Particles, s.Radius, s.MaxAttempts = 50, 0.07, 100 }},
	} {
		setup := base
		test.modify(&setup)
		_, err := Generate(setup, rand.New(rand.NewSource(10)))
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("%s: got error %v, want invalid configuration", test.name, err)
		}
	}
}
