package edmd

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestTimeToCollisionRoot(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	var hits int
	for i := 0; i < 2000; i++ {
		p := NewParticle(1,
			r2.Vec{X: 10 * rnd.Float64(), Y: 10 * rnd.Float64()},
			r2.Vec{X: rnd.NormFloat64(), Y: rnd.NormFloat64()},
			0.1+0.4*rnd.Float64(), 1)
		q := NewParticle(2,
			r2.Vec{X: 10 * rnd.Float64(), Y: 10 * rnd.Float64()},
			r2.Vec{X: rnd.NormFloat64(), Y: rnd.NormFloat64()},
			0.1+0.4*rnd.Float64(), 1)

		tc, err := TimeToCollision(p, q)
		if errors.Is(err, ErrInvariantViolation) {
			continue // overlapping draw
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.IsInf(tc, 1) {
			continue
		}
		hits++
		if tc < 0 {
			t.Fatalf("negative time %g for %v and %v", tc, p, q)
		}
		d := r2.Norm(r2.Sub(Advance(p, tc).Position(), Advance(q, tc).Position()))
		σ := p.Radius() + q.Radius()
		if math.Abs(d-σ) > 1e-9*σ {
			t.Errorf("distance at contact = %g, want %g", d, σ)
		}
	}
	if hits == 0 {
		t.Fatal("no collision among random pairs")
	}
}

func TestTimeToCollision(t *testing.T) {
	p := NewParticle(1, r2.Vec{X: 0.5, Y: 0.5}, r2.Vec{X: 1}, 0.1, 1)
	for _, test := range []struct {
		name string
		a, b Body
		want float64
	}{
		{"head on", NewParticle(1, r2.Vec{}, r2.Vec{X: 1}, 0.5, 1), NewParticle(2, r2.Vec{X: 3}, r2.Vec{X: -1}, 0.5, 1), 1},
		{"separating", NewParticle(1, r2.Vec{}, r2.Vec{X: -1}, 0.5, 1), NewParticle(2, r2.Vec{X: 3}, r2.Vec{X: 1}, 0.5, 1), Never},
		{"parallel", NewParticle(1, r2.Vec{}, r2.Vec{X: 1}, 0.5, 1), NewParticle(2, r2.Vec{X: 3}, r2.Vec{X: 1}, 0.5, 1), Never},
		{"miss", NewParticle(1, r2.Vec{}, r2.Vec{X: 1}, 0.5, 1), NewObstacle(2, r2.Vec{X: 5, Y: 2}, 0.5), Never},
		{"graze", NewParticle(1, r2.Vec{}, r2.Vec{X: 1}, 0.5, 1), NewObstacle(2, r2.Vec{X: 5, Y: 1}, 0.5), 5},
		{"obstacle first", NewObstacle(2, r2.Vec{X: 5}, 0.5), NewParticle(1, r2.Vec{}, r2.Vec{X: 1}, 0.5, 1), 4},
		{"right wall", p, NewWall(2, Vertical, 1), 0.4},
		{"left wall behind", p, NewWall(2, Vertical, 0), Never},
		{"left wall", p.With(p.Position(), r2.Vec{X: -2}), NewWall(2, Vertical, 0), 0.2},
		{"horizontal wall", p, NewWall(2, Horizontal, 1), Never},
		{"top wall", p.With(p.Position(), r2.Vec{X: 3, Y: 0.5}), NewWall(2, Horizontal, 1), 0.8},
		{"wall contact", p.With(r2.Vec{X: 0.9, Y: 0.5}, r2.Vec{X: 1}), NewWall(2, Vertical, 1), 0},
		{"two obstacles", NewObstacle(1, r2.Vec{}, 1), NewObstacle(2, r2.Vec{X: 3}, 1), Never},
		{"nan position", NewParticle(1, r2.Vec{X: math.NaN()}, r2.Vec{X: 1}, 0.5, 1), NewObstacle(2, r2.Vec{X: 5}, 0.5), Never},
		{"coincident points", NewParticle(1, r2.Vec{}, r2.Vec{X: 1}, 0, 1), NewParticle(2, r2.Vec{}, r2.Vec{}, 0, 1), Never},
	} {
		got, err := TimeToCollision(test.a, test.b)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if math.Abs(got-test.want) > 1e-12 && got != test.want {
			t.Errorf("%s: got %g, want %g", test.name, got, test.want)
		}
	}
}

func TestTimeToCollisionOverlap(t *testing.T) {
	a := NewParticle(1, r2.Vec{}, r2.Vec{X: 1}, 0.5, 1)
	for _, b := range []Body{
		NewParticle(2, r2.Vec{X: 0.5}, r2.Vec{}, 0.5, 1),
		NewObstacle(3, r2.Vec{Y: 0.9}, 0.5),
		NewWall(4, Vertical, 0.2),
	} {
		_, err := TimeToCollision(a, b)
		if !errors.Is(err, ErrInvariantViolation) {
			t.Errorf("%v: got error %v, want invariant violation", b, err)
			continue
		}
		var overlap *OverlapError
		if !errors.As(err, &overlap) || overlap.B != b.ID() || overlap.Gap >= 0 {
			t.Errorf("%v: unexpected overlap detail %#v", b, overlap)
		}
	}
}

func TestAdvance(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		p := NewParticle(i,
			r2.Vec{X: rnd.NormFloat64(), Y: rnd.NormFloat64()},
			r2.Vec{X: rnd.NormFloat64(), Y: rnd.NormFloat64()}, 1, 1)
		t1, t2 := rnd.Float64(), rnd.Float64()
		got := Advance(Advance(p, t1), t2)
		want := Advance(p, t1+t2)
		if d := r2.Norm(r2.Sub(got.Position(), want.Position())); d > 1e-12 {
			t.Errorf("composed advance is off by %g", d)
		}
		if got.Velocity() != p.Velocity() {
			t.Errorf("velocity changed to %v", got.Velocity())
		}
	}

	o := NewObstacle(1, r2.Vec{X: 1, Y: 2}, 1)
	if got := Advance(o, 10); got != Body(o) {
		t.Errorf("obstacle moved to %v", got.Position())
	}
	w := NewWall(2, Horizontal, 3)
	if got := Advance(w, 10); got != Body(w) {
		t.Errorf("wall moved to %v", got.Position())
	}
}
