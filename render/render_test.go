package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/PrincetonUniversity/edmd"
)

func bodies() []edmd.Body {
	b := []edmd.Body{
		edmd.NewObstacle(0, r2.Vec{X: 2, Y: 1}, 0.5),
		edmd.NewParticle(1, r2.Vec{X: 0.5, Y: 0.5}, r2.Vec{X: 1}, 0.25, 1),
	}
	return append(b, edmd.Box(4, 2, 2)...)
}

func TestDomain(t *testing.T) {
	if got, want := Domain(bodies()), (r2.Box{Max: r2.Vec{X: 4, Y: 2}}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	// without walls the discs set the extent
	if got, want := Domain(bodies()[:2]), (r2.Box{Min: r2.Vec{X: 0.25, Y: 0.25}, Max: r2.Vec{X: 2.5, Y: 1.5}}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := Domain(nil); got.Max.X != 1 || got.Max.Y != 1 {
		t.Errorf("empty domain %v", got)
	}
	// walls alone
	if got, want := Domain(edmd.Box(4, 2, 0)), (r2.Box{Max: r2.Vec{X: 4, Y: 2}}); got != want {
		t.Errorf("walls only: got %v, want %v", got, want)
	}
	// vertical walls and no disc
	if got, want := Domain(edmd.Box(4, 2, 0)[:2]), (r2.Box{Max: r2.Vec{X: 4, Y: 1}}); got != want {
		t.Errorf("vertical walls only: got %v, want %v", got, want)
	}
}

func TestDraw(t *testing.T) {
	c := NewCanvas(400, Domain(bodies()))
	img := c.Image()
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Fatalf("image is %v", b)
	}

	c.Draw(Discs(bodies()), nil)
	for _, test := range []struct {
		x, y int
		want [3]float64
	}{
		{200, 100, Obstacle},
		{50, 150, Particle}, // y points up
		{50, 50, Background},
		{390, 10, Background},
	} {
		r, g, b, _ := c.Image().At(test.x, test.y).RGBA()
		got := [3]float64{float64(r) / 0xffff, float64(g) / 0xffff, float64(b) / 0xffff}
		for i := range got {
			if d := got[i] - test.want[i]; d > 0.01 || d < -0.01 {
				t.Errorf("pixel (%d, %d) = %v, want %v", test.x, test.y, got, test.want)
				break
			}
		}
	}

	c.Draw(Discs(bodies()), &edmd.Collision{A: 1, B: 0})
	r, g, b, _ := c.Image().At(200, 100).RGBA()
	if r>>8 != 255 || g>>8 < 120 || g>>8 > 135 || b>>8 > 20 {
		t.Errorf("colliding obstacle drawn as (%d, %d, %d)", r>>8, g>>8, b>>8)
	}
}

func TestSequence(t *testing.T) {
	sim, err := edmd.New(bodies(), edmd.Options{})
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "frames")
	seq := &Sequence{Dir: dir, Every: 2, Size: 64}
	if _, err := sim.Run(context.Background(), 4, seq.Record); err != nil {
		t.Fatal(err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Errorf("got %d frames, want 3: %v", len(files), files)
	}
	if _, err := os.Stat(filepath.Join(dir, "frame_000004.png")); err != nil {
		t.Error(err)
	}
}
