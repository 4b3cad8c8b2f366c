package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/PrincetonUniversity/edmd"
)

func TestParseConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.toml")
	const src = `
Format = "text"
MaxEpochs = 5

[[Bodies]]
Kind = "particle"
X = 1
Y = 5
VX = 1
Radius = 0.5
Mass = 1

[[Bodies]]
Kind = "obstacle"
X = 8
Y = 5
Radius = 1

[[Bodies]]
Kind = "wall"
Axis = "horizontal"
Coord = 0
`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	saved := *DefaultConf
	defer func() { *DefaultConf = saved }()

	conf, err := ParseConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Format != "text" || conf.MaxEpochs != 5 || conf.Particles != saved.Particles {
		t.Errorf("unexpected config %+v", conf)
	}
	bodies, err := setup(conf)
	if err != nil {
		t.Fatal(err)
	}
	want := []edmd.Kind{edmd.KindParticle, edmd.KindObstacle, edmd.KindWall}
	if len(bodies) != len(want) {
		t.Fatalf("got %d bodies, want %d", len(bodies), len(want))
	}
	for i, b := range bodies {
		if b.ID() != i || b.Kind() != want[i] {
			t.Errorf("body %d is %v", i, b)
		}
	}
	if w := bodies[2].(edmd.Wall); w.Axis() != edmd.Horizontal {
		t.Errorf("wall axis %v", w.Axis())
	}
}

func TestBodyConfErrors(t *testing.T) {
	for _, b := range []BodyConf{
		{Kind: "ghost"},
		{Kind: "wall", Axis: "diagonal"},
	} {
		if _, err := b.body(0); err == nil {
			t.Errorf("%+v: expected an error", b)
		}
	}
}

func TestChain(t *testing.T) {
	var calls []int
	stop := errors.New("stop")
	obs := chain(
		func(*edmd.State) error { calls = append(calls, 1); return nil },
		func(*edmd.State) error { calls = append(calls, 2); return stop },
		func(*edmd.State) error { calls = append(calls, 3); return nil },
	)
	if err := obs(nil); err != stop {
		t.Errorf("got %v, want %v", err, stop)
	}
	if len(calls) != 2 {
		t.Errorf("calls %v, want [1 2]", calls)
	}
}
