package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/PrincetonUniversity/edmd"
)

// Config holds the various parameters required for running a simulation.
type Config struct {
	// Output is the path of the output file (a directory for the text format),
	// or the empty string for an interactive OpenGL simulation.
	Output string
	Format string // possible values: hdf5, text, msgpack

	FramesDir  string // directory of PNG frames, empty for none
	FrameEvery int    // epochs between frames

	Seed uint64 // seed of the random initial condition

	// Random initial condition, ignored when Bodies is set
	Particles      int     // number of mobile particles
	Width          float64 // unit: m
	Height         float64 // unit: m
	Radius         float64 // unit: m
	Mass           float64 // unit: kg
	Speed          float64 // unit: m/s
	ObstacleRadius float64 // unit: m, 0 for no anchor obstacle
	MaxAttempts    int     // placement attempts per particle

	// Explicit initial condition
	Bodies []BodyConf

	// Run parameters
	MaxEpochs      int     // negative for no limit
	MaxTime        float64 // unit: s, 0 for no horizon
	ReportInterval float64 // unit: s, window of the collision counters
	Workers        int     // goroutines scanning pairs

	// Cell index method
	CellCount         int     // cells per side, 0 disables pruning
	InteractionRadius float64 // unit: m
}

// BodyConf describes a body of an explicit initial condition.
// Ids are assigned in order of appearance.
type BodyConf struct {
	Kind   string  // possible values: particle, obstacle, wall
	X, Y   float64 // unit: m
	VX, VY float64 // unit: m/s
	Radius float64 // unit: m
	Mass   float64 // unit: kg

	// walls only
	Axis  string  // possible values: vertical, horizontal
	Coord float64 // unit: m
}

// DefaultConf are the default parameters.
var DefaultConf = &Config{
	Output:            "",
	Format:            "hdf5",
	FrameEvery:        1,
	Seed:              1,
	Particles:         100,
	Width:             1,
	Height:            1,
	Radius:            0.01,
	Mass:              1,
	Speed:             0.1,
	ObstacleRadius:    0.05,
	MaxEpochs:         10000,
	MaxTime:           0,
	ReportInterval:    1,
	Workers:           1,
	CellCount:         0,
	InteractionRadius: 0.05,
}

// ParseConfig parses the TOML config file whose path is provided.
func ParseConfig(path string) (*Config, error) {
	// config file overwrites default parameters
	conf := DefaultConf
	_, err := toml.DecodeFile(path, conf)
	return conf, err
}

// body returns the body with the given id described by b.
func (b BodyConf) body(id int) (edmd.Body, error) {
	pos, vel := r2.Vec{X: b.X, Y: b.Y}, r2.Vec{X: b.VX, Y: b.VY}
	switch b.Kind {
	case "particle":
		return edmd.NewParticle(id, pos, vel, b.Radius, b.Mass), nil
	case "obstacle":
		return edmd.NewObstacle(id, pos, b.Radius), nil
	case "wall":
		switch b.Axis {
		case "vertical":
			return edmd.NewWall(id, edmd.Vertical, b.Coord), nil
		case "horizontal":
			return edmd.NewWall(id, edmd.Horizontal, b.Coord), nil
		}
		return nil, fmt.Errorf("body %d: bad wall axis %q", id, b.Axis)
	}
	return nil, fmt.Errorf("body %d: bad kind %q", id, b.Kind)
}
