package main

import (
	"github.com/BurntSushi/toml"
)

// Config holds the various parameters required for computing interactions.
type Config struct {
	// Output is the directory of the text files.
	Output string

	Seed uint64 // seed of the random placement

	// Placement parameters
	Particles int     // number of particles
	Width     float64 // unit: m
	Height    float64 // unit: m
	Radius    float64 // unit: m
	Speed     float64 // unit: m/s

	// Cell index method parameters
	CellCount         int     // cells per side
	InteractionRadius float64 // unit: m, distance between surfaces
	Periodic          bool    // periodic boundary conditions
	BruteForce        bool    // compare every pair instead
}

// DefaultConf are the default parameters.
var DefaultConf = &Config{
	Output:            "out",
	Seed:              1,
	Particles:         200,
	Width:             20,
	Height:            20,
	Radius:            0.25,
	Speed:             0,
	CellCount:         13,
	InteractionRadius: 1,
	Periodic:          false,
	BruteForce:        false,
}

// ParseConfig parses the TOML config file whose path is provided.
func ParseConfig(path string) (*Config, error) {
	// config file overwrites default parameters
	conf := DefaultConf
	_, err := toml.DecodeFile(path, conf)
	return conf, err
}
