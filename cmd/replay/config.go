package main

import (
	"github.com/BurntSushi/toml"
)

// Config holds the parameters of a replay.
type Config struct {
	// Input is the path of an HDF5 file written by the edmd command.
	Input string

	// FramesDir is the directory of the rendered PNG frames,
	// or the empty string to play back in an OpenGL window.
	FramesDir string

	Size int // unit: pixels, largest side of the frames
}

// DefaultConf are the default parameters.
var DefaultConf = &Config{
	Input:     "out/edmd.h5",
	FramesDir: "",
	Size:      512,
}

// ParseConfig parses the TOML config file whose path is provided.
func ParseConfig(path string) (*Config, error) {
	// config file overwrites default parameters
	conf := DefaultConf
	_, err := toml.DecodeFile(path, conf)
	return conf, err
}
