// Command edmd runs event-driven simulations of hard discs.
//
// Usage
//
// The edmd command takes one optional argument:
//  edmd [config_file]
// It is the path to a TOML config file.
// If no config file is specified, an interactive simulation
// with default parameters will run in an OpenGL window.
//
// Config file
//
// The config file is written in TOML. Bodies are either placed at random
// (Particles, Radius, Speed...) or listed explicitly in [[Bodies]] tables:
//  [[Bodies]]
//  Kind = "particle"
//  X = 0.5
//  Y = 0.5
//  VX = 1
//  Radius = 0.1
//  Mass = 1
//
// Output
//
// Format selects what is written to Output: an HDF5 trajectory (hdf5),
// text files in a directory (text) or a stream of msgpack frames (msgpack).
// PNG frames are also written to FramesDir if set.
//
// Interactive mode
//
// In interactive mode, the simulation can be paused/resumed with space.
// While in pause, pressing right arrow will perform a single collision.
// Tab and shift tab allow to cycle through highlighted discs,
// R resets the view and scrolling zooms.
// Pressing Esc or closing the window will quit.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"

	"golang.org/x/exp/rand"

	"github.com/PrincetonUniversity/edmd"
	"github.com/PrincetonUniversity/edmd/cim"
	"github.com/PrincetonUniversity/edmd/render"
)

const usage = `Usage: edmd [config_file]

The first argument is optional and is the path to a TOML config file.
If no config file is specified, an interactive simulation
with default parameters will run in an OpenGL window.
`

func init() {
	// Most OpenGL functions have to run from the main thread.
	// This is needed to arrange that main() runs on main thread.
	// See https://github.com/golang/go/wiki/LockOSThread for more info.
	runtime.LockOSThread()

	log.SetFlags(0)
	log.SetPrefix("edmd: ")
}

func main() {
	var conf *Config
	var err error
	switch len(os.Args) {
	case 1:
		conf = DefaultConf
	case 2:
		conf, err = ParseConfig(os.Args[1])
	default:
		err = fmt.Errorf("%d arguments provided (0 required, 1 optional)\n\n%s", len(os.Args)-1, usage)
	}
	if err != nil {
		Fatal(err)
	}

	// setup simulation
	bodies, err := setup(conf)
	if err != nil {
		Fatal(err)
	}
	opts := edmd.Options{
		MaxTime:        conf.MaxTime,
		ReportInterval: conf.ReportInterval,
		Workers:        conf.Workers,
	}
	var method *cim.Method
	if conf.CellCount > 0 {
		method, err = cim.New(conf.CellCount, render.Domain(bodies), conf.InteractionRadius, false)
		if err != nil {
			Fatal(err)
		}
		opts.Neighbors = method
	}
	sim, err := edmd.New(bodies, opts)
	if err != nil {
		Fatal(err)
	}

	// run interactively or not depending on config
	if conf.Output == "" {
		err = RunOpenGL(conf, sim)
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = RunFile(ctx, conf, sim, method)
	}
	if err != nil {
		Fatal(err)
	}
}

// Fatal prints an error on the standard output and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

// setup returns the initial bodies: the explicit ones if any, a random
// initial condition otherwise.
func setup(conf *Config) ([]edmd.Body, error) {
	if len(conf.Bodies) == 0 {
		return edmd.Generate(edmd.Setup{
			Particles:      conf.Particles,
			Width:          conf.Width,
			Height:         conf.Height,
			Radius:         conf.Radius,
			Mass:           conf.Mass,
			Speed:          conf.Speed,
			ObstacleRadius: conf.ObstacleRadius,
			MaxAttempts:    conf.MaxAttempts,
		}, rand.New(rand.NewSource(conf.Seed)))
	}
	bodies := make([]edmd.Body, len(conf.Bodies))
	for i, b := range conf.Bodies {
		var err error
		if bodies[i], err = b.body(i); err != nil {
			return nil, err
		}
	}
	return bodies, nil
}
