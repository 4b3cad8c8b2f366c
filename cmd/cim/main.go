// Command cim places discs at random and lists, for each of them,
// the discs within an interaction distance.
//
// Usage
//
// The cim command takes one optional argument:
//  cim [config_file]
// It is the path to a TOML config file.
//
// Three files are written to the output directory: static.txt (count,
// domain size, radii), dynamic.txt (positions) and interactions.txt
// (one line of neighbor ids per disc).
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/PrincetonUniversity/edmd"
	"github.com/PrincetonUniversity/edmd/cim"
	"github.com/PrincetonUniversity/edmd/trace"
)

const usage = `Usage: cim [config_file]

The first argument is optional and is the path to a TOML config file.
`

func init() {
	log.SetFlags(0)
	log.SetPrefix("cim: ")
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
	if err := run(conf); err != nil {
		Fatal(err)
	}
}

// Fatal prints an error on the standard output and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

func run(conf *Config) (err error) {
	bodies, err := edmd.Generate(edmd.Setup{
		Particles: conf.Particles,
		Width:     conf.Width,
		Height:    conf.Height,
		Radius:    conf.Radius,
		Mass:      1,
		Speed:     conf.Speed,
	}, rand.New(rand.NewSource(conf.Seed)))
	if err != nil {
		return err
	}
	sim, err := edmd.New(bodies, edmd.Options{})
	if err != nil {
		return err
	}
	s := sim.State()

	box := r2.Box{Max: r2.Vec{X: conf.Width, Y: conf.Height}}
	m, err := cim.New(conf.CellCount, box, conf.InteractionRadius, conf.Periodic)
	if err != nil {
		return err
	}

	start := time.Now()
	var interactions map[int][]int
	if conf.BruteForce {
		interactions = m.BruteForce(s)
	} else {
		interactions = m.Interactions(s)
	}
	elapsed := time.Since(start)
	if conf.BruteForce {
		log.Printf("brute force: %v", elapsed)
	} else {
		log.Printf("%d×%d cells: %v", m.Cells(s), m.Cells(s), elapsed)
	}

	if err := os.MkdirAll(conf.Output, 0755); err != nil {
		return err
	}
	for _, f := range []struct {
		name  string
		write func(w *os.File) error
	}{
		{"static.txt", func(w *os.File) error { return trace.WriteStatic(w, s, conf.Width, conf.Height) }},
		{"dynamic.txt", func(w *os.File) error { return trace.WriteFrame(w, s) }},
		{"interactions.txt", func(w *os.File) error { return trace.WriteInteractions(w, interactions) }},
	} {
		if err := writeFile(filepath.Join(conf.Output, f.name), f.write); err != nil {
			return err
		}
	}
	return nil
}

// writeFile creates path and fills it with write.
func writeFile(path string, write func(w *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
