// Command replay plays back or renders a trajectory recorded by edmd.
//
// Usage
//
// The replay command takes one optional argument:
//  replay [config_file]
// It is the path to a TOML config file.
//
// Without FramesDir, the trajectory loops in an OpenGL window.
// Space pauses, right arrow shows the next state and Esc quits.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/PrincetonUniversity/edmd"
	"github.com/PrincetonUniversity/edmd/hdf5"
	"github.com/PrincetonUniversity/edmd/opengl"
	"github.com/PrincetonUniversity/edmd/render"
	"github.com/PrincetonUniversity/edmd/trace"
)

const usage = `Usage: replay [config_file]

The first argument is optional and is the path to a TOML config file.
`

func init() {
	// Most OpenGL functions have to run from the main thread.
	// This is needed to arrange that main() runs on main thread.
	// See https://github.com/golang/go/wiki/LockOSThread for more info.
	runtime.LockOSThread()

	log.SetFlags(0)
	log.SetPrefix("replay: ")
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

	l, err := hdf5.NewLoader(conf.Input)
	if err != nil {
		Fatal(err)
	}
	defer l.Close()
	log.Printf("%s: %d states", conf.Input, l.Len())

	if conf.FramesDir == "" {
		err = play(l)
	} else {
		err = renderFrames(l, conf)
	}
	if err != nil {
		l.Close()
		Fatal(err)
	}
}

// Fatal prints an error on the standard output and exits with a non-zero status.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	os.Exit(1)
}

// decode returns the discs and event of a recorded frame.
func decode(f trace.Frame) ([]render.Disc, []edmd.Body, *edmd.Collision, error) {
	bodies, err := f.Restore()
	if err != nil {
		return nil, nil, nil, err
	}
	var event *edmd.Collision
	if f.Event != nil {
		event = &edmd.Collision{A: f.Event.A, B: f.Event.B}
	}
	return render.Discs(bodies), bodies, event, nil
}

// play loops over the recorded states in an OpenGL window.
func play(l *hdf5.Loader) error {
	f, err := l.Load()
	if err != nil {
		return err
	}
	discs, bodies, event, err := decode(f)
	if err != nil {
		return err
	}
	box := render.Domain(bodies)
	return opengl.Run(&opengl.Config{
		MaxBodies: len(discs),
		Step: func() error {
			f, err := l.Load()
			if err != nil {
				return err
			}
			discs, _, event, err = decode(f)
			return err
		},
		Discs: func() ([]render.Disc, *edmd.Collision) {
			return discs, event
		},
		Xmin: box.Min.X,
		Ymin: box.Min.Y,
		Xmax: box.Max.X,
		Ymax: box.Max.Y,
	})
}

// renderFrames writes one PNG per recorded state.
func renderFrames(l *hdf5.Loader, conf *Config) error {
	if err := os.MkdirAll(conf.FramesDir, 0755); err != nil {
		return err
	}
	var canvas *render.Canvas
	for i := 0; i < l.Len(); i++ {
		f, err := l.Load()
		if err != nil {
			return err
		}
		discs, bodies, event, err := decode(f)
		if err != nil {
			return err
		}
		if canvas == nil {
			canvas = render.NewCanvas(conf.Size, render.Domain(bodies))
		}
		canvas.Draw(discs, event)
		if err := canvas.SavePNG(filepath.Join(conf.FramesDir, fmt.Sprintf("frame_%06d.png", f.Epoch))); err != nil {
			return err
		}
		fmt.Printf("\r% 3d%%", 100*(i+1)/l.Len())
	}
	fmt.Println()
	return nil
}
