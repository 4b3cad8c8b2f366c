package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/PrincetonUniversity/edmd"
	"github.com/PrincetonUniversity/edmd/cim"
	"github.com/PrincetonUniversity/edmd/hdf5"
	"github.com/PrincetonUniversity/edmd/opengl"
	"github.com/PrincetonUniversity/edmd/render"
	"github.com/PrincetonUniversity/edmd/trace"
)

// RunFile runs a simulation and saves its states in the configured format.
func RunFile(ctx context.Context, conf *Config, sim *edmd.Simulation, method *cim.Method) (err error) {
	var closers []io.Closer
	defer func() {
		// close in reverse order of creation
		for i := len(closers) - 1; i >= 0; i-- {
			checkClose(&err, closers[i])
		}
	}()
	create := func(path string) (*os.File, error) {
		f, err := os.Create(path)
		if err == nil {
			closers = append(closers, f)
		}
		return f, err
	}

	var observers []edmd.Observer
	switch conf.Format {
	case "hdf5":
		if conf.MaxEpochs < 0 {
			return fmt.Errorf("hdf5 output needs a non-negative MaxEpochs")
		}
		rec, err := hdf5.Create(&hdf5.Config{
			Output:   conf.Output,
			Steps:    conf.MaxEpochs + 1,
			Datasets: hdf5.Datasets(sim.State().Len()),
			Params:   conf,
		})
		if err != nil {
			return err
		}
		closers = append(closers, rec)
		observers = append(observers, rec.Record)

	case "text":
		if err := os.MkdirAll(conf.Output, 0755); err != nil {
			return err
		}
		box := render.Domain(sim.State().Bodies())
		static, err := create(filepath.Join(conf.Output, "static.txt"))
		if err != nil {
			return err
		}
		if err := trace.WriteStatic(static, sim.State(), box.Max.X-box.Min.X, box.Max.Y-box.Min.Y); err != nil {
			return err
		}
		dynamic, err := create(filepath.Join(conf.Output, "dynamic.txt"))
		if err != nil {
			return err
		}
		t := &trace.Text{Dynamic: dynamic}
		if method != nil {
			if t.Interactions, err = create(filepath.Join(conf.Output, "interactions.txt")); err != nil {
				return err
			}
			t.Interactor = method
		}
		observers = append(observers, t.Record)

	case "msgpack":
		if err := os.MkdirAll(filepath.Dir(conf.Output), 0755); err != nil {
			return err
		}
		f, err := create(conf.Output)
		if err != nil {
			return err
		}
		w := &flusher{bufio.NewWriter(f)}
		closers = append(closers, w)
		observers = append(observers, trace.NewEncoder(w).Record)

	default:
		return fmt.Errorf("bad format %q", conf.Format)
	}

	if conf.FramesDir != "" {
		seq := &render.Sequence{Dir: conf.FramesDir, Every: conf.FrameEvery}
		observers = append(observers, seq.Record)
	}
	observers = append(observers, progress(conf))

	res, err := sim.Run(ctx, conf.MaxEpochs, chain(observers...))
	fmt.Println()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Printf("%s after %d events at t = %g", res.Reason, res.Events, res.State.Time)
	report(sim)
	return nil
}

// RunOpenGL runs an interactive simulation in an OpenGL window.
func RunOpenGL(conf *Config, sim *edmd.Simulation) error {
	bodies := sim.State().Bodies()
	box := render.Domain(bodies)
	err := opengl.Run(&opengl.Config{
		MaxBodies: len(bodies),
		Step: func() error {
			// stop at the horizon like Run does
			if c, ok := sim.State().Earliest(); ok && conf.MaxTime > 0 && sim.State().Time+c.T > conf.MaxTime {
				return edmd.ErrNoEvents
			}
			_, err := sim.Step()
			return err
		},
		Discs: func() ([]render.Disc, *edmd.Collision) {
			s := sim.State()
			return render.Discs(s.Bodies()), s.Event
		},
		Xmin: box.Min.X,
		Ymin: box.Min.Y,
		Xmax: box.Max.X,
		Ymax: box.Max.Y,
	})
	report(sim)
	return err
}

// chain returns an observer calling all observers in order.
func chain(observers ...edmd.Observer) edmd.Observer {
	return func(s *edmd.State) error {
		for _, o := range observers {
			if err := o(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// progress returns an observer printing the progress of the run,
// in epochs if they are bounded and in time otherwise.
func progress(conf *Config) edmd.Observer {
	last := -1
	return func(s *edmd.State) error {
		var p int
		switch {
		case conf.MaxEpochs > 0:
			p = 100 * s.Epoch / conf.MaxEpochs
		case conf.MaxTime > 0:
			p = int(100 * s.Time / conf.MaxTime)
		default:
			return nil
		}
		if p != last {
			fmt.Printf("\r% 3d%%", p)
			last = p
		}
		return nil
	}
}

// report logs the collision counters of walls and obstacles.
func report(sim *edmd.Simulation) {
	t := sim.Telemetry()
	if t.Interval <= 0 {
		return
	}
	s := sim.State()
	for i := 0; i < s.Len(); i++ {
		b := s.At(i)
		if b.Kind() == edmd.KindParticle {
			continue
		}
		n := t.Total(b.ID())
		if n == 0 {
			continue
		}
		log.Printf("%s: %d collisions, %.4g per second", b, n, float64(n)/s.Time)
		for _, w := range t.Windows(b.ID()) {
			log.Printf("  [%g, %g): %.4g", w.Start, w.Start+t.Interval, float64(w.Count)/t.Interval)
		}
	}
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}

// A flusher is a buffered writer flushed on Close.
type flusher struct {
	*bufio.Writer
}

func (f *flusher) Close() error {
	return f.Flush()
}
