package hdf5

import (
	"fmt"

	"gonum.org/v1/hdf5"

	"github.com/PrincetonUniversity/edmd"
	"github.com/PrincetonUniversity/edmd/trace"
)

// A series reads one entry at a time from a dataset whose first dimension is the step.
type series struct {
	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
	dims   []uint
}

func openSeries(file *hdf5.File, name string) (*series, error) {
	s := new(series)
	var err error
	s.dset, err = file.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	s.fspace = s.dset.Space()
	s.dims, _, err = s.fspace.SimpleExtentDims()
	if err != nil {
		checkClose(&err, s.fspace)
		checkClose(&err, s.dset)
		return nil, err
	}
	if len(s.dims) == 0 {
		checkClose(&err, s.fspace)
		checkClose(&err, s.dset)
		return nil, fmt.Errorf("loader: dataset %s has no step dimension", name)
	}

	if len(s.dims) == 1 {
		s.mspace, err = hdf5.CreateDataspace(hdf5.S_SCALAR)
	} else {
		s.mspace, err = hdf5.CreateSimpleDataspace(s.dims[1:], nil)
	}
	if err != nil {
		checkClose(&err, s.fspace)
		checkClose(&err, s.dset)
		return nil, err
	}

	start := make([]uint, len(s.dims))
	count := make([]uint, len(s.dims))
	copy(count, s.dims)
	count[0] = 1
	if err := s.fspace.SelectHyperslab(start, nil, count, nil); err != nil {
		checkClose(&err, s)
		return nil, err
	}
	return s, nil
}

// read reads entry k into data.
func (s *series) read(k uint, data interface{}) error {
	start := make([]uint, len(s.dims))
	start[0] = k
	if err := s.fspace.SetOffset(start); err != nil {
		return err
	}
	return s.dset.ReadSubset(data, s.mspace, s.fspace)
}

// Close closes the dataset and its dataspaces.
func (s *series) Close() error {
	if err := s.mspace.Close(); err != nil {
		return err
	}
	if err := s.fspace.Close(); err != nil {
		return err
	}
	return s.dset.Close()
}

// A Loader sequentially loads the states recorded in an HDF5 file.
type Loader struct {
	i uint // index of current state
	n uint // total number of states

	rows  []Row   // data buffer
	event []int64 // participants buffer

	file                 *hdf5.File
	bodies, time, events *series
	epochs               *series
}

// NewLoader opens the standard datasets of an HDF5 file and returns an initialized loader.
func NewLoader(filepath string) (*Loader, error) {
	l := new(Loader)
	var err error
	l.file, err = hdf5.OpenFile(filepath, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, err
	}
	for _, s := range []struct {
		name string
		dst  **series
	}{
		{BodiesName, &l.bodies},
		{TimeName, &l.time},
		{EventName, &l.events},
		{EpochName, &l.epochs},
	} {
		if *s.dst, err = openSeries(l.file, s.name); err != nil {
			l.Close()
			return nil, err
		}
	}
	if len(l.bodies.dims) != 2 {
		l.Close()
		return nil, fmt.Errorf("loader: expected 2 dimensions, got %d", len(l.bodies.dims))
	}

	l.n = l.bodies.dims[0]
	if n, err := readFrames(l.file); err == nil && n <= l.n {
		l.n = n
	}
	if l.n == 0 {
		l.Close()
		return nil, fmt.Errorf("loader: %s holds no state", filepath)
	}

	l.rows = make([]Row, l.bodies.dims[1])
	l.event = make([]int64, 2)
	return l, nil
}

// readFrames reads the number of recorded states saved by a Recorder.
func readFrames(file *hdf5.File) (n uint, err error) {
	dset, err := file.OpenDataset("config")
	if err != nil {
		return 0, err
	}
	defer checkClose(&err, dset)

	attr, err := dset.OpenAttribute(framesAttr)
	if err != nil {
		return 0, err
	}
	defer checkClose(&err, attr)

	dtype, err := hdf5.NewDatatypeFromValue(int64(0))
	if err != nil {
		return 0, err
	}
	defer checkClose(&err, dtype)

	var frames int64
	if err := attr.Read(&frames, dtype); err != nil {
		return 0, err
	}
	return uint(frames), nil
}

// Len returns the number of recorded states.
func (l *Loader) Len() int {
	return int(l.n)
}

// Load loads the next recorded state
// and cycles when everything has already been loaded.
func (l *Loader) Load() (trace.Frame, error) {
	k := l.i
	l.i = (l.i + 1) % l.n

	var f trace.Frame
	if err := l.bodies.read(k, &l.rows); err != nil {
		return f, err
	}
	if err := l.time.read(k, &f.Time); err != nil {
		return f, err
	}
	var epoch int64
	if err := l.epochs.read(k, &epoch); err != nil {
		return f, err
	}
	f.Epoch = int(epoch)
	if err := l.events.read(k, &l.event); err != nil {
		return f, err
	}
	if l.event[0] >= 0 {
		f.Event = &trace.Event{A: int(l.event[0]), B: int(l.event[1])}
	}

	// rows are valid until the first unused one
	for _, r := range l.rows {
		if r.Kind < 0 {
			break
		}
		f.Bodies = append(f.Bodies, trace.Row{
			ID:   int(r.ID),
			Kind: edmd.Kind(r.Kind),
			Axis: edmd.Axis(r.Axis),
			X:    r.Pos.X,
			Y:    r.Pos.Y,
			VX:   r.Vel.X,
			VY:   r.Vel.Y,
			R:    r.Radius,
			M:    r.Mass,
		})
	}
	return f, nil
}

// Close closes the file and its datasets.
func (l *Loader) Close() (err error) {
	for _, s := range []*series{l.bodies, l.time, l.events, l.epochs} {
		if s != nil {
			checkClose(&err, s)
		}
	}
	checkClose(&err, l.file)
	return err
}
