// Package hdf5 records simulation states to an HDF5 file and loads them back.
package hdf5

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/hdf5"

	"github.com/PrincetonUniversity/edmd"
)

// A Dataset stipulates how to extract data from a state and where to store them in the HDF5 file.
type Dataset struct {
	// Name the name of the dataset in the HDF5 file.
	Name string

	// Val is a value of the same concrete type as the underlying type of the data.
	Val interface{}

	// Dims are the dimensions of the data for a single state.
	Dims []int

	// Data is a function that produces the data
	// as a slice of row-major concrete values, or a pointer for scalars.
	Data func(s *edmd.State) interface{}

	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
}

// Config holds the parameters of the HDF5 recorder.
type Config struct {
	Output   string      // path of output file
	Steps    int         // maximum number of recorded states
	Datasets []*Dataset  // list of datasets
	Params   interface{} // struct whose scalar fields are saved as attributes of "config"
}

// A Row is what is recorded in the HDF5 file for each body of each state.
// This structure is mapped to a compound datatype in HDF5 so member names are important.
// Unused rows have a negative Kind.
type Row struct {
	ID     int64
	Kind   int64
	Axis   int64  // walls only
	Pos    r2.Vec // position, a point of the line for walls
	Vel    r2.Vec // velocity
	Radius float64
	Mass   float64 // particles only
}

// Standard dataset names.
const (
	BodiesName = "bodies"
	TimeName   = "time"
	EventName  = "event"
	EpochName  = "epoch"
)

// framesAttr is the attribute of "config" holding the number of recorded states.
const framesAttr = "Frames"

// Datasets returns the standard datasets for up to maxBodies bodies:
// the bodies, the time, the epoch and the ids of the event participants (-1 for none).
func Datasets(maxBodies int) []*Dataset {
	rows := make([]Row, maxBodies)
	return []*Dataset{
		{
			Name: BodiesName,
			Val:  Row{},
			Dims: []int{maxBodies},
			Data: func(s *edmd.State) interface{} {
				for i := range rows {
					if i < s.Len() {
						rows[i] = rowOf(s.At(i))
					} else {
						rows[i] = Row{ID: -1, Kind: -1}
					}
				}
				return rows
			},
		},
		{
			Name: TimeName,
			Val:  float64(0),
			Data: func(s *edmd.State) interface{} {
				t := s.Time
				return &t
			},
		},
		{
			Name: EpochName,
			Val:  int64(0),
			Data: func(s *edmd.State) interface{} {
				k := int64(s.Epoch)
				return &k
			},
		},
		{
			Name: EventName,
			Val:  int64(0),
			Dims: []int{2},
			Data: func(s *edmd.State) interface{} {
				if s.Event == nil {
					return []int64{-1, -1}
				}
				return []int64{int64(s.Event.A), int64(s.Event.B)}
			},
		},
	}
}

func rowOf(b edmd.Body) Row {
	r := Row{
		ID:     int64(b.ID()),
		Kind:   int64(b.Kind()),
		Pos:    b.Position(),
		Vel:    b.Velocity(),
		Radius: b.Radius(),
	}
	switch b := b.(type) {
	case edmd.Particle:
		r.Mass = b.Mass()
	case edmd.Wall:
		r.Axis = int64(b.Axis())
	}
	return r
}

// A Recorder writes one entry of every dataset per recorded state.
type Recorder struct {
	conf   *Config
	file   *hdf5.File
	config *hdf5.Dataset
	k      uint // number of recorded states
}

// ErrFull is returned by Record once Config.Steps states have been recorded.
var ErrFull = errors.New("hdf5: all steps recorded")

// Create creates the output file and its datasets.
func Create(conf *Config) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(conf.Output), 0755); err != nil {
		return nil, err
	}

	file, err := hdf5.CreateFile(conf.Output, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, err
	}
	r := &Recorder{conf: conf, file: file}

	if r.config, err = saveConfig(file, conf.Params); err != nil {
		r.close()
		return nil, err
	}
	for _, d := range conf.Datasets {
		if err := d.init(file, conf); err != nil {
			r.close()
			return nil, err
		}
	}
	return r, nil
}

// Record writes s at the next step. It can be used as an edmd.Observer.
func (r *Recorder) Record(s *edmd.State) error {
	if r.k >= uint(r.conf.Steps) {
		return ErrFull
	}
	for _, d := range r.conf.Datasets {
		start := make([]uint, len(d.Dims)+1)
		start[0] = r.k
		if err := d.fspace.SetOffset(start); err != nil {
			return err
		}
		if err := d.dset.WriteSubset(d.Data(s), d.mspace, d.fspace); err != nil {
			return err
		}
	}
	r.k++
	return nil
}

// Frames returns the number of recorded states.
func (r *Recorder) Frames() int {
	return int(r.k)
}

// Close saves the number of recorded states and closes the file.
func (r *Recorder) Close() (err error) {
	if r.config != nil {
		n := int64(r.k)
		if err := writeAttr(r.config, framesAttr, &n); err != nil {
			r.close()
			return err
		}
	}
	return r.close()
}

func (r *Recorder) close() (err error) {
	for _, d := range r.conf.Datasets {
		if d.dset != nil {
			checkClose(&err, d)
		}
	}
	if r.config != nil {
		checkClose(&err, r.config)
		r.config = nil
	}
	checkClose(&err, r.file)
	return err
}

// saveConfig creates a "config" dataset with a null dataspace whose attributes
// reflect the scalar fields of params plus some other appropriate metadata.
func saveConfig(file *hdf5.File, params interface{}) (dset *hdf5.Dataset, err error) {
	null, err := hdf5.CreateDataspace(hdf5.S_NULL)
	if err != nil {
		return nil, err
	}
	defer checkClose(&err, null)

	anytype, err := hdf5.NewDatatypeFromValue(0)
	if err != nil {
		return nil, err
	}
	defer checkClose(&err, anytype)

	dset, err = file.CreateDataset("config", anytype, null)
	if err != nil {
		return nil, err
	}

	now := time.Now().String()
	if err := writeAttr(dset, "Time", &now); err != nil {
		checkClose(&err, dset)
		return nil, err
	}

	v := reflect.Indirect(reflect.ValueOf(params))
	if v.Kind() != reflect.Struct {
		return dset, nil
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if !f.IsExported() {
			continue
		}
		var val interface{}
		switch fv := v.Field(i); fv.Kind() {
		case reflect.Float32, reflect.Float64:
			x := fv.Float()
			val = &x
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			x := fv.Int()
			val = &x
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			x := int64(fv.Uint())
			val = &x
		case reflect.Bool:
			var x int64
			if fv.Bool() {
				x = 1
			}
			val = &x
		case reflect.String:
			x := fv.String()
			val = &x
		default:
			continue
		}
		if err := writeAttr(dset, f.Name, val); err != nil {
			checkClose(&err, dset)
			return nil, err
		}
	}
	return dset, nil
}

// writeAttr writes a scalar attribute; val is a pointer to the value.
func writeAttr(dset *hdf5.Dataset, name string, val interface{}) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(reflect.ValueOf(val).Elem().Interface())
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	scalar, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer checkClose(&err, scalar)

	attr, err := dset.CreateAttribute(name, dtype, scalar)
	if err != nil {
		return fmt.Errorf("hdf5: attribute %s: %v", name, err)
	}
	defer checkClose(&err, attr)

	return attr.Write(val, dtype)
}

// init creates the dataset in file.
func (d *Dataset) init(file *hdf5.File, conf *Config) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(d.Val)
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	udims := make([]uint, len(d.Dims)+1)
	udims[0] = uint(conf.Steps)
	for i, n := range d.Dims {
		udims[i+1] = uint(n)
	}

	d.fspace, err = hdf5.CreateSimpleDataspace(udims, nil)
	if err != nil {
		return err
	}

	start := make([]uint, len(udims))
	count := make([]uint, len(udims))
	copy(count, udims)
	count[0] = 1

	if err := d.fspace.SelectHyperslab(start, nil, count, nil); err != nil {
		checkClose(&err, d.fspace)
		return err
	}

	if len(d.Dims) == 0 {
		d.mspace, err = hdf5.CreateDataspace(hdf5.S_SCALAR)
	} else {
		d.mspace, err = hdf5.CreateSimpleDataspace(udims[1:], nil)
	}
	if err != nil {
		checkClose(&err, d.fspace)
		return err
	}

	d.dset, err = file.CreateDataset(d.Name, dtype, d.fspace)
	if err != nil {
		checkClose(&err, d.fspace)
		checkClose(&err, d.mspace)
		d.dset = nil
	}

	return err
}

// Close closes the HDF5 dataset and Dataspaces.
func (d *Dataset) Close() error {
	if err := d.dset.Close(); err != nil {
		return err
	}
	if err := d.mspace.Close(); err != nil {
		return err
	}
	if err := d.fspace.Close(); err != nil {
		return err
	}
	d.dset = nil
	return nil
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
