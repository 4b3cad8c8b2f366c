package trace

import (
	"errors"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/PrincetonUniversity/edmd"
)

// An Encoder writes frames to a msgpack stream, one value per frame.
type Encoder struct {
	enc *msgpack.Encoder
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: msgpack.NewEncoder(w)}
}

// Record writes the frame of s. It can be used as an edmd.Observer.
func (e *Encoder) Record(s *edmd.State) error {
	f := FrameOf(s)
	return e.Encode(&f)
}

// Encode writes f.
func (e *Encoder) Encode(f *Frame) error {
	return e.enc.Encode(f)
}

// A Decoder reads frames written by an Encoder.
type Decoder struct {
	dec *msgpack.Decoder
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: msgpack.NewDecoder(r)}
}

// Next returns the next frame, or io.EOF at the end of the stream.
func (d *Decoder) Next() (Frame, error) {
	var f Frame
	err := d.dec.Decode(&f)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return f, errors.New("trace: truncated frame")
	}
	return f, err
}

// ReadAll returns all the frames of r.
func ReadAll(r io.Reader) ([]Frame, error) {
	d := NewDecoder(r)
	var frames []Frame
	for {
		f, err := d.Next()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}
