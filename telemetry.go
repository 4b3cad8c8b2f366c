package edmd

import (
	"math"
	"slices"
)

// Telemetry counts the collisions of each body over fixed windows of
// simulated time. It is observational only and never feeds back into the dynamics.
type Telemetry struct {
	Interval float64 // window length, 0 disables counting

	counts map[int]map[float64]int // body id → floor(time/Interval) → collisions
}

// A Window is the span [Start, Start+Interval) of simulated time.
type Window struct {
	Start float64
	Count int // collisions in the window
}

// NewTelemetry returns counters using windows of the given length.
func NewTelemetry(interval float64) *Telemetry {
	return &Telemetry{Interval: interval, counts: make(map[int]map[float64]int)}
}

// Record counts the event that produced s, if any.
func (t *Telemetry) Record(s *State) {
	if t == nil || !(t.Interval > 0) || s.Event == nil {
		return
	}
	k := math.Floor(s.Time / t.Interval)
	t.add(s.Event.A, k)
	t.add(s.Event.B, k)
}

func (t *Telemetry) add(id int, k float64) {
	c := t.counts[id]
	if c == nil {
		c = make(map[float64]int)
		t.counts[id] = c
	}
	c[k]++
}

// Windows returns the windows in which a body collided, in time order.
func (t *Telemetry) Windows(id int) []Window {
	if t == nil {
		return nil
	}
	c := t.counts[id]
	out := make([]Window, 0, len(c))
	keys := make([]float64, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		out = append(out, Window{Start: k * t.Interval, Count: c[k]})
	}
	return out
}

// Total returns the number of collisions of a body so far.
func (t *Telemetry) Total(id int) int {
	var n int
	for _, w := range t.Windows(id) {
		n += w.Count
	}
	return n
}

// Rate returns the collisions per unit time of a body in each of its Windows.
func (t *Telemetry) Rate(id int) []float64 {
	w := t.Windows(id)
	r := make([]float64, len(w))
	for i, c := range w {
		r[i] = float64(c.Count) / t.Interval
	}
	return r
}
