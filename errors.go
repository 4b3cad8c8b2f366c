package edmd

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned before any simulation starts
	// when the initial bodies or placement parameters cannot work.
	ErrInvalidConfiguration = errors.New("edmd: invalid configuration")

	// ErrInvariantViolation means the simulation reached a corrupted state.
	// The offending state is never committed.
	ErrInvariantViolation = errors.New("edmd: invariant violation")

	// ErrNoEvents is returned by Step when no collision can ever happen again.
	ErrNoEvents = errors.New("edmd: no pending collisions")
)

// An OverlapError reports two bodies whose surfaces interpenetrate.
type OverlapError struct {
	A, B int     // body ids
	Gap  float64 // signed surface distance, negative
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("edmd: bodies %d and %d overlap by %g", e.A, e.B, -e.Gap)
}

// Is makes an OverlapError match ErrInvariantViolation.
func (e *OverlapError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// An InvariantError reports a defect detected while applying an event.
type InvariantError struct {
	Epoch int       // epoch of the state being built
	Event Collision // event being applied
	Msg   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("edmd: epoch %d: %s (%v)", e.Epoch, e.Msg, e.Event)
}

// Is makes an InvariantError match ErrInvariantViolation.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolation
}
