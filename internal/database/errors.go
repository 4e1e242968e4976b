package database

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrNotAvailable           = errors.New("not enough units available")
	ErrConcurrentModification = errors.New("record was modified concurrently")
	ErrRoomInUse              = errors.New("room type is referenced by active bookings")
	ErrRoomNotOffered         = errors.New("room type is not offered for booking")
	ErrPersistence            = errors.New("persistence failure")
)

// AvailabilityError reports that a room type cannot cover the requested units.
// It matches ErrNotAvailable with errors.Is.
type AvailabilityError struct {
	RoomID    int64
	RoomName  string
	Requested int
	Available int
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("only %d of %d requested units of %q available (short by %d)",
		e.Available, e.Requested, e.RoomName, e.Shortfall())
}

// Shortfall is how many units are missing.
func (e *AvailabilityError) Shortfall() int {
	return e.Requested - e.Available
}

func (e *AvailabilityError) Is(target error) bool {
	return target == ErrNotAvailable
}

// PersistenceError wraps a store failure. It matches ErrPersistence with
// errors.Is and still unwraps to the driver error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
