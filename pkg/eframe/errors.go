package eframe

import (
	"errors"

	"github.com/SebastienMelki/eframe/pkg/eframe/internal/queue"
)

// Sentinel errors for the eframe package. The queue errors are passed
// through unchanged so errors.Is works on values returned by any endpoint.
var (
	// ErrFull indicates a non-blocking send found the channel at capacity.
	ErrFull = queue.ErrFull

	// ErrEmpty indicates a non-blocking receive found no deliverable frame.
	// Buffered frames that were all suppressed as duplicates also end in ErrEmpty.
	ErrEmpty = queue.ErrEmpty

	// ErrClosed indicates the channel is closed. Receivers see it only after
	// every buffered frame has been consumed.
	ErrClosed = queue.ErrClosed

	// ErrInvalidConfig indicates a Config failed validation.
	ErrInvalidConfig = errors.New("invalid eframe config")
)

// SendError is returned by send operations that could not enqueue their
// value. Value holds the rejected payload so the caller can retry or
// dispose of it; Err is ErrFull or ErrClosed.
type SendError[T any] struct {
	Value T
	Err   error
}

func (e *SendError[T]) Error() string {
	return "eframe: send failed: " + e.Err.Error()
}

func (e *SendError[T]) Unwrap() error {
	return e.Err
}
