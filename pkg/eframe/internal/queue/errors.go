package queue

import "errors"

// Sentinel errors for the queue package.
var (
	// ErrFull indicates a non-blocking push found the queue at capacity.
	ErrFull = errors.New("queue is full")

	// ErrEmpty indicates a non-blocking pop found nothing buffered.
	ErrEmpty = errors.New("queue is empty")

	// ErrClosed indicates the queue is closed (and, for pops, drained).
	ErrClosed = errors.New("queue is closed")
)
