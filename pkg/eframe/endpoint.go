package eframe

import (
	"log/slog"
	"sync/atomic"

	"github.com/SebastienMelki/eframe/pkg/eframe/internal/queue"
)

// shared is the per-channel state referenced by every endpoint created from
// one Bounded call.
type shared[T Identifier] struct {
	q         *queue.Queue[Frame[T]]
	logger    *slog.Logger
	metrics   *instruments
	newMemory func() Memory
}

// endpoint implements the queue pass-through surface common to Sender and
// Receiver. None of these methods touch frames or dedup memory.
type endpoint[T Identifier] struct {
	*shared[T]
	released atomic.Bool
}

// Len returns the number of frames currently buffered, including frames a
// receiver may later suppress.
func (e *endpoint[T]) Len() int {
	return e.q.Len()
}

// Cap returns the channel capacity.
func (e *endpoint[T]) Cap() int {
	return e.q.Cap()
}

// IsEmpty reports whether no frames are buffered.
func (e *endpoint[T]) IsEmpty() bool {
	return e.q.IsEmpty()
}

// IsFull reports whether the buffer is at capacity.
func (e *endpoint[T]) IsFull() bool {
	return e.q.IsFull()
}

// IsClosed reports whether the channel has been closed.
func (e *endpoint[T]) IsClosed() bool {
	return e.q.IsClosed()
}

// Close closes the channel for every endpoint. Pending and future sends
// fail with ErrClosed; receivers drain the buffer and then see ErrClosed.
// It returns true only for the call that closed the channel.
func (e *endpoint[T]) Close() bool {
	if !e.q.Close() {
		return false
	}
	e.logger.Info("channel closed", "buffered", e.q.Len())
	return true
}

// SenderCount returns the number of live Sender handles.
func (e *endpoint[T]) SenderCount() int {
	return e.q.SenderCount()
}

// ReceiverCount returns the number of live Receiver handles.
func (e *endpoint[T]) ReceiverCount() int {
	return e.q.ReceiverCount()
}
