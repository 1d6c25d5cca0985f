// Package queue implements the bounded multi-producer/multi-consumer FIFO
// that backs an eframe channel. It knows nothing about frames or
// deduplication: it stores values, applies backpressure at capacity, and
// tracks how many producer and consumer handles still reference it.
package queue

import (
	"context"
	"sync"
)

// Queue is a bounded FIFO safe for concurrent use by any number of
// goroutines. Waiting operations take a context and give up when it is done.
type Queue[T any] struct {
	mu     sync.Mutex
	buf    []T
	head   int
	size   int
	closed bool

	// changed is closed and replaced on every state transition. Waiters
	// capture it under mu and block on it after unlocking.
	changed chan struct{}

	senders   int
	receivers int
}

// New creates a queue holding at most capacity values. It panics when
// capacity is less than one.
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		panic("queue: capacity must be at least 1")
	}
	return &Queue[T]{
		buf:     make([]T, capacity),
		changed: make(chan struct{}),
	}
}

// Push appends v, waiting while the queue is full. It returns ErrClosed if
// the queue is or becomes closed before space frees, and ctx.Err() if the
// context ends first. v is not enqueued in either case.
func (q *Queue[T]) Push(ctx context.Context, v T) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrClosed
		}
		if q.size < len(q.buf) {
			q.putLocked(v)
			q.mu.Unlock()
			return nil
		}
		wait := q.changed
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// TryPush appends v without waiting.
func (q *Queue[T]) TryPush(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if q.size == len(q.buf) {
		return ErrFull
	}
	q.putLocked(v)
	return nil
}

// Pop removes the oldest value, waiting while the queue is empty and open.
// Values buffered before Close are still returned; ErrClosed is reported
// only once the queue is closed and drained.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	for {
		q.mu.Lock()
		if q.size > 0 {
			v := q.takeLocked()
			q.mu.Unlock()
			return v, nil
		}
		if q.closed {
			q.mu.Unlock()
			var zero T
			return zero, ErrClosed
		}
		wait := q.changed
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// TryPop removes the oldest value without waiting.
func (q *Queue[T]) TryPop() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.size > 0 {
		return q.takeLocked(), nil
	}
	if q.closed {
		return zero, ErrClosed
	}
	return zero, ErrEmpty
}

// Close marks the queue closed and wakes every waiter. It reports whether
// this call performed the transition.
func (q *Queue[T]) Close() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closeLocked()
}

// Len returns the number of buffered values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}

// IsEmpty reports whether no values are buffered.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// IsFull reports whether the buffer is at capacity.
func (q *Queue[T]) IsFull() bool {
	return q.Len() == len(q.buf)
}

// IsClosed reports whether Close has been called.
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// AcquireSender registers a producer handle.
func (q *Queue[T]) AcquireSender() {
	q.mu.Lock()
	q.senders++
	q.mu.Unlock()
}

// ReleaseSender unregisters a producer handle. Releasing the last one
// closes the queue so that consumers observe ErrClosed after draining.
func (q *Queue[T]) ReleaseSender() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.senders == 0 {
		return
	}
	q.senders--
	if q.senders == 0 {
		q.closeLocked()
	}
}

// AcquireReceiver registers a consumer handle.
func (q *Queue[T]) AcquireReceiver() {
	q.mu.Lock()
	q.receivers++
	q.mu.Unlock()
}

// ReleaseReceiver unregisters a consumer handle. Releasing the last one
// closes the queue so that blocked producers fail instead of waiting forever.
func (q *Queue[T]) ReleaseReceiver() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.receivers == 0 {
		return
	}
	q.receivers--
	if q.receivers == 0 {
		q.closeLocked()
	}
}

// SenderCount returns the number of live producer handles.
func (q *Queue[T]) SenderCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.senders
}

// ReceiverCount returns the number of live consumer handles.
func (q *Queue[T]) ReceiverCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.receivers
}

func (q *Queue[T]) putLocked(v T) {
	q.buf[(q.head+q.size)%len(q.buf)] = v
	q.size++
	q.notifyLocked()
}

func (q *Queue[T]) takeLocked() T {
	var zero T
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	q.notifyLocked()
	return v
}

func (q *Queue[T]) closeLocked() bool {
	if q.closed {
		return false
	}
	q.closed = true
	q.notifyLocked()
	return true
}

func (q *Queue[T]) notifyLocked() {
	close(q.changed)
	q.changed = make(chan struct{})
}
