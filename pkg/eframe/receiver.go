package eframe

import (
	"context"
	"sync"
)

// Receiver is the consumer side of a channel. It owns a private dedup
// memory of the identities it has delivered and uses it to drop initial
// frames for entities it has already seen.
//
// Several Receivers may read the same channel; each keeps its own memory
// and they do not coordinate. Consistent deduplication across consumers
// needs a single Receiver fanning out downstream.
type Receiver[T Identifier] struct {
	endpoint[T]

	mu        sync.Mutex
	processed Memory
}

func newReceiver[T Identifier](s *shared[T]) *Receiver[T] {
	s.q.AcquireReceiver()
	return &Receiver[T]{
		endpoint:  endpoint[T]{shared: s},
		processed: s.newMemory(),
	}
}

// Recv returns the next deliverable value, waiting while the channel is
// empty and open. Suppressed duplicates are consumed and skipped within the
// call. It returns ErrClosed once the channel is closed and drained, or
// ctx.Err() if ctx ends first; duplicates skipped before that stay consumed.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	return r.recvWith(ctx, func() (Frame[T], error) {
		return r.q.Pop(ctx)
	})
}

// RecvBlocking is Recv without cancellation, for call sites that have no
// context to offer.
func (r *Receiver[T]) RecvBlocking() (T, error) {
	return r.Recv(context.Background())
}

// TryRecv returns the next deliverable value without waiting. It skips
// any run of buffered duplicates and returns ErrEmpty if nothing
// deliverable remains, or ErrClosed if the channel is closed and drained.
func (r *Receiver[T]) TryRecv() (T, error) {
	return r.recvWith(context.Background(), r.q.TryPop)
}

// recvWith applies the dedup filter to frames obtained from fetch until one
// is deliverable or fetch fails.
func (r *Receiver[T]) recvWith(ctx context.Context, fetch func() (Frame[T], error)) (T, error) {
	for {
		f, err := fetch()
		if err != nil {
			var zero T
			return zero, err
		}

		if r.admit(f) {
			r.metrics.recordDelivered(ctx, f.initial)
			return f.data, nil
		}

		r.metrics.recordSuppressed(ctx)
		r.logger.DebugContext(ctx, "duplicate initial frame suppressed")
	}
}

// admit decides whether f is delivered and records its identity if so.
// Untracked values are always delivered. Tracked values are delivered
// unless the frame is initial and the identity is already remembered;
// every delivered tracked value is remembered, initial or not.
func (r *Receiver[T]) admit(f Frame[T]) bool {
	hash, ok := f.data.IdentityHash()
	if !ok {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if f.initial && r.processed.Contains(hash) {
		return false
	}
	r.processed.Insert(hash)
	return true
}

// ResetProcessed forgets every remembered identity, so the next initial
// frame for any entity is delivered again.
func (r *Receiver[T]) ResetProcessed() {
	r.mu.Lock()
	n := r.processed.Len()
	r.processed.Reset()
	r.mu.Unlock()

	r.metrics.recordReset(context.Background())
	r.logger.Debug("dedup memory reset", "forgotten", n)
}

// Processed returns the number of identities currently remembered.
func (r *Receiver[T]) Processed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed.Len()
}

// Remembers reports whether hash is currently remembered.
func (r *Receiver[T]) Remembers(hash uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed.Contains(hash)
}

// Clone returns a new, independent Receiver on the same channel with an
// empty dedup memory. Frames are distributed between receivers, not
// duplicated. The clone must be released independently.
func (r *Receiver[T]) Clone() *Receiver[T] {
	return newReceiver(r.shared)
}

// Release gives up this handle. When the last Receiver of a channel is
// released the channel closes and blocked senders fail with ErrClosed.
// Calling Release more than once has no further effect.
func (r *Receiver[T]) Release() {
	if r.released.CompareAndSwap(false, true) {
		r.q.ReleaseReceiver()
	}
}
