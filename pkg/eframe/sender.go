package eframe

import (
	"context"
	"errors"
)

// Sender is the producer side of a channel. It is safe for concurrent use;
// Clone creates further independent handles to the same buffer.
type Sender[T Identifier] struct {
	endpoint[T]
}

func newSender[T Identifier](s *shared[T]) *Sender[T] {
	s.q.AcquireSender()
	return &Sender[T]{endpoint: endpoint[T]{shared: s}}
}

// Send enqueues v as an ordinary frame, waiting while the channel is full.
// If the channel is closed it returns a *SendError holding v and wrapping
// ErrClosed. If ctx ends first it returns ctx.Err() and v is not enqueued.
func (s *Sender[T]) Send(ctx context.Context, v T) error {
	return s.SendFrame(ctx, NewFrame(v))
}

// SendInitial is like Send but tags v as an initial snapshot.
func (s *Sender[T]) SendInitial(ctx context.Context, v T) error {
	return s.SendFrame(ctx, NewInitialFrame(v))
}

// TrySend enqueues v as an ordinary frame without waiting. On failure it
// returns a *SendError holding v and wrapping ErrFull or ErrClosed.
func (s *Sender[T]) TrySend(v T) error {
	return s.TrySendFrame(NewFrame(v))
}

// TrySendInitial is like TrySend but tags v as an initial snapshot.
func (s *Sender[T]) TrySendInitial(v T) error {
	return s.TrySendFrame(NewInitialFrame(v))
}

// SendFrame enqueues a prebuilt frame, waiting while the channel is full.
func (s *Sender[T]) SendFrame(ctx context.Context, f Frame[T]) error {
	if err := s.q.Push(ctx, f); err != nil {
		if errors.Is(err, ErrClosed) {
			return &SendError[T]{Value: f.data, Err: err}
		}
		return err
	}
	s.metrics.recordSent(ctx, f.initial)
	return nil
}

// TrySendFrame enqueues a prebuilt frame without waiting.
func (s *Sender[T]) TrySendFrame(f Frame[T]) error {
	if err := s.q.TryPush(f); err != nil {
		return &SendError[T]{Value: f.data, Err: err}
	}
	s.metrics.recordSent(context.Background(), f.initial)
	return nil
}

// Clone returns a new Sender for the same channel. The clone must be
// released independently.
func (s *Sender[T]) Clone() *Sender[T] {
	return newSender(s.shared)
}

// Release gives up this handle. When the last Sender of a channel is
// released the channel closes, and receivers see ErrClosed once drained.
// Calling Release more than once has no further effect. The Sender must
// not be used afterwards.
func (s *Sender[T]) Release() {
	if s.released.CompareAndSwap(false, true) {
		s.q.ReleaseSender()
	}
}
