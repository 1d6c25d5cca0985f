package eframe

// Frame is the unit of transit through the channel: a payload tagged as
// either an initial snapshot or an ordinary update. The tag cannot change
// after construction.
type Frame[T any] struct {
	data    T
	initial bool
}

// NewFrame wraps data as an ordinary, non-initial frame.
func NewFrame[T any](data T) Frame[T] {
	return Frame[T]{data: data}
}

// NewInitialFrame wraps data as an initial frame.
func NewInitialFrame[T any](data T) Frame[T] {
	return Frame[T]{data: data, initial: true}
}

// Data returns the payload.
func (f Frame[T]) Data() T {
	return f.data
}

// Initial reports whether the frame was sent as an initial snapshot.
func (f Frame[T]) Initial() bool {
	return f.initial
}
