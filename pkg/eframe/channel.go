package eframe

import (
	"log/slog"

	"github.com/SebastienMelki/eframe/pkg/eframe/internal/queue"
)

// Bounded creates a channel buffering at most capacity frames and returns
// its first Sender and Receiver. It panics if capacity is less than one.
func Bounded[T Identifier](capacity int, opts ...Option) (*Sender[T], *Receiver[T]) {
	o := options{
		logger:    slog.Default(),
		newMemory: NewSetMemory,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger.With("component", "eframe")

	metrics := noopInstruments()
	if o.meter != nil {
		m, err := newInstruments(o.meter)
		if err != nil {
			logger.Warn("failed to create eframe instruments, metrics disabled", "error", err)
		} else {
			metrics = m
		}
	}

	s := &shared[T]{
		q:         queue.New[Frame[T]](capacity),
		logger:    logger,
		metrics:   metrics,
		newMemory: o.newMemory,
	}

	return newSender(s), newReceiver(s)
}

// NewFromConfig validates cfg and creates a channel from it. Options are
// applied after the configuration, so an explicit WithMemory wins over
// cfg.Memory.
func NewFromConfig[T Identifier](cfg Config, opts ...Option) (*Sender[T], *Receiver[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	tx, rx := Bounded[T](cfg.Capacity, append(cfg.options(), opts...)...)
	return tx, rx, nil
}
