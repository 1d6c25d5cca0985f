package eframe

import (
	"log/slog"

	otelmetric "go.opentelemetry.io/otel/metric"
)

type options struct {
	logger    *slog.Logger
	meter     otelmetric.Meter
	newMemory func() Memory
}

// Option configures a channel created by Bounded or NewFromConfig.
type Option func(*options)

// WithLogger sets the logger used by both endpoints. Suppressed duplicates
// and resets are logged at debug level. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeter enables metric instrumentation using the given OTel Meter.
// Without it, instruments are no-ops.
func WithMeter(meter otelmetric.Meter) Option {
	return func(o *options) {
		if meter != nil {
			o.meter = meter
		}
	}
}

// WithMemory sets the factory used to create the dedup memory of every
// Receiver of the channel, including clones. The factory must return a new,
// empty Memory on each call.
func WithMemory(newMemory func() Memory) Option {
	return func(o *options) {
		if newMemory != nil {
			o.newMemory = newMemory
		}
	}
}

// WithBloomMemory makes receivers remember identities in a fixed-size bloom
// filter instead of an exact set. See NewBloomMemory.
func WithBloomMemory(capacity uint, fpRate float64) Option {
	return WithMemory(func() Memory {
		return NewBloomMemory(capacity, fpRate)
	})
}
