package eframe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// instruments holds the metric instruments shared by the endpoints of one
// channel.
type instruments struct {
	sent       otelmetric.Int64Counter
	delivered  otelmetric.Int64Counter
	suppressed otelmetric.Int64Counter
	resets     otelmetric.Int64Counter
}

func newInstruments(meter otelmetric.Meter) (*instruments, error) {
	var m instruments
	var err error

	m.sent, err = meter.Int64Counter(
		"eframe.frames.sent",
		otelmetric.WithDescription("Frames enqueued by senders"),
	)
	if err != nil {
		return nil, err
	}

	m.delivered, err = meter.Int64Counter(
		"eframe.frames.delivered",
		otelmetric.WithDescription("Frames delivered to receivers"),
	)
	if err != nil {
		return nil, err
	}

	m.suppressed, err = meter.Int64Counter(
		"eframe.frames.suppressed",
		otelmetric.WithDescription("Initial frames dropped as already seen"),
	)
	if err != nil {
		return nil, err
	}

	m.resets, err = meter.Int64Counter(
		"eframe.memory.resets",
		otelmetric.WithDescription("Receiver dedup memory resets"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func noopInstruments() *instruments {
	m, _ := newInstruments(noop.NewMeterProvider().Meter("eframe"))
	return m
}

func initialAttr(initial bool) otelmetric.AddOption {
	return otelmetric.WithAttributes(attribute.Bool("initial", initial))
}

func (m *instruments) recordSent(ctx context.Context, initial bool) {
	m.sent.Add(ctx, 1, initialAttr(initial))
}

func (m *instruments) recordDelivered(ctx context.Context, initial bool) {
	m.delivered.Add(ctx, 1, initialAttr(initial))
}

func (m *instruments) recordSuppressed(ctx context.Context) {
	m.suppressed.Add(ctx, 1)
}

func (m *instruments) recordReset(ctx context.Context) {
	m.resets.Add(ctx, 1)
}
