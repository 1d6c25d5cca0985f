package observability

import (
	otelmetric "go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments of the relay process. Channel-level frame
// counters live in the eframe package itself; these cover the NATS source,
// the downstream forwarder, and the admin endpoint.
type Metrics struct {
	// Admin HTTP metrics
	AdminRequestDuration otelmetric.Float64Histogram
	AdminRequestTotal    otelmetric.Int64Counter
	AdminRequestErrors   otelmetric.Int64Counter

	// Source metrics
	SourceIngested otelmetric.Int64Counter
	SourceNaks     otelmetric.Int64Counter
	SourceBatch    otelmetric.Int64Histogram

	// Relay metrics
	RelayForwarded      otelmetric.Int64Counter
	RelayFailures       otelmetric.Int64Counter
	RelayForwardLatency otelmetric.Float64Histogram
	RelayResets         otelmetric.Int64Counter
}

// NewMetrics creates all instruments from the given Meter.
func NewMetrics(meter otelmetric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	// Admin HTTP metrics
	m.AdminRequestDuration, err = meter.Float64Histogram(
		"admin.request.duration",
		otelmetric.WithUnit("ms"),
		otelmetric.WithDescription("Admin HTTP request duration in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	m.AdminRequestTotal, err = meter.Int64Counter(
		"admin.request.total",
		otelmetric.WithDescription("Total admin HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	m.AdminRequestErrors, err = meter.Int64Counter(
		"admin.request.errors",
		otelmetric.WithDescription("Admin HTTP request errors (4xx and 5xx)"),
	)
	if err != nil {
		return nil, err
	}

	// Source metrics
	m.SourceIngested, err = meter.Int64Counter(
		"source.messages.ingested",
		otelmetric.WithDescription("JetStream messages pushed into the frame channel"),
	)
	if err != nil {
		return nil, err
	}

	m.SourceNaks, err = meter.Int64Counter(
		"source.messages.nacked",
		otelmetric.WithDescription("JetStream messages NAKed because the frame channel rejected them"),
	)
	if err != nil {
		return nil, err
	}

	m.SourceBatch, err = meter.Int64Histogram(
		"source.batch.size",
		otelmetric.WithDescription("JetStream fetch batch sizes"),
	)
	if err != nil {
		return nil, err
	}

	// Relay metrics
	m.RelayForwarded, err = meter.Int64Counter(
		"relay.messages.forwarded",
		otelmetric.WithDescription("Deduplicated messages forwarded downstream"),
	)
	if err != nil {
		return nil, err
	}

	m.RelayFailures, err = meter.Int64Counter(
		"relay.messages.failed",
		otelmetric.WithDescription("Messages that could not be forwarded downstream"),
	)
	if err != nil {
		return nil, err
	}

	m.RelayForwardLatency, err = meter.Float64Histogram(
		"relay.forward.latency",
		otelmetric.WithUnit("ms"),
		otelmetric.WithDescription("Downstream publish latency in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	m.RelayResets, err = meter.Int64Counter(
		"relay.memory.resets",
		otelmetric.WithDescription("Dedup memory resets requested through the relay"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}
