// Package observability wires OpenTelemetry metrics to a Prometheus exporter
// for the eframe relay and defines the relay's metric instruments.
package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Module owns the MeterProvider. Channels and relay components create their
// instruments from Meter().
type Module struct {
	provider *sdkmetric.MeterProvider
	meter    otelmetric.Meter
}

// New registers a Prometheus exporter as the metric reader, installs the
// resulting MeterProvider globally, and scopes the meter to serviceName.
func New(serviceName string) (*Module, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	return &Module{
		provider: provider,
		meter:    provider.Meter(serviceName),
	}, nil
}

// Shutdown flushes and stops the MeterProvider.
func (m *Module) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

// MetricsHandler serves the Prometheus exposition format. Mount at "/metrics".
func (m *Module) MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Meter returns the service meter.
func (m *Module) Meter() otelmetric.Meter {
	return m.meter
}
