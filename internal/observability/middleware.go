package observability

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// statusRecorder captures the status code written by the admin handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// AdminMetrics returns middleware recording duration, count and errors of
// admin HTTP requests, tagged with method, path and status. A nil metrics
// value yields a pass-through middleware.
//
// Usage:
//
//	handler := observability.AdminMetrics(metrics)(adminMux)
func AdminMetrics(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			attrs := otelmetric.WithAttributes(
				attribute.String("method", r.Method),
				attribute.String("path", r.URL.Path),
				attribute.String("status", strconv.Itoa(rec.status)),
			)

			ctx := r.Context()
			metrics.AdminRequestDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
			metrics.AdminRequestTotal.Add(ctx, 1, attrs)
			if rec.status >= 400 {
				metrics.AdminRequestErrors.Add(ctx, 1, attrs)
			}
		})
	}
}
