package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SebastienMelki/eframe/internal/nats"
	"github.com/SebastienMelki/eframe/internal/relay"
	"github.com/SebastienMelki/eframe/pkg/eframe"
)

type discardForwarder struct{}

func (discardForwarder) PublishFrame(context.Context, string, nats.Message) error { return nil }

func newTestAdmin(t *testing.T, healthErr error) (*adminServer, *eframe.Sender[nats.Message], *eframe.Receiver[nats.Message]) {
	t.Helper()
	tx, rx := eframe.Bounded[nats.Message](4)
	t.Cleanup(func() {
		tx.Release()
		rx.Release()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &adminServer{
		relay:   relay.New(rx, discardForwarder{}, relay.Config{}, nil, logger),
		health:  func(context.Context) error { return healthErr },
		metrics: http.NotFoundHandler(),
		logger:  logger,
	}, tx, rx
}

func TestAdmin_Health(t *testing.T) {
	tests := []struct {
		name       string
		healthErr  error
		wantStatus int
	}{
		{name: "healthy", wantStatus: http.StatusOK},
		{name: "nats down", healthErr: errors.New("NATS is not connected"), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin, _, _ := newTestAdmin(t, tt.healthErr)

			rec := httptest.NewRecorder()
			admin.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("GET /health status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAdmin_ResetAndStats(t *testing.T) {
	admin, tx, rx := newTestAdmin(t, nil)
	handler := admin.routes()

	_ = tx.TrySendInitial(nats.Message{Entity: "device-1", Initial: true})
	if _, err := rx.TryRecv(); err != nil {
		t.Fatalf("TryRecv() error = %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	var stats relay.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Processed != 1 || stats.Capacity != 4 {
		t.Errorf("stats = %+v, want processed 1, capacity 4", stats)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reset", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("POST /reset status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rx.Processed() != 0 {
		t.Errorf("Processed() = %d after reset, want 0", rx.Processed())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reset", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /reset status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestTargetStream(t *testing.T) {
	cfg := Config{
		NATS:  nats.Config{Stream: nats.StreamConfig{Name: "EFRAME_FRAMES", Subjects: []string{"frames.>"}, Storage: "memory"}},
		Relay: relay.Config{TargetPrefix: "deduped", TargetStream: "EFRAME_DEDUPED"},
	}

	got := targetStream(cfg)
	if got.Name != "EFRAME_DEDUPED" || len(got.Subjects) != 1 || got.Subjects[0] != "deduped.>" {
		t.Errorf("targetStream() = %+v", got)
	}
	if got.Storage != "memory" {
		t.Errorf("Storage = %q, want inherited memory", got.Storage)
	}
	if cfg.NATS.Stream.Name != "EFRAME_FRAMES" {
		t.Error("targetStream() mutated the source stream config")
	}
}
