package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/SebastienMelki/eframe/internal/relay"
)

// adminServer exposes metrics, health, stats and the dedup memory reset.
type adminServer struct {
	relay   *relay.Relay
	health  func(context.Context) error
	metrics http.Handler
	logger  *slog.Logger
}

func (a *adminServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", a.metrics)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /stats", a.handleStats)
	mux.HandleFunc("POST /reset", a.handleReset)
	return mux
}

func (a *adminServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.health(r.Context()); err != nil {
		a.logger.Warn("health check failed", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (a *adminServer) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a.relay.Stats()); err != nil {
		a.logger.Error("failed to encode stats", "error", err)
	}
}

func (a *adminServer) handleReset(w http.ResponseWriter, r *http.Request) {
	a.relay.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
