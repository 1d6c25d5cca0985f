// Command eframe-relay consumes entity frames from a NATS JetStream stream,
// drops repeated initial snapshots through a single eframe receiver, and
// republishes the deduplicated sequence to a downstream stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"

	"github.com/SebastienMelki/eframe/internal/nats"
	"github.com/SebastienMelki/eframe/internal/observability"
	"github.com/SebastienMelki/eframe/internal/relay"
	"github.com/SebastienMelki/eframe/pkg/eframe"
)

// Config holds all relay process configuration.
type Config struct {
	// LogLevel is the log level (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogFormat is the log format (json, text).
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// AdminAddr is the address for metrics, health and control endpoints.
	AdminAddr string `env:"ADMIN_ADDR" envDefault:":9091"`

	// NATS configuration.
	NATS nats.Config `envPrefix:""`

	// Channel configuration.
	Channel eframe.Config `envPrefix:""`

	// Relay configuration.
	Relay relay.Config `envPrefix:""`
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return err
	}
	if err := cfg.Channel.Validate(); err != nil {
		return err
	}
	if cfg.Relay.TargetPrefix == "" {
		return errors.New("RELAY_TARGET_PREFIX must not be empty")
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("starting eframe relay",
		"log_level", cfg.LogLevel,
		"nats_url", cfg.NATS.URL,
		"consumer", cfg.NATS.Source.Consumer,
		"capacity", cfg.Channel.Capacity,
		"memory", cfg.Channel.Memory,
		"admin_addr", cfg.AdminAddr,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := observability.New("eframe-relay")
	if err != nil {
		return err
	}
	defer func() {
		if shutErr := obs.Shutdown(context.Background()); shutErr != nil {
			logger.Error("observability shutdown error", "error", shutErr)
		}
	}()

	metrics, err := observability.NewMetrics(obs.Meter())
	if err != nil {
		return err
	}

	natsClient, err := nats.NewClient(cfg.NATS, logger)
	if err != nil {
		return err
	}
	defer natsClient.Close()

	streamMgr := nats.NewStreamManager(natsClient.JetStream(), logger)
	stream, err := streamMgr.EnsureStream(ctx, cfg.NATS.Stream)
	if err != nil {
		return err
	}
	if _, err := streamMgr.EnsureStream(ctx, targetStream(cfg)); err != nil {
		return err
	}
	consumer, err := streamMgr.EnsureConsumer(ctx, stream, cfg.NATS.Source)
	if err != nil {
		return err
	}

	tx, rx, err := eframe.NewFromConfig[nats.Message](cfg.Channel,
		eframe.WithLogger(logger),
		eframe.WithMeter(obs.Meter()),
	)
	if err != nil {
		return err
	}
	defer rx.Release()

	source := nats.NewSource(consumer, tx, cfg.NATS.Source, metrics, logger)
	if err := source.Start(ctx); err != nil {
		return err
	}

	publisher := nats.NewPublisher(natsClient.JetStream(), logger)
	r := relay.New(rx, publisher, cfg.Relay, metrics, logger)

	relayDone := make(chan error, 1)
	go func() {
		relayDone <- r.Run(ctx)
	}()

	admin := &adminServer{
		relay:   r,
		health:  natsClient.HealthCheck,
		metrics: obs.MetricsHandler(),
		logger:  logger,
	}
	srv := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: observability.AdminMetrics(metrics)(admin.routes()),
	}
	go func() {
		logger.Info("starting admin server", "addr", cfg.AdminAddr)
		if srvErr := srv.ListenAndServe(); srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			logger.Error("admin server error", "error", srvErr)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case runErr = <-relayDone:
		logger.Warn("relay exited", "error", runErr)
		relayDone = nil
	}

	logger.Info("initiating graceful shutdown")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Relay.ShutdownTimeout)
	defer shutdownCancel()

	if err := source.Stop(shutdownCtx); err != nil {
		logger.Error("source stop error", "error", err)
	}

	// The source released its sender, so the relay drains what is buffered
	// and returns once the channel reports closed.
	if relayDone != nil {
		select {
		case runErr = <-relayDone:
		case <-shutdownCtx.Done():
			cancel()
			runErr = <-relayDone
		}
	}
	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown error", "error", err)
	}

	if err := natsClient.Drain(); err != nil {
		logger.Error("NATS drain error", "error", err)
	}

	stats := r.Stats()
	logger.Info("eframe relay stopped",
		"forwarded", stats.Forwarded,
		"failed", stats.Failed,
	)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("relay: %w", runErr)
	}
	return nil
}

// targetStream describes the stream capturing the relay's output subjects.
func targetStream(cfg Config) nats.StreamConfig {
	target := cfg.NATS.Stream
	target.Name = cfg.Relay.TargetStream
	target.Subjects = []string{cfg.Relay.TargetPrefix + ".>"}
	return target
}

// setupLogger creates a logger based on configuration.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
