package nats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

// StreamManager creates or updates the frame stream and the relay's
// durable consumer.
type StreamManager struct {
	js     jetstream.JetStream
	logger *slog.Logger
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(js jetstream.JetStream, logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		js:     js,
		logger: logger.With("component", "stream-manager"),
	}
}

// streamConfig translates StreamConfig into the JetStream form.
func streamConfig(cfg StreamConfig) jetstream.StreamConfig {
	storage := jetstream.FileStorage
	if strings.EqualFold(cfg.Storage, "memory") {
		storage = jetstream.MemoryStorage
	}

	return jetstream.StreamConfig{
		Name:      cfg.Name,
		Subjects:  cfg.Subjects,
		Storage:   storage,
		MaxAge:    cfg.MaxAge,
		MaxBytes:  cfg.MaxBytes,
		Replicas:  cfg.Replicas,
		Retention: jetstream.LimitsPolicy,
		Discard:   jetstream.DiscardOld,
	}
}

// consumerConfig translates SourceConfig into a durable pull consumer
// with explicit acks.
func consumerConfig(cfg SourceConfig) jetstream.ConsumerConfig {
	return jetstream.ConsumerConfig{
		Durable:       cfg.Consumer,
		FilterSubject: cfg.FilterSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       cfg.AckWait,
		MaxAckPending: cfg.MaxAckPending,
		MaxDeliver:    cfg.MaxDeliver,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	}
}

// EnsureStream creates the stream or updates it to match cfg.
func (m *StreamManager) EnsureStream(ctx context.Context, cfg StreamConfig) (jetstream.Stream, error) {
	jsCfg := streamConfig(cfg)

	if _, err := m.js.Stream(ctx, cfg.Name); err == nil {
		stream, err := m.js.UpdateStream(ctx, jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to update stream: %w", err)
		}
		m.logger.Info("stream updated", "name", cfg.Name)
		return stream, nil
	}

	stream, err := m.js.CreateStream(ctx, jsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	m.logger.Info("stream created",
		"name", cfg.Name,
		"subjects", cfg.Subjects,
		"storage", cfg.Storage,
		"max_age", cfg.MaxAge,
	)
	return stream, nil
}

// EnsureConsumer creates the source consumer on stream or updates it.
func (m *StreamManager) EnsureConsumer(ctx context.Context, stream jetstream.Stream, cfg SourceConfig) (jetstream.Consumer, error) {
	consumer, err := stream.CreateOrUpdateConsumer(ctx, consumerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to ensure consumer %s: %w", cfg.Consumer, err)
	}

	m.logger.Info("consumer ready",
		"name", cfg.Consumer,
		"filter", cfg.FilterSubject,
	)
	return consumer, nil
}
