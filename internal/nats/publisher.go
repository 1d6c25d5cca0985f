package nats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher writes messages to JetStream with their frame headers.
type Publisher struct {
	js     jetstream.JetStream
	logger *slog.Logger
}

// NewPublisher creates a new frame publisher.
func NewPublisher(js jetstream.JetStream, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		js:     js,
		logger: logger.With("component", "publisher"),
	}
}

// PublishFrame publishes msg to subject, carrying its entity and initial
// flag as headers.
func (p *Publisher) PublishFrame(ctx context.Context, subject string, msg Message) error {
	ack, err := p.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Header:  msg.Header(),
		Data:    msg.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to publish frame: %w", err)
	}

	p.logger.Debug("frame published",
		"entity", msg.Entity,
		"initial", msg.Initial,
		"subject", subject,
		"stream", ack.Stream,
		"sequence", ack.Sequence,
	)
	return nil
}
