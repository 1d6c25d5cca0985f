package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/SebastienMelki/eframe/internal/observability"
	"github.com/SebastienMelki/eframe/pkg/eframe"
)

// inboundMsg is the part of jetstream.Msg the Source relies on.
type inboundMsg interface {
	Subject() string
	Headers() nats.Header
	Data() []byte
	Ack() error
	Nak() error
}

// Source pulls messages from a JetStream consumer and sends them into an
// eframe channel, as initial frames when marked so. A message is acked only
// after the channel accepted it.
type Source struct {
	consumer  jetstream.Consumer
	tx        *eframe.Sender[Message]
	batchSize int
	cfg       SourceConfig
	logger    *slog.Logger
	metrics   *observability.Metrics

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewSource creates a Source reading consumer into tx. The Source owns tx
// and releases it when its loop exits, which closes the channel once no
// other Sender remains. metrics may be nil.
func NewSource(
	consumer jetstream.Consumer,
	tx *eframe.Sender[Message],
	cfg SourceConfig,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	return &Source{
		consumer:  consumer,
		tx:        tx,
		batchSize: batchSize,
		cfg:       cfg,
		logger:    logger.With("component", "frame-source", "consumer", cfg.Consumer),
		metrics:   metrics,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the fetch loop. It returns ErrSourceStarted if called twice.
func (s *Source) Start(ctx context.Context) error {
	started := false
	s.startOnce.Do(func() { started = true })
	if !started {
		return ErrSourceStarted
	}

	s.logger.Info("starting frame source", "batch_size", s.batchSize)
	go s.run(ctx)
	return nil
}

func (s *Source) run(ctx context.Context) {
	defer close(s.doneCh)
	defer s.tx.Release()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("context cancelled, stopping frame source")
			return
		case <-s.stopCh:
			s.logger.Info("stop signal received, stopping frame source")
			return
		default:
		}

		if s.tx.IsClosed() {
			s.logger.Info("frame channel closed, stopping frame source")
			return
		}

		batch, err := s.consumer.Fetch(s.batchSize, jetstream.FetchMaxWait(s.cfg.FetchWait))
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				s.logger.Error("failed to fetch messages", "error", err)
			}
			continue
		}

		n := 0
		for msg := range batch.Messages() {
			n++
			if err := s.handle(ctx, msg); err != nil {
				s.logger.Error("failed to push message into frame channel",
					"subject", msg.Subject(),
					"error", err,
				)
			}
		}
		if s.metrics != nil && n > 0 {
			s.metrics.SourceBatch.Record(ctx, int64(n))
		}

		if err := batch.Error(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("fetch batch error", "error", err)
		}
	}
}

// handle sends one message into the channel, waiting for space, and acks
// it on success. On failure the message is NAKed for redelivery.
func (s *Source) handle(ctx context.Context, msg inboundMsg) error {
	m := DecodeMessage(msg.Subject(), msg.Headers(), msg.Data())

	var err error
	if m.Initial {
		err = s.tx.SendInitial(ctx, m)
	} else {
		err = s.tx.Send(ctx, m)
	}

	if err != nil {
		if s.metrics != nil {
			s.metrics.SourceNaks.Add(ctx, 1)
		}
		if nakErr := msg.Nak(); nakErr != nil {
			s.logger.Error("failed to NAK message", "error", nakErr)
		}
		return fmt.Errorf("failed to send frame: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SourceIngested.Add(ctx, 1)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		s.logger.Error("failed to ACK message", "error", ackErr)
	}
	return nil
}

// Stop signals the fetch loop to exit and waits for it, or for ctx.
func (s *Source) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.logger.Info("stopping frame source")
		close(s.stopCh)
	})

	select {
	case <-s.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
