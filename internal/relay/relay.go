package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/SebastienMelki/eframe/internal/nats"
	"github.com/SebastienMelki/eframe/internal/observability"
	"github.com/SebastienMelki/eframe/pkg/eframe"
)

// Forwarder publishes a delivered message downstream. nats.Publisher
// implements it.
type Forwarder interface {
	PublishFrame(ctx context.Context, subject string, msg nats.Message) error
}

// Stats is a point-in-time view of a Relay.
type Stats struct {
	ID        string `json:"id"`
	Forwarded int64  `json:"forwarded"`
	Failed    int64  `json:"failed"`
	Buffered  int    `json:"buffered"`
	Capacity  int    `json:"capacity"`
	Processed int    `json:"processed"`
	Closed    bool   `json:"closed"`
}

// Relay is the single consumer of a frame channel.
type Relay struct {
	id      string
	rx      *eframe.Receiver[nats.Message]
	fwd     Forwarder
	limiter *rate.Limiter
	cfg     Config
	logger  *slog.Logger
	metrics *observability.Metrics

	forwarded atomic.Int64
	failed    atomic.Int64
}

// New creates a Relay draining rx into fwd. metrics may be nil.
func New(
	rx *eframe.Receiver[nats.Message],
	fwd Forwarder,
	cfg Config,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Relay {
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	id := uuid.NewString()
	return &Relay{
		id:      id,
		rx:      rx,
		fwd:     fwd,
		limiter: rate.NewLimiter(limit, burst),
		cfg:     cfg,
		logger:  logger.With("component", "relay", "relay_id", id),
		metrics: metrics,
	}
}

// Run forwards delivered messages until the channel is closed and drained
// (returning nil) or ctx ends (returning ctx.Err()). Forwarding failures
// are logged and counted; they do not stop the relay.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("relay started",
		"target_prefix", r.cfg.TargetPrefix,
		"rate_limit", r.cfg.RateLimit,
		"capacity", r.rx.Cap(),
	)

	for {
		msg, err := r.rx.Recv(ctx)
		if err != nil {
			if errors.Is(err, eframe.ErrClosed) {
				r.logger.Info("frame channel closed, relay stopping",
					"forwarded", r.forwarded.Load(),
					"failed", r.failed.Load(),
				)
				return nil
			}
			return err
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		r.forward(ctx, msg)
	}
}

func (r *Relay) forward(ctx context.Context, msg nats.Message) {
	subject := r.Subject(msg)
	start := time.Now()

	if err := r.fwd.PublishFrame(ctx, subject, msg); err != nil {
		r.failed.Add(1)
		if r.metrics != nil {
			r.metrics.RelayFailures.Add(ctx, 1)
		}
		r.logger.Error("failed to forward message",
			"subject", subject,
			"entity", msg.Entity,
			"error", err,
		)
		return
	}

	r.forwarded.Add(1)
	if r.metrics != nil {
		r.metrics.RelayForwarded.Add(ctx, 1)
		r.metrics.RelayForwardLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	}
}

// Subject returns the downstream subject for msg.
func (r *Relay) Subject(msg nats.Message) string {
	if r.cfg.TargetPrefix == "" {
		return msg.Subject
	}
	return r.cfg.TargetPrefix + "." + msg.Subject
}

// Reset clears the receiver's dedup memory, so the next snapshot of every
// entity is forwarded again.
func (r *Relay) Reset(ctx context.Context) {
	n := r.rx.Processed()
	r.rx.ResetProcessed()
	if r.metrics != nil {
		r.metrics.RelayResets.Add(ctx, 1)
	}
	r.logger.Info("dedup memory reset", "forgotten", n)
}

// Stats returns forwarding counters and the channel state.
func (r *Relay) Stats() Stats {
	return Stats{
		ID:        r.id,
		Forwarded: r.forwarded.Load(),
		Failed:    r.failed.Load(),
		Buffered:  r.rx.Len(),
		Capacity:  r.rx.Cap(),
		Processed: r.rx.Processed(),
		Closed:    r.rx.IsClosed(),
	}
}
