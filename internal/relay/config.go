// Package relay forwards the output of a single deduplicating eframe
// receiver downstream. Running exactly one Receiver and fanning out from
// it is how several consumers get a consistent deduplicated view.
package relay

import "time"

// Config holds relay settings.
type Config struct {
	// TargetPrefix is prepended to the source subject when forwarding
	TargetPrefix string `env:"RELAY_TARGET_PREFIX" envDefault:"deduped"`

	// TargetStream is the JetStream stream capturing TargetPrefix subjects
	TargetStream string `env:"RELAY_TARGET_STREAM" envDefault:"EFRAME_DEDUPED"`

	// RateLimit caps forwarded messages per second (0 disables the limit)
	RateLimit float64 `env:"RELAY_RATE_LIMIT" envDefault:"0"`

	// Burst is the number of messages allowed above RateLimit in a burst
	Burst int `env:"RELAY_BURST" envDefault:"100"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `env:"RELAY_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}
