// Package nats bridges NATS JetStream and eframe channels: a Source feeds
// stream messages into a channel Sender, and a Publisher writes frames back
// out with their entity identity and initial flag carried in headers.
package nats

import (
	"time"
)

// Config holds NATS connection, stream, and source configuration.
type Config struct {
	// URL is the NATS server URL (e.g., "nats://localhost:4222")
	URL string `env:"NATS_URL" envDefault:"nats://localhost:4222"`

	// Name is the client connection name for monitoring
	Name string `env:"NATS_CLIENT_NAME" envDefault:"eframe-relay"`

	// MaxReconnects is the maximum number of reconnection attempts
	MaxReconnects int `env:"NATS_MAX_RECONNECTS" envDefault:"60"`

	// ReconnectWait is the time to wait between reconnection attempts
	ReconnectWait time.Duration `env:"NATS_RECONNECT_WAIT" envDefault:"2s"`

	// Timeout is the connection timeout
	Timeout time.Duration `env:"NATS_TIMEOUT" envDefault:"5s"`

	// Stream configuration
	Stream StreamConfig `envPrefix:"NATS_STREAM_"`

	// Source consumer configuration
	Source SourceConfig `envPrefix:"NATS_SOURCE_"`
}

// StreamConfig holds JetStream stream configuration.
type StreamConfig struct {
	// Name is the stream name
	Name string `env:"NAME" envDefault:"EFRAME_FRAMES"`

	// Subjects are the subjects captured by the stream
	Subjects []string `env:"SUBJECTS" envDefault:"frames.>"`

	// MaxAge is the maximum age of messages in the stream
	MaxAge time.Duration `env:"MAX_AGE" envDefault:"24h"`

	// MaxBytes is the maximum size of the stream in bytes
	MaxBytes int64 `env:"MAX_BYTES" envDefault:"268435456"` // 256MB

	// Replicas is the number of replicas for the stream
	Replicas int `env:"REPLICAS" envDefault:"1"`

	// Storage is the storage type (file or memory)
	Storage string `env:"STORAGE" envDefault:"file"`
}

// SourceConfig holds the durable consumer the Source reads from.
type SourceConfig struct {
	// Consumer is the consumer durable name
	Consumer string `env:"CONSUMER" envDefault:"eframe-relay"`

	// FilterSubject is the subject filter for the consumer
	FilterSubject string `env:"FILTER_SUBJECT" envDefault:"frames.>"`

	// AckWait is the time JetStream waits for an ack before redelivery
	AckWait time.Duration `env:"ACK_WAIT" envDefault:"30s"`

	// MaxAckPending bounds unacknowledged messages in flight
	MaxAckPending int `env:"MAX_ACK_PENDING" envDefault:"1000"`

	// MaxDeliver is the maximum number of delivery attempts
	MaxDeliver int `env:"MAX_DELIVER" envDefault:"5"`

	// BatchSize is the number of messages requested per fetch
	BatchSize int `env:"BATCH_SIZE" envDefault:"100"`

	// FetchWait is how long a fetch waits for messages
	FetchWait time.Duration `env:"FETCH_WAIT" envDefault:"5s"`
}
