package eframe

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Memory kinds accepted by Config.Memory.
const (
	MemorySet   = "set"
	MemoryBloom = "bloom"
)

// Config holds channel configuration.
//
// Environment variable overrides:
//   - EFRAME_CAPACITY:       channel buffer size (default: 1024)
//   - EFRAME_MEMORY:         receiver dedup memory, "set" or "bloom" (default: set)
//   - EFRAME_BLOOM_CAPACITY: expected distinct identities for bloom memory (default: 1000000)
//   - EFRAME_BLOOM_FP_RATE:  bloom memory false positive rate (default: 0.0001)
type Config struct {
	Capacity      int     `env:"EFRAME_CAPACITY"       envDefault:"1024"`
	Memory        string  `env:"EFRAME_MEMORY"         envDefault:"set"`
	BloomCapacity uint    `env:"EFRAME_BLOOM_CAPACITY" envDefault:"1000000"`
	BloomFPRate   float64 `env:"EFRAME_BLOOM_FP_RATE"  envDefault:"0.0001"`
}

// DefaultConfig returns the default channel configuration: 1024 frames of
// buffer and exact set memory.
func DefaultConfig() Config {
	return Config{
		Capacity:      1024,
		Memory:        MemorySet,
		BloomCapacity: 1_000_000,
		BloomFPRate:   0.0001,
	}
}

// LoadConfig reads a Config from the environment and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse eframe config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration describes a constructible channel.
func (c Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}

	switch c.Memory {
	case MemorySet, "":
	case MemoryBloom:
		if c.BloomCapacity == 0 {
			return fmt.Errorf("%w: bloom capacity must be positive", ErrInvalidConfig)
		}
		if c.BloomFPRate <= 0 || c.BloomFPRate >= 1 {
			return fmt.Errorf("%w: bloom false positive rate must be in (0, 1), got %v", ErrInvalidConfig, c.BloomFPRate)
		}
	default:
		return fmt.Errorf("%w: unknown memory kind %q", ErrInvalidConfig, c.Memory)
	}

	return nil
}

func (c Config) options() []Option {
	if c.Memory == MemoryBloom {
		return []Option{WithBloomMemory(c.BloomCapacity, c.BloomFPRate)}
	}
	return nil
}
