package session

import "time"

// Config provides environment-based configuration for the memory store.
type Config struct {
	Timeout         time.Duration `env:"SESSION_TIMEOUT" envDefault:"30m" validate:"gt=0"`
	SweepInterval   time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SESSION_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		SweepInterval:   DefaultSweepInterval,
		ShutdownTimeout: 30 * time.Second,
	}
}

// NewMemoryStoreFromConfig creates a MemoryStore from configuration.
// Options are applied after the config values and override them.
func NewMemoryStoreFromConfig(cfg Config, opts ...MemoryStoreOption) *MemoryStore {
	configOpts := []MemoryStoreOption{
		WithDefaultTimeout(cfg.Timeout),
		WithSweepInterval(cfg.SweepInterval),
		WithShutdownTimeout(cfg.ShutdownTimeout),
	}
	return NewMemoryStore(append(configOpts, opts...)...)
}
