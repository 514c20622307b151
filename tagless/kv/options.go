package kv

// Option configures an Optimizer.
type Option interface {
	Apply(*Config)
}

// OptionFunc adapts a function to Option.
type OptionFunc func(*Config)

// Apply calls f.
func (f OptionFunc) Apply(c *Config) {
	f(c)
}

// Config is the Optimizer configuration.
type Config struct {
	// MaxConcurrency bounds the number of prefetches in flight.
	MaxConcurrency int
}

// DefaultConfig prefetches up to 8 keys at once.
func DefaultConfig() Config {
	return Config{MaxConcurrency: 8}
}

// WithMaxConcurrency bounds the number of prefetches in flight. Values
// below 1 are treated as 1.
func WithMaxConcurrency(n int) Option {
	return OptionFunc(func(c *Config) {
		c.MaxConcurrency = max(n, 1)
	})
}
