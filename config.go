// Configuration options for rxfrp
package rxfrp

// Option configures an operator or factory.
type Option interface {
	Apply(config *Config)
}

// OptionFunc adapts a function to Option.
type OptionFunc func(config *Config)

// Apply calls f(config).
func (f OptionFunc) Apply(config *Config) {
	f(config)
}

// Config holds the collaborators of time based operators and factories.
type Config struct {
	// Scheduler provides timers. Defaults to DefaultScheduler.
	Scheduler Scheduler

	// ErrorHandler receives undeliverable errors. Defaults to the package
	// handler set with SetErrorHandler.
	ErrorHandler ErrorHandler

	// BufferSize is the channel buffer used by ToChannel.
	BufferSize int
}

// DefaultConfig returns the configuration used when no option is given.
func DefaultConfig() *Config {
	return &Config{
		Scheduler:  DefaultScheduler,
		BufferSize: 16,
	}
}

func newConfig(options []Option) *Config {
	config := DefaultConfig()
	for _, opt := range options {
		if opt != nil {
			opt.Apply(config)
		}
	}
	if config.Scheduler == nil {
		config.Scheduler = DefaultScheduler
	}
	if config.BufferSize < 0 {
		config.BufferSize = 0
	}
	return config
}

func (c *Config) handleError(err error) {
	if err == nil {
		return
	}
	if c.ErrorHandler != nil {
		c.ErrorHandler(err)
		return
	}
	currentErrorHandler()(err)
}

// WithScheduler injects the scheduler used for timers.
func WithScheduler(scheduler Scheduler) Option {
	return OptionFunc(func(config *Config) {
		config.Scheduler = scheduler
	})
}

// WithErrorHandler overrides the undeliverable error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return OptionFunc(func(config *Config) {
		config.ErrorHandler = h
	})
}

// WithBufferSize sets the channel buffer size.
func WithBufferSize(n int) Option {
	return OptionFunc(func(config *Config) {
		config.BufferSize = n
	})
}
