package flyer

import (
	"fmt"
	"time"

	"github.com/prjemian/flyscan/logger"
)

// DefaultStreamName is the stream name DescribeCollect and Collect results are
// published under unless overridden with WithStreamName.
const DefaultStreamName = "spin_flyer_stream"

// Config holds the acquisition parameters of a SpinFlyer. It is immutable
// after construction; build it with NewConfig and functional options.
type Config struct {
	// preStart is the run-up offset added to the start position so the
	// actuator reaches steady speed before the nominal start.
	// Defaults to -0.5.
	preStart float64

	// startPos is the nominal scan start position.
	// Defaults to -20.
	startPos float64

	// finishPos is the scan finish position; the motion from start to finish
	// is what the capture device streams during.
	// Defaults to 20.
	finishPos float64

	// pollInterval is the fixed interval for readiness polls: the actuator's
	// moving status in Complete and the capture device's write status in the
	// executor. It should be between 1 millisecond and 1 second.
	// Defaults to 50 milliseconds.
	pollInterval time.Duration

	// numSpins is the number of acquisition cycles one kickoff performs.
	// Defaults to 1.
	numSpins int

	// maxFrames is the maximum frame count the capture device is armed with.
	// Defaults to 10000.
	maxFrames int

	// streamName is the name the collected stream is published under.
	// Defaults to DefaultStreamName.
	streamName string

	// completeTimeout bounds every single readiness wait (file write, the
	// return motion) so a wedged device cannot hang the flyer forever.
	// Defaults to 30 seconds.
	completeTimeout time.Duration

	// logger provides a logger instance for flyer events and errors.
	logger logger.Logger
}

// NewConfig creates a flyer configuration with default values, then applies
// the provided options.
//
// Returns a pointer to the initialized Config and an error if any option
// failed validation.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		preStart:        -0.5,
		startPos:        -20,
		finishPos:       20,
		pollInterval:    50 * time.Millisecond,
		numSpins:        1,
		maxFrames:       10000,
		streamName:      DefaultStreamName,
		completeTimeout: 30 * time.Second,
		logger:          logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// PreStart returns the run-up offset.
func (cfg *Config) PreStart() float64 { return cfg.preStart }

// StartPosition returns the nominal scan start position.
func (cfg *Config) StartPosition() float64 { return cfg.startPos }

// FinishPosition returns the scan finish position.
func (cfg *Config) FinishPosition() float64 { return cfg.finishPos }

// PollInterval returns the readiness poll interval.
func (cfg *Config) PollInterval() time.Duration { return cfg.pollInterval }

// NumSpins returns the number of acquisition cycles per kickoff.
func (cfg *Config) NumSpins() int { return cfg.numSpins }

// MaxFrames returns the maximum frame count for arming the capture device.
func (cfg *Config) MaxFrames() int { return cfg.maxFrames }

// StreamName returns the collected stream's name.
func (cfg *Config) StreamName() string { return cfg.streamName }

// CompleteTimeout returns the bound on individual readiness waits.
func (cfg *Config) CompleteTimeout() time.Duration { return cfg.completeTimeout }

// Logger returns the configured logger.
func (cfg *Config) Logger() logger.Logger { return cfg.logger }

// Option represents a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc struct {
	name      string
	applyFunc func(*Config) error
}

func (o *optFunc) apply(cfg *Config) error { return o.applyFunc(cfg) }

func newOptFunc(name string, f func(*Config) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

// WithPreStart sets the run-up offset added to the start position.
func WithPreStart(offset float64) Option {
	return newOptFunc("WithPreStart", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.preStart = offset

		return nil
	})
}

// WithScanRange sets the nominal start and finish positions of the scan.
// The positions must differ.
func WithScanRange(start, finish float64) Option {
	return newOptFunc("WithScanRange", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if start == finish {
			return fmt.Errorf("invalid scan range: start and finish are both %v", start)
		}

		cfg.startPos = start
		cfg.finishPos = finish

		return nil
	})
}

// WithPollInterval sets the readiness poll interval.
// It should be between 1 millisecond and 1 second.
func WithPollInterval(interval time.Duration) Option {
	return newOptFunc("WithPollInterval", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if interval < time.Millisecond || interval > time.Second {
			return fmt.Errorf("invalid poll interval %v, should be between 1ms and 1s", interval)
		}

		cfg.pollInterval = interval

		return nil
	})
}

// WithNumSpins sets the number of acquisition cycles one kickoff performs.
// It should be at least 1.
func WithNumSpins(n int) Option {
	return newOptFunc("WithNumSpins", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if n < 1 {
			return fmt.Errorf("invalid spin count %d, should be at least 1", n)
		}

		cfg.numSpins = n

		return nil
	})
}

// WithMaxFrames sets the maximum frame count the capture device is armed with.
// It should be at least 1.
func WithMaxFrames(n int) Option {
	return newOptFunc("WithMaxFrames", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if n < 1 {
			return fmt.Errorf("invalid max frames %d, should be at least 1", n)
		}

		cfg.maxFrames = n

		return nil
	})
}

// WithStreamName sets the name the collected stream is published under.
func WithStreamName(name string) Option {
	return newOptFunc("WithStreamName", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if name == "" {
			return fmt.Errorf("stream name cannot be empty")
		}

		cfg.streamName = name

		return nil
	})
}

// WithCompleteTimeout bounds individual readiness waits inside the flyer.
// It should be positive.
func WithCompleteTimeout(timeout time.Duration) Option {
	return newOptFunc("WithCompleteTimeout", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if timeout <= 0 {
			return fmt.Errorf("invalid complete timeout: %v", timeout)
		}

		cfg.completeTimeout = timeout

		return nil
	})
}

// WithLogger sets the logger instance for flyer events and errors.
func WithLogger(l logger.Logger) Option {
	return newOptFunc("WithLogger", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if l == nil {
			return fmt.Errorf("logger cannot be nil")
		}

		cfg.logger = l

		return nil
	})
}
