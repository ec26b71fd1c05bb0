package thread

import (
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
)

const (
	defaultSubmitTimeout = 10 * time.Second
	defaultCacheTTL      = time.Minute
)

type option struct {
	submitTimeout time.Duration
	cacheTTL      time.Duration
	clock         func() time.Time
	logger        logSDK.Logger
}

// Option configures a Thread
type Option func(*option) error

func applyOpts(opts ...Option) (*option, error) {
	// fill default
	o := &option{
		submitTimeout: defaultSubmitTimeout,
		cacheTTL:      defaultCacheTTL,
		clock:         time.Now,
	}

	// apply opts
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return o, nil
}

// WithSubmitTimeout bounds how long one submission may take
func WithSubmitTimeout(timeout time.Duration) Option {
	return func(o *option) error {
		if timeout <= 0 {
			return errors.Errorf("submit timeout must be positive: %s", timeout)
		}

		o.submitTimeout = timeout
		return nil
	}
}

// WithCacheTTL sets how long the fetched list is reused by Comments
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *option) error {
		if ttl < 0 {
			return errors.Errorf("cache ttl must not be negative: %s", ttl)
		}

		o.cacheTTL = ttl
		return nil
	}
}

// WithClock sets the time source used for comment ages
func WithClock(clock func() time.Time) Option {
	return func(o *option) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}

		o.clock = clock
		return nil
	}
}

// WithLogger sets the logger
func WithLogger(logger logSDK.Logger) Option {
	return func(o *option) error {
		o.logger = logger
		return nil
	}
}
