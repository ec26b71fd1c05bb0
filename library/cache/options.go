package cache

import (
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
)

type option struct {
	ttl          time.Duration
	fetchTimeout time.Duration
	clock        func() time.Time
	logger       logSDK.Logger
	backend      Backend
}

// Option configures the cache
type Option func(*option) error

func applyOpts(opts ...Option) (*option, error) {
	// fill default
	o := &option{
		ttl:          time.Minute,
		fetchTimeout: 30 * time.Second,
		clock:        time.Now,
	}

	// apply opts
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return o, nil
}

// WithTTL sets how long a snapshot stays fresh.
// Zero keeps snapshots until they are revalidated or invalidated.
func WithTTL(ttl time.Duration) Option {
	return func(o *option) error {
		if ttl < 0 {
			return errors.Errorf("ttl must not be negative: %s", ttl)
		}

		o.ttl = ttl
		return nil
	}
}

// WithFetchTimeout bounds a fetch shared by concurrent loads
func WithFetchTimeout(timeout time.Duration) Option {
	return func(o *option) error {
		if timeout <= 0 {
			return errors.Errorf("fetch timeout must be positive: %s", timeout)
		}

		o.fetchTimeout = timeout
		return nil
	}
}

// WithClock sets the time source
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

// WithBackend shares snapshots through backend
func WithBackend(backend Backend) Option {
	return func(o *option) error {
		o.backend = backend
		return nil
	}
}
