package notion

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	// defaultVersion is the Notion-Version header the client is written against
	defaultVersion = "2022-06-28"
	// Notion allows an average of three requests per second per integration
	defaultRate    = 3
	defaultBurst   = 3
	defaultTimeout = 20 * time.Second
)

type option struct {
	baseURL string
	version string
	timeout time.Duration
	rate    float64
	burst   int
	httpcli *http.Client
	logger  logSDK.Logger
}

// Option configures the client
type Option func(*option) error

func applyOpts(opts ...Option) (*option, error) {
	// fill default
	o := &option{
		baseURL: defaultBaseURL,
		version: defaultVersion,
		timeout: defaultTimeout,
		rate:    defaultRate,
		burst:   defaultBurst,
	}

	// apply opts
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return o, nil
}

// WithBaseURL sets the api root, e.g. https://api.notion.com/v1
func WithBaseURL(base string) Option {
	return func(o *option) error {
		u, err := url.Parse(base)
		if err != nil {
			return errors.Wrapf(err, "parse base url %q", base)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.Errorf("base url must be http or https: %q", base)
		}

		o.baseURL = strings.TrimRight(base, "/")
		return nil
	}
}

// WithVersion sets the Notion-Version header
func WithVersion(version string) Option {
	return func(o *option) error {
		if strings.TrimSpace(version) == "" {
			return errors.New("version cannot be empty")
		}

		o.version = version
		return nil
	}
}

// WithTimeout sets the timeout of each http request
func WithTimeout(timeout time.Duration) Option {
	return func(o *option) error {
		if timeout <= 0 {
			return errors.Errorf("timeout must be positive: %s", timeout)
		}

		o.timeout = timeout
		return nil
	}
}

// WithRateLimit sets the sustained request rate and burst
func WithRateLimit(perSec float64, burst int) Option {
	return func(o *option) error {
		if perSec <= 0 || burst <= 0 {
			return errors.Errorf("invalid rate limit %v/%d", perSec, burst)
		}

		o.rate = perSec
		o.burst = burst
		return nil
	}
}

// WithHTTPClient replaces the default http client
func WithHTTPClient(cli *http.Client) Option {
	return func(o *option) error {
		if cli == nil {
			return errors.New("http client cannot be nil")
		}

		o.httpcli = cli
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
