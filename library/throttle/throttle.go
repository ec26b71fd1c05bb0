// Package throttle limits how often clients may submit comments.
package throttle

import (
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// ErrThrottled is returned when a client exceeds its submission rate
var ErrThrottled = errors.New("deny by throttle")

// CommentThrottleCfg configuration for CommentThrottle
type CommentThrottleCfg struct {
	// EachPerMinute and EachBurst limit a single client
	EachPerMinute, EachBurst int
	// TotalPerMinute and TotalBurst limit all clients together
	TotalPerMinute, TotalBurst int
	// MaxClients bounds how many client limiters are remembered,
	// the least recently seen client is forgotten first
	MaxClients int
}

// CommentThrottle throttle for comment submissions
type CommentThrottle struct {
	sync.Mutex
	cfg     *CommentThrottleCfg
	total   *rate.Limiter
	clients *lru.Cache[string, *rate.Limiter]
}

func perMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(n))
}

// NewCommentThrottle create new CommentThrottle
func NewCommentThrottle(cfg *CommentThrottleCfg) (*CommentThrottle, error) {
	if cfg == nil {
		return nil, errors.New("throttle config is nil")
	}
	if cfg.EachPerMinute <= 0 || cfg.TotalPerMinute <= 0 {
		return nil, errors.New("PerMinute must bigger than 0")
	}
	if cfg.EachBurst <= 0 || cfg.TotalBurst <= 0 {
		return nil, errors.New("burst must bigger than 0")
	}
	if cfg.MaxClients <= 0 {
		return nil, errors.New("MaxClients must bigger than 0")
	}

	clients, err := lru.New[string, *rate.Limiter](cfg.MaxClients)
	if err != nil {
		return nil, errors.Wrap(err, "new client limiter table")
	}

	return &CommentThrottle{
		cfg:     cfg,
		total:   rate.NewLimiter(perMinute(cfg.TotalPerMinute), cfg.TotalBurst),
		clients: clients,
	}, nil
}

// Allow reports whether client may submit now, consuming a token when it may
func (t *CommentThrottle) Allow(client string) bool {
	return t.AllowAt(client, time.Now())
}

// AllowAt is Allow evaluated at now
func (t *CommentThrottle) AllowAt(client string, now time.Time) bool {
	t.Lock()
	defer t.Unlock()

	limiter, ok := t.clients.Get(client)
	if !ok {
		limiter = rate.NewLimiter(perMinute(t.cfg.EachPerMinute), t.cfg.EachBurst)
		t.clients.Add(client, limiter)
	}

	// the client's own limit is checked first so a noisy client
	// does not drain the shared budget
	if !limiter.AllowN(now, 1) {
		return false
	}

	return t.total.AllowN(now, 1)
}
