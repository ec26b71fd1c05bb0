// Package cache provides a keyed snapshot cache.
//
// Each key holds at most one snapshot. A snapshot is replaced as a whole,
// so readers always observe either the previous or the next value.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Laisky/laisky-notion-blog/library/log"
)

// Fetcher loads the value for key from its source of truth.
type Fetcher[T any] func(ctx context.Context, key string) (T, error)

// Backend is an optional shared store behind the in-process snapshots.
//
// Get must return ErrMiss when the key does not exist or has expired.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Snapshot is an immutable value fetched at FetchedAt.
type Snapshot[T any] struct {
	Key       string    `json:"key"`
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
	// seq orders fetches by their start, later fetches win.
	// Snapshots read from the backend have seq 0.
	seq uint64
}

// Stale reports whether the snapshot is older than ttl at now.
// A non-positive ttl never expires.
func (s Snapshot[T]) Stale(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}

	return now.Sub(s.FetchedAt) >= ttl
}

type entry[T any] struct {
	snap *Snapshot[T]
	subs map[uint64]chan Snapshot[T]
}

// Cache holds snapshots keyed by request identity.
type Cache[T any] struct {
	name    string
	fetch   Fetcher[T]
	ttl          time.Duration
	fetchTimeout time.Duration
	clock        func() time.Time
	logger       logSDK.Logger
	backend      Backend

	group singleflight.Group

	mu      sync.Mutex
	seq     uint64
	subID   uint64
	entries map[string]*entry[T]
}

// New creates a cache named name that loads missing keys with fetch.
func New[T any](name string, fetch Fetcher[T], opts ...Option) (*Cache[T], error) {
	if name == "" {
		return nil, errors.New("cache name is required")
	}
	if fetch == nil {
		return nil, errors.New("fetcher is required")
	}

	opt, err := applyOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "apply opts")
	}
	if opt.logger == nil {
		opt.logger = log.Logger.Named("cache_" + name)
	}

	return &Cache[T]{
		name:         name,
		fetch:        fetch,
		ttl:          opt.ttl,
		fetchTimeout: opt.fetchTimeout,
		clock:        opt.clock,
		logger:       opt.logger,
		backend:      opt.backend,
		entries:      make(map[string]*entry[T]),
	}, nil
}

// Peek returns the current snapshot of key without fetching.
func (c *Cache[T]) Peek(key string) (Snapshot[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok || ent.snap == nil {
		return Snapshot[T]{}, false
	}

	return *ent.snap, true
}

// Load returns a fresh snapshot of key.
//
// The in-process snapshot is used while it is within ttl, then the backend,
// then the fetcher. Concurrent loads of one key share a single fetch, which
// is not cancelled with ctx but bounded by the fetch timeout.
func (c *Cache[T]) Load(ctx context.Context, key string) (Snapshot[T], error) {
	if snap, ok := c.Peek(key); ok && !snap.Stale(c.clock(), c.ttl) {
		cacheHits.WithLabelValues(c.name, "memory").Inc()
		return snap, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// the fetch is shared by every waiter, so it must outlive the first caller
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		if snap, ok := c.loadFromBackend(fctx, key); ok {
			cacheHits.WithLabelValues(c.name, "backend").Inc()
			return snap, nil
		}

		cacheMisses.WithLabelValues(c.name).Inc()
		return c.Revalidate(fctx, key)
	})

	select {
	case <-ctx.Done():
		return Snapshot[T]{}, errors.Wrapf(ctx.Err(), "wait for load %q", key)
	case res := <-ch:
		if res.Err != nil {
			return Snapshot[T]{}, errors.Wrapf(res.Err, "load %q", key)
		}

		return res.Val.(Snapshot[T]), nil
	}
}

// Revalidate fetches key from the source regardless of the current snapshot,
// swaps the result in and notifies subscribers.
//
// On failure the previous snapshot stays in place.
func (c *Cache[T]) Revalidate(ctx context.Context, key string) (Snapshot[T], error) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	val, err := c.fetch(ctx, key)
	if err != nil {
		fetchErrors.WithLabelValues(c.name).Inc()
		return Snapshot[T]{}, errors.Wrapf(err, "fetch %q", key)
	}

	snap := Snapshot[T]{
		Key:       key,
		Value:     val,
		FetchedAt: c.clock(),
		seq:       seq,
	}

	current, stored := c.store(snap)
	if stored {
		c.saveToBackend(ctx, snap)
	}

	return current, nil
}

// Invalidate drops the snapshot of key, the next Load fetches again.
func (c *Cache[T]) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	if ent, ok := c.entries[key]; ok {
		ent.snap = nil
		if len(ent.subs) == 0 {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()

	if c.backend != nil {
		if err := c.backend.Del(ctx, c.backendKey(key)); err != nil {
			return errors.Wrapf(err, "delete %q from backend", key)
		}
	}

	return nil
}

// Subscribe returns a channel that receives every snapshot stored for key
// after the call, and a func to stop the subscription.
//
// Slow receivers only see the latest snapshot.
func (c *Cache[T]) Subscribe(key string) (<-chan Snapshot[T], func()) {
	ch := make(chan Snapshot[T], 1)

	c.mu.Lock()
	c.subID++
	id := c.subID
	ent := c.entryLocked(key)
	ent.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			if ent, ok := c.entries[key]; ok {
				delete(ent.subs, id)
				if len(ent.subs) == 0 && ent.snap == nil {
					delete(c.entries, key)
				}
			}
		})
	}

	return ch, cancel
}

// store swaps snap in unless a snapshot from a later fetch is already present.
// It returns the snapshot now held for the key and whether snap was stored.
func (c *Cache[T]) store(snap Snapshot[T]) (Snapshot[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := c.entryLocked(snap.Key)
	if ent.snap != nil && ent.snap.seq > snap.seq {
		c.logger.Debug("drop snapshot from an earlier fetch",
			zap.String("key", snap.Key))
		return *ent.snap, false
	}

	ent.snap = &snap
	for _, sub := range ent.subs {
		select {
		case <-sub:
		default:
		}
		sub <- snap
	}

	return snap, true
}

func (c *Cache[T]) entryLocked(key string) *entry[T] {
	ent, ok := c.entries[key]
	if !ok {
		ent = &entry[T]{subs: make(map[uint64]chan Snapshot[T])}
		c.entries[key] = ent
	}

	return ent
}

func (c *Cache[T]) backendKey(key string) string {
	return c.name + ":" + key
}

func (c *Cache[T]) loadFromBackend(ctx context.Context, key string) (Snapshot[T], bool) {
	if c.backend == nil {
		return Snapshot[T]{}, false
	}

	raw, err := c.backend.Get(ctx, c.backendKey(key))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn("read cache backend", zap.Error(err), zap.String("key", key))
		}
		return Snapshot[T]{}, false
	}

	var snap Snapshot[T]
	if err = json.Unmarshal(raw, &snap); err != nil {
		c.logger.Warn("decode cached snapshot", zap.Error(err), zap.String("key", key))
		return Snapshot[T]{}, false
	}
	if snap.Stale(c.clock(), c.ttl) {
		return Snapshot[T]{}, false
	}

	// a stored copy never outranks a fetch of this process
	snap.seq = 0
	current, stored := c.store(snap)
	if !stored && current.Stale(c.clock(), c.ttl) {
		return Snapshot[T]{}, false
	}

	return current, true
}

func (c *Cache[T]) saveToBackend(ctx context.Context, snap Snapshot[T]) {
	if c.backend == nil {
		return
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("encode snapshot", zap.Error(err), zap.String("key", snap.Key))
		return
	}

	if err = c.backend.Set(ctx, c.backendKey(snap.Key), raw, c.ttl); err != nil {
		c.logger.Warn("write cache backend", zap.Error(err), zap.String("key", snap.Key))
	}
}
