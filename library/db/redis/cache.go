package redis

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Laisky/laisky-notion-blog/library/cache"
)

var _ cache.Backend = new(CacheBackend)

// CacheBackend shares cached snapshots between instances through redis
type CacheBackend struct {
	db *DB
}

// NewCacheBackend creates a cache backend on db
func NewCacheBackend(db *DB) (*CacheBackend, error) {
	if db == nil {
		return nil, errors.New("redis db is required")
	}

	return &CacheBackend{db: db}, nil
}

// Get returns the stored value or cache.ErrMiss
func (b *CacheBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.db.rdb.Get(ctx, keyPrefixCache+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrMiss
		}

		return nil, errors.Wrapf(err, "get %q", key)
	}

	return val, nil
}

// Set stores val, a non-positive ttl keeps it until deleted
func (b *CacheBackend) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}

	if err := b.db.rdb.Set(ctx, keyPrefixCache+key, val, ttl).Err(); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}

	return nil
}

// Del removes key
func (b *CacheBackend) Del(ctx context.Context, key string) error {
	if err := b.db.rdb.Del(ctx, keyPrefixCache+key).Err(); err != nil {
		return errors.Wrapf(err, "del %q", key)
	}

	return nil
}
