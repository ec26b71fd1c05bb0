// Package redis stores cached snapshots and queues comment events in redis.
package redis

import (
	"context"

	"github.com/Laisky/errors/v2"
	gredis "github.com/Laisky/go-redis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Laisky/laisky-notion-blog/library/config"
)

// DB is a wrapper for go-redis
type DB struct {
	rdb *redis.Client
	db  *gredis.Utils
}

// NewDB creates a new DB instance
func NewDB(opt *redis.Options) *DB {
	rdb := redis.NewClient(opt)
	rutils := gredis.NewRedisUtils(rdb)

	return &DB{
		rdb: rdb,
		db:  rutils,
	}
}

// NewDBFromConfig connects to the server configured under settings.db.redis
func NewDBFromConfig(ctx context.Context) (*DB, error) {
	db := NewDB(&redis.Options{
		Addr:     config.StringOr("settings.db.redis.addr", "localhost:6379"),
		DB:       config.IntOr("settings.db.redis.db", 0),
		Password: config.StringOr("settings.db.redis.pwd", ""),
	})

	if err := db.rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}

	return db, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	return db.rdb.Close()
}
