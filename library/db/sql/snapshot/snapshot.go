// Package snapshot stores cached snapshots in a sql table.
package snapshot

import (
	"context"
	"database/sql"
	"regexp"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/laisky-notion-blog/library/cache"
)

var (
	_ cache.Backend = new(Store)

	regexpKey       = regexp.MustCompile(`^[a-zA-Z0-9_\-./:]{1,256}$`)
	regexpTableName = regexp.MustCompile(`^[a-zA-Z0-9_]{1,64}$`)
)

// Item is a stored snapshot
type Item struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
	// ExpireAt is zero for items that never expire
	ExpireAt time.Time
}

// Store is a snapshot table usable as a cache backend
type Store struct {
	opt *option
	db  *sql.DB
}

type option struct {
	tableName string
	clock     func() time.Time
}

// Option is a function that configures the store
type Option func(*option) error

func applyOpts(opts ...Option) (*option, error) {
	// fill default
	o := &option{
		tableName: "snapshots",
		clock:     time.Now,
	}

	// apply opts
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return o, nil
}

// WithTableName is a option to set table name
func WithTableName(tableName string) Option {
	return func(o *option) error {
		if !regexpTableName.MatchString(tableName) {
			return errors.Errorf("invalid table name: %s", tableName)
		}
		o.tableName = tableName
		return nil
	}
}

// WithClock is a option to set the time source of expiration
func WithClock(clock func() time.Time) Option {
	return func(o *option) error {
		if clock == nil {
			return errors.New("clock cannot be nil")
		}
		o.clock = clock
		return nil
	}
}

// New create a new store, the table is created when missing
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	opt, err := applyOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "apply opts")
	}

	s := &Store{
		opt: opt,
		db:  db,
	}

	if err := s.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setup snapshot table")
	}

	return s, nil
}

func (s *Store) setup(ctx context.Context) error {
	stmt := `
CREATE TABLE IF NOT EXISTS ` + s.opt.tableName + ` (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  created_at TIMESTAMP NOT NULL,
  expire_at TIMESTAMP NULL
)`

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "create snapshot table")
	}

	return nil
}

func validKey(key string) error {
	if !regexpKey.MatchString(key) {
		return errors.Errorf("invalid key: %s", key)
	}

	return nil
}

// Set stores val under key, a non-positive ttl never expires
func (s *Store) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := validKey(key); err != nil {
		return errors.WithStack(err)
	}

	now := s.opt.clock().UTC()
	var expireAt sql.NullTime
	if ttl > 0 {
		expireAt = sql.NullTime{Time: now.Add(ttl), Valid: true}
	}

	stmt := `
INSERT INTO ` + s.opt.tableName + ` (key, value, created_at, expire_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT(key)
DO UPDATE SET value = EXCLUDED.value, created_at = EXCLUDED.created_at, expire_at = EXCLUDED.expire_at`

	if _, err := s.db.ExecContext(ctx, stmt, key, val, now, expireAt); err != nil {
		return errors.Wrap(err, "upsert snapshot")
	}

	return nil
}

// Load returns the stored item. Missing and expired keys yield cache.ErrMiss,
// expired rows are deleted on the way.
func (s *Store) Load(ctx context.Context, key string) (*Item, error) {
	if err := validKey(key); err != nil {
		return nil, errors.WithStack(err)
	}

	var (
		item     Item
		expireAt sql.NullTime
	)
	stmt := `SELECT key, value, created_at, expire_at FROM ` + s.opt.tableName + ` WHERE key = $1 LIMIT 1`
	err := s.db.QueryRowContext(ctx, stmt, key).Scan(&item.Key, &item.Value, &item.CreatedAt, &expireAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cache.ErrMiss
		}
		return nil, errors.Wrap(err, "query snapshot")
	}

	if expireAt.Valid {
		item.ExpireAt = expireAt.Time
		if !s.opt.clock().Before(item.ExpireAt) {
			if err = s.Del(ctx, key); err != nil {
				return nil, errors.Wrap(err, "delete expired snapshot")
			}
			return nil, cache.ErrMiss
		}
	}

	return &item, nil
}

// Get returns the stored value or cache.ErrMiss
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	item, err := s.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	return item.Value, nil
}

// Del removes the key from the store.
func (s *Store) Del(ctx context.Context, key string) error {
	stmt := `DELETE FROM ` + s.opt.tableName + ` WHERE key = $1`
	if _, err := s.db.ExecContext(ctx, stmt, key); err != nil {
		return errors.Wrap(err, "delete snapshot")
	}

	return nil
}

// Purge deletes every expired row and returns how many were removed
func (s *Store) Purge(ctx context.Context) (int64, error) {
	stmt := `DELETE FROM ` + s.opt.tableName + ` WHERE expire_at IS NOT NULL AND expire_at <= $1`
	res, err := s.db.ExecContext(ctx, stmt, s.opt.clock().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "purge expired snapshots")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "count purged snapshots")
	}

	return n, nil
}
