package cache

import "github.com/Laisky/errors/v2"

// ErrMiss is returned by a Backend when the key is not stored
var ErrMiss = errors.New("cache miss")
