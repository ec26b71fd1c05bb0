package service

import (
	"time"

	"github.com/Laisky/laisky-notion-blog/library/config"
)

const (
	// DefaultCacheTTLSeconds is how long a loaded page is served from cache
	DefaultCacheTTLSeconds = 300
	// DefaultMaxDepth is how many levels of nested blocks are fetched
	DefaultMaxDepth = 3
)

// Settings holds runtime configuration for the pages service.
type Settings struct {
	CacheTTL time.Duration
	MaxDepth int
}

// LoadSettingsFromConfig populates Settings from the shared configuration with defaults.
func LoadSettingsFromConfig() Settings {
	return Settings{
		CacheTTL: time.Duration(config.IntOr("settings.pages.cache_ttl_seconds",
			DefaultCacheTTLSeconds)) * time.Second,
		MaxDepth: config.IntOr("settings.pages.max_depth", DefaultMaxDepth),
	}
}
