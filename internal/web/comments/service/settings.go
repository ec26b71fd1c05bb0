package service

import (
	"time"

	"github.com/Laisky/laisky-notion-blog/library/config"
)

const (
	// DefaultCacheTTLSeconds is how long a page's comment list is served from cache
	DefaultCacheTTLSeconds = 60
	// DefaultSubmitTimeoutMs bounds one comment submission
	DefaultSubmitTimeoutMs = 10000
)

// Settings holds runtime configuration for the comments service.
type Settings struct {
	CacheTTL      time.Duration
	SubmitTimeout time.Duration
}

// LoadSettingsFromConfig populates Settings from the shared configuration with defaults.
func LoadSettingsFromConfig() Settings {
	return Settings{
		CacheTTL: time.Duration(config.IntOr("settings.comments.cache_ttl_seconds",
			DefaultCacheTTLSeconds)) * time.Second,
		SubmitTimeout: time.Duration(config.IntOr("settings.comments.submit_timeout_ms",
			DefaultSubmitTimeoutMs)) * time.Millisecond,
	}
}
