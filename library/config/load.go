// Package config loads settings into the shared configuration.
package config

import (
	"path/filepath"
	"strconv"
	"strings"

	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-notion-blog/library/log"
)

// LoadFromFile loads the yaml settings at cfgPath, panics if the file is unreadable.
func LoadFromFile(cfgPath string) {
	gconfig.Shared.Set("cfg_dir", filepath.Dir(cfgPath))
	if err := gconfig.Shared.LoadFromFile(cfgPath); err != nil {
		log.Logger.Panic("load configuration",
			zap.Error(err),
			zap.String("config", cfgPath))
	}

	log.Logger.Info("load configuration",
		zap.String("config", cfgPath))
}

// IntOr returns the integer at key, or def when the key is absent or malformed.
func IntOr(key string, def int) int {
	switch v := gconfig.S.Get(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
		return def
	default:
		return def
	}
}

// StringOr returns the string at key, or def when the key is empty.
func StringOr(key, def string) string {
	if v := gconfig.S.GetString(key); v != "" {
		return v
	}

	return def
}

// FloatOr returns the number at key, or def when the key is absent or malformed.
func FloatOr(key string, def float64) float64 {
	switch v := gconfig.S.Get(key).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return parsed
		}
		return def
	default:
		return def
	}
}
