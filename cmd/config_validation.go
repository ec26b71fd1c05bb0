package cmd

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"

	"github.com/Laisky/laisky-notion-blog/internal/web"
	"github.com/Laisky/laisky-notion-blog/library/notion"
)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

// validateStartupConfig validates startup configuration from the shared config source.
// It returns an error when any configured value is malformed or violates constraints.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

// validateStartupConfigWithGetter validates startup configuration via a key-value getter.
// It accepts a value getter and returns nil when all configured values are valid.
func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	validationErrs := make([]string, 0)

	validateNotionConfig(get, &validationErrs)
	validateCommentsConfig(get, &validationErrs)
	validatePagesConfig(get, &validationErrs)
	validateCacheConfig(get, &validationErrs)
	validateRedisConfig(get, &validationErrs)
	validateWebSiteConfig(get, &validationErrs)

	if len(validationErrs) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(validationErrs, "\n - "))
}

// validateNotionConfig validates the Notion api settings.
func validateNotionConfig(get configGetter, errs *[]string) {
	validateOptionalStringNonEmpty(get, "settings.notion.token", errs)
	validateOptionalURL(get, "settings.notion.api", errs)
	validateOptionalStringNonEmpty(get, "settings.notion.version", errs)
	validateOptionalStringNonEmpty(get, "settings.notion.slug_property", errs)
	validateOptionalIntMin(get, "settings.notion.timeout_ms", 1, errs)
	validateOptionalFloatPositive(get, "settings.notion.rate_per_sec", errs)
	validateOptionalIntMin(get, "settings.notion.burst", 1, errs)

	if raw := get("settings.notion.database_id"); raw != nil {
		id, parseErr := parseStrictString(raw)
		if parseErr != nil || !notion.IsID(id) {
			appendValidationError(errs, "settings.notion.database_id must be a notion id")
		}
	}
}

// validateCommentsConfig validates comment caching, submission and throttle settings.
func validateCommentsConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, "settings.comments.cache_ttl_seconds", 0, errs)
	validateOptionalIntMin(get, "settings.comments.submit_timeout_ms", 1, errs)
	validateOptionalIntMin(get, "settings.comments.throttle.per_minute", 1, errs)
	validateOptionalIntMin(get, "settings.comments.throttle.burst", 1, errs)
	validateOptionalIntMin(get, "settings.comments.throttle.total_per_minute", 1, errs)
	validateOptionalIntMin(get, "settings.comments.throttle.total_burst", 1, errs)
	validateOptionalIntMin(get, "settings.comments.throttle.max_clients", 1, errs)
	validateOptionalBool(get, "settings.comments.events.enabled", errs)
}

// validatePagesConfig validates page loading settings.
func validatePagesConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, "settings.pages.cache_ttl_seconds", 0, errs)
	validateOptionalIntMin(get, "settings.pages.max_depth", 1, errs)
	validateOptionalBool(get, "settings.pages.number_headings", errs)
}

// validateCacheConfig validates the shared cache backend selection.
func validateCacheConfig(get configGetter, errs *[]string) {
	if raw := get("settings.cache.backend"); raw != nil {
		backend, parseErr := parseStrictString(raw)
		switch {
		case parseErr != nil:
			appendValidationError(errs, "settings.cache.backend must be a string")
		case backend != web.CacheBackendMemory && backend != web.CacheBackendRedis && backend != web.CacheBackendSQL:
			appendValidationError(errs, "settings.cache.backend must be one of [%s, %s, %s]",
				web.CacheBackendMemory, web.CacheBackendRedis, web.CacheBackendSQL)
		}
	}

	validateOptionalStringNonEmpty(get, "settings.cache.sql.dsn", errs)
}

// validateRedisConfig validates redis-related startup configuration values.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateRedisConfig(get configGetter, errs *[]string) {
	validateOptionalStringNonEmpty(get, "settings.db.redis.addr", errs)
	validateOptionalIntMin(get, "settings.db.redis.db", 0, errs)
}

// validateWebSiteConfig validates allowed origins and site settings.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateWebSiteConfig(get configGetter, errs *[]string) {
	if raw := get("settings.web.allowed_origins"); raw != nil {
		origins, ok := raw.([]any)
		if !ok {
			if strs, isStrs := raw.([]string); isStrs {
				for _, s := range strs {
					origins = append(origins, s)
				}
				ok = true
			}
		}
		if !ok {
			appendValidationError(errs, "settings.web.allowed_origins must be a list of hosts")
		}
		for i, o := range origins {
			host, parseErr := parseStrictString(o)
			if parseErr != nil || !isValidHost(host) {
				appendValidationError(errs, "settings.web.allowed_origins[%d] must be a valid host", i)
			}
		}
	}

	rawSites := get("settings.web.sites")
	if rawSites == nil {
		return
	}

	sites := toStringMap(rawSites)
	if sites == nil {
		appendValidationError(errs, "settings.web.sites must be an object")
		return
	}

	for siteKey, siteVal := range sites {
		siteCfg := toStringMap(siteVal)
		if siteCfg == nil {
			appendValidationError(errs, "settings.web.sites.%s must be an object", siteKey)
			continue
		}

		if hostVal, ok := siteCfg["host"]; ok {
			host, parseErr := parseStrictString(hostVal)
			if parseErr != nil || !isValidHost(host) {
				appendValidationError(errs, "settings.web.sites.%s.host must be a valid host", siteKey)
			}
		}

		if schemeVal, ok := siteCfg["scheme"]; ok {
			scheme, parseErr := parseStrictString(schemeVal)
			if parseErr != nil {
				appendValidationError(errs, "settings.web.sites.%s.scheme must be a string", siteKey)
			} else if normalized := strings.ToLower(strings.TrimSpace(scheme)); normalized != web.SchemeLight && normalized != web.SchemeDark {
				appendValidationError(errs, "settings.web.sites.%s.scheme must be one of [light, dark]", siteKey)
			}
		}

		if defaultVal, ok := siteCfg["default"]; ok {
			if _, valid := parseStrictBool(defaultVal); !valid {
				appendValidationError(errs, "settings.web.sites.%s.default must be a boolean", siteKey)
			}
		}
	}
}

// toStringMap converts a decoded yaml object into a string keyed map, nil when it is not an object.
func toStringMap(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case map[any]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[fmt.Sprint(key)] = val
		}
		return result
	default:
		return nil
	}
}

// validateOptionalBool validates an optionally configured boolean key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalBool(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	if _, ok := parseStrictBool(raw); !ok {
		appendValidationError(errs, "%s must be a boolean", key)
	}
}

// validateOptionalIntMin validates an optionally configured integer key with a minimum constraint.
// It accepts a getter, the key, a minimum value, and an error collector pointer and appends validation errors.
func validateOptionalIntMin(get configGetter, key string, min int, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalFloatPositive validates an optionally configured positive float key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalFloatPositive(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictFloat(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a float", key)
		return
	}

	if value <= 0 {
		appendValidationError(errs, "%s must be > 0", key)
	}
}

// validateOptionalURL validates an optionally configured absolute URL key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalURL(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string URL", key)
		return
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		appendValidationError(errs, "%s must not be empty", key)
		return
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		appendValidationError(errs, "%s must be a valid absolute URL", key)
	}
}

// validateOptionalStringNonEmpty validates an optionally configured non-empty string key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalStringNonEmpty(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	if strings.TrimSpace(value) == "" {
		appendValidationError(errs, "%s must not be empty", key)
	}
}

// parseStrictBool parses a value as boolean using strict conversion rules.
// It accepts a raw value and returns the parsed boolean and whether parsing succeeded.
func parseStrictBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		if math.Trunc(v) != v {
			return false, false
		}
		return int64(v) != 0, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false, false
		}
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

// parseStrictInt parses a value as a strict integer.
// It accepts a raw value and returns the parsed int and an error when parsing fails.
func parseStrictInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if math.Trunc(v) != v {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty integer string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, errors.Wrap(err, "atoi")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported int type %T", value)
	}
}

// parseStrictFloat parses a value as a strict floating-point number.
// It accepts a raw value and returns the parsed float64 and an error when parsing fails.
func parseStrictFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty float string")
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, errors.Wrap(err, "parse float")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported float type %T", value)
	}
}

// parseStrictString parses a value as a strict string.
// It accepts a raw value and returns the parsed string and an error when parsing fails.
func parseStrictString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.Errorf("unsupported string type %T", value)
	}
}

// isValidHost validates a host string without scheme or path components.
// It accepts a host string and returns true when the host is syntactically acceptable.
func isValidHost(host string) bool {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "://") || strings.Contains(trimmed, "/") {
		return false
	}
	return true
}

// appendValidationError appends a formatted validation error to the collector.
// It accepts an error slice pointer, a format string, and format arguments, and has no return value.
func appendValidationError(errs *[]string, format string, args ...any) {
	if errs == nil {
		return
	}
	*errs = append(*errs, fmt.Sprintf(format, args...))
}
