package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware that
// fronts the public balade listings.  When Enabled is false or no
// Redis client is configured, caching is disabled.  Methods lists the
// HTTP methods to cache.  TTL is short on purpose: a cached listing
// must not advertise seats for long after they are gone.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 15*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1048576),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
