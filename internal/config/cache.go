package config

import "time"

// CacheConfig defines settings for the public-browse response cache.
// Caching is disabled when Enabled is false or no Redis client is
// available.  Only successful GET responses are cached.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads the CACHE_* environment variables.  The
// default 30 second TTL keeps store listings fresh enough while
// shielding the database from browse bursts.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 30*time.Second),
		Prefix:  envStr("CACHE_PREFIX", "cache"),
	}
}
