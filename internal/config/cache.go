package config

import (
	"strings"
	"time"
)

// CacheConfig defines settings for the response cache middleware that sits
// in front of the TMDB proxy.  MovieTTL applies to movie detail responses and
// SearchTTL to search results.  KeyStrategy determines which parts of the
// request contribute to the cache key.  When Redis is unavailable the
// middleware falls back to an in-process store bounded by the same TTLs.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	MovieTTL     time.Duration
	SearchTTL    time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.  Methods are upper-cased.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		MovieTTL:     envDur("CACHE_MOVIE_TTL", 24*time.Hour),
		SearchTTL:    envDur("CACHE_SEARCH_TTL", time.Hour),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "movieclub:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
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
