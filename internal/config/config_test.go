package config

import (
	"testing"
	"time"
)

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	if !cfg.Enabled || !cfg.Methods["GET"] || len(cfg.Methods) != 1 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.MovieTTL != 24*time.Hour || cfg.SearchTTL != time.Hour {
		t.Fatalf("ttl movie=%v search=%v", cfg.MovieTTL, cfg.SearchTTL)
	}
}

func TestLoadCacheConfigFromEnv(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "off")
	t.Setenv("CACHE_METHODS", " get, head ,")
	t.Setenv("CACHE_SEARCH_TTL", "90s")
	t.Setenv("CACHE_MOVIE_TTL", "not a duration")

	cfg := LoadCacheConfig()
	if cfg.Enabled {
		t.Fatal("cache should be disabled")
	}
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || len(cfg.Methods) != 2 {
		t.Fatalf("methods = %v", cfg.Methods)
	}
	if cfg.SearchTTL != 90*time.Second {
		t.Fatalf("search ttl = %v", cfg.SearchTTL)
	}
	if cfg.MovieTTL != 24*time.Hour {
		t.Fatalf("unparsable ttl should fall back, got %v", cfg.MovieTTL)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-2")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "30s")
	t.Setenv("RATE_LIMIT_TTL", "1m")

	rl := LoadRateLimitConfig()
	if rl.Capacity != 1 || rl.RefillTokens != 1 {
		t.Fatalf("capacity=%d refill=%d", rl.Capacity, rl.RefillTokens)
	}
	if rl.TTL != 150*time.Second {
		t.Fatalf("ttl = %v, want five refill intervals", rl.TTL)
	}
}

func TestRedisDisabled(t *testing.T) {
	t.Setenv("REDIS_DISABLED", "true")
	if NewRedisClient() != nil {
		t.Fatal("expected nil client")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "amqp://b", "amqp://c"); got != "amqp://b" {
		t.Fatalf("got %q", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Fatalf("got %q", got)
	}
}
