package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-club/internal/cache"
	"github.com/iliyamo/movie-club/internal/config"
)

// CacheStore keeps encoded responses for the response cache.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration)
}

// NewCacheStore returns a Redis-backed store, or an in-process one when rdb
// is nil.
func NewCacheStore(rdb *redis.Client) CacheStore {
	if rdb != nil {
		return redisStore{rdb: rdb}
	}
	return NewMemoryStore()
}

type redisStore struct{ rdb *redis.Client }

func (s redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	bs, err := s.rdb.Get(ctx, key).Bytes()
	return bs, err == nil
}

func (s redisStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	_ = s.rdb.SetEx(ctx, key, payload, ttl).Err()
}

// memoryStoreEntries caps the in-process fallback, whose keys include
// client-chosen query strings.
const memoryStoreEntries = 1024

// MemoryStore is the in-process fallback used without Redis.
type MemoryStore struct {
	c *cache.TTLCache[string, []byte]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: cache.NewBoundedTTL[string, []byte](time.Hour, memoryStoreEntries)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) { return s.c.Get(key) }

func (s *MemoryStore) Set(_ context.Context, key string, payload []byte, ttl time.Duration) {
	s.c.SetWithTTL(key, payload, ttl)
}

// Sweep drops expired responses.
func (s *MemoryStore) Sweep() int { return s.c.Sweep() }

// captureWriter copies the response body while forwarding it to the client.
// Bodies above limit are not kept.  Only successful responses get the
// Cache-Control header.
type captureWriter struct {
	http.ResponseWriter
	status       int
	buf          bytes.Buffer
	limit        int64
	overflow     bool
	cacheControl string
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	if code == http.StatusOK && cw.cacheControl != "" {
		cw.Header().Set("Cache-Control", cw.cacheControl)
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.overflow {
		if cw.limit > 0 && int64(cw.buf.Len()+len(b)) > cw.limit {
			cw.overflow = true
			cw.buf.Reset()
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// cacheKey builds a stable key honoring the configured prefix and strategy.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{"route", c.Path()}
	case "method_route":
		parts = []string{"method", r.Method, "route", c.Path()}
	case "path_query":
		parts = []string{"path", r.URL.Path, "q", r.URL.RawQuery}
	default: // route_query
		parts = []string{"route", c.Path(), "p", strings.Join(c.ParamValues(), "/"), "q", r.URL.RawQuery}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// encodePayload packs [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdr, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdr)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	copy(out[8:], hdr)
	copy(out[8+len(hdr):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// ResponseCache replays successful responses for ttl and advertises the same
// lifetime to clients through Cache-Control.  Headers and body are stored
// so a hit is byte-identical to the original response.
func ResponseCache(cfg config.CacheConfig, store CacheStore, ttl time.Duration) echo.MiddlewareFunc {
	if !cfg.Enabled || store == nil || ttl <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	cacheControl := "public, max-age=" + strconv.Itoa(int(ttl/time.Second))
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg, c)
			res := c.Response()

			if bs, ok := store.Get(ctx, key); ok {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						for _, v := range vals {
							res.Header().Add(k, v)
						}
					}
					res.Header().Set("X-Cache", "HIT")
					res.WriteHeader(status)
					_, err := res.Write(body)
					return err
				}
			}

			cw := &captureWriter{ResponseWriter: res.Writer, status: http.StatusOK, limit: maxBody, cacheControl: cacheControl}
			res.Writer = cw
			res.Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.overflow {
				return nil
			}
			hdr := res.Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err == nil {
				store.Set(context.Background(), key, payload, ttl)
			}
			return nil
		}
	}
}
