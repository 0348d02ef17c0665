package analysis

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/types"
)

const cacheKeyPrefix = "resume-builder:analysis:"

// Cache stores analysis results keyed by CacheKey
type Cache interface {
	Get(ctx context.Context, key string) (*types.StructuredData, bool)
	Set(ctx context.Context, key string, data *types.StructuredData)
	Close() error
}

// CacheKey is the hex BLAKE2b-256 digest of model and input text
func CacheKey(model, text string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// NewCache builds the configured cache. Redis is used when a URL is set and
// the server answers a ping; otherwise results are kept in memory.
func NewCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) Cache {
	if !cfg.Enabled {
		return NoopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.RedisURL != "" {
		rc, err := NewRedisCache(ctx, cfg.RedisURL, cfg.TTL)
		if err == nil {
			logger.Info("Analysis cache using redis")
			return rc
		}
		logger.Warn("redis unavailable, falling back to in-memory cache", "error", err)
	}
	return NewMemoryCache(cfg.TTL)
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*types.StructuredData, bool) { return nil, false }
func (NoopCache) Set(context.Context, string, *types.StructuredData)        {}
func (NoopCache) Close() error                                               { return nil }

type memoryEntry struct {
	data      *types.StructuredData
	expiresAt time.Time
}

// MemoryCache is an in-process TTL map. Expired entries are swept by Set
// at most once per ttl.
type MemoryCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	entries   map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryCache creates a MemoryCache. A non-positive ttl keeps entries forever.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*types.StructuredData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return cloneStructured(entry.data), true
}

func (c *MemoryCache) Set(_ context.Context, key string, data *types.StructuredData) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry := memoryEntry{data: cloneStructured(data)}
	if c.ttl > 0 {
		entry.expiresAt = now.Add(c.ttl)
		if now.Sub(c.lastSweep) >= c.ttl {
			c.sweep(now)
		}
	}
	c.entries[key] = entry
}

// sweep drops every expired entry. The caller holds mu.
func (c *MemoryCache) sweep(now time.Time) {
	for key, entry := range c.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.lastSweep = now
}

// Len reports the number of stored entries, expired or not
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

// RedisCache stores JSON-encoded results in redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to url and verifies the connection
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*types.StructuredData, bool) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "redis cache read failed", "error", err)
		}
		return nil, false
	}
	var data types.StructuredData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false
	}
	return &data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, data *types.StructuredData) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "redis cache write failed", "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func cloneStructured(data *types.StructuredData) *types.StructuredData {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return data
	}
	var out types.StructuredData
	if err := json.Unmarshal(raw, &out); err != nil {
		return data
	}
	return &out
}
