package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/types"
)

func sampleData() *types.StructuredData {
	return &types.StructuredData{
		PersonalInfo: types.PersonalInfo{FullName: "Jane Doe"},
		Experience:   []types.Experience{},
		Education:    []types.Education{},
		Skills:       []string{"Go"},
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("gemini-2.0-flash", "text")
	assert.Len(t, a, 64)
	assert.Equal(t, a, CacheKey("gemini-2.0-flash", "text"))
	assert.NotEqual(t, a, CacheKey("gpt-4o-mini", "text"))
	assert.NotEqual(t, a, CacheKey("gemini-2.0-flash", "other text"))
	// model and text boundaries must not collide
	assert.NotEqual(t, CacheKey("ab", "c"), CacheKey("a", "bc"))
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	ctx := context.Background()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.Set(ctx, "k", sampleData())
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", got.PersonalInfo.FullName)

	// returned values are copies
	got.Skills[0] = "mutated"
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, "Go", again.Skills[0])
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "k", sampleData())
	now = now.Add(30 * time.Second)
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_SweepsExpiredEntries(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := range 10000 {
		c.Set(ctx, CacheKey("gemini-2.0-flash", fmt.Sprintf("resume draft %d", i)), sampleData())
	}
	require.Equal(t, 10000, c.Len())

	now = now.Add(48 * time.Hour)
	c.Set(ctx, "fresh", sampleData())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(ctx, "fresh")
	assert.True(t, ok)
}

func TestMemoryCache_SweepIsThrottled(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "a", sampleData())
	now = now.Add(61 * time.Minute)
	c.Set(ctx, "b", sampleData())
	assert.Equal(t, 1, c.Len(), "a expired and was swept")

	now = now.Add(30 * time.Minute)
	c.Set(ctx, "c", sampleData())
	assert.Equal(t, 2, c.Len())
}

func TestNewCache_Disabled(t *testing.T) {
	c := NewCache(context.Background(), config.CacheConfig{Enabled: false}, nil)
	assert.IsType(t, NoopCache{}, c)

	c.Set(context.Background(), "k", sampleData())
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestNewCache_FallsBackToMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewCache(context.Background(), config.CacheConfig{
		Enabled:  true,
		RedisURL: "redis://127.0.0.1:1/0",
		TTL:      time.Minute,
	}, logger)
	assert.IsType(t, &MemoryCache{}, c)
}

func TestRedisCache_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping redis test: REDIS_URL not set")
	}
	ctx := context.Background()

	c, err := NewRedisCache(ctx, url, time.Minute)
	if err != nil {
		t.Skipf("Skipping redis test: %v", err)
	}
	defer func() { _ = c.Close() }()

	key := CacheKey("test-model", time.Now().String())
	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	c.Set(ctx, key, sampleData())
	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, []string{"Go"}, got.Skills)
}
