package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"SignalDesk/internal/logger"
	"SignalDesk/internal/model"
)

// Cache stores JSON-encodable provider responses for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

// MemoryCache is an in-process TTL cache.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]memEntry
	now  func() time.Time
	stop chan struct{}
}

type memEntry struct {
	data    []byte
	expires time.Time
}

// NewMemoryCache creates a cache that sweeps expired entries every interval.
// A non-positive interval disables the sweeper.
func NewMemoryCache(interval time.Duration) *MemoryCache {
	c := &MemoryCache{
		data: make(map[string]memEntry),
		now:  time.Now,
		stop: make(chan struct{}),
	}
	if interval > 0 {
		go c.cleanupLoop(interval)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expires) {
		return false, nil
	}
	if err := json.Unmarshal(e.data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	c.mu.Lock()
	c.data[key] = memEntry{data: data, expires: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Close stops the sweeper.
func (c *MemoryCache) Close() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *MemoryCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.data {
		if now.After(e.expires) {
			delete(c.data, k)
		}
	}
}

// RedisCache stores entries in Redis under a key prefix.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client, prefix: "signaldesk:market:"}
}

func (r *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// CachedFetcher serves repeated lookups from a Cache to stay under the
// provider's rate limit. Cache failures degrade to a direct fetch.
type CachedFetcher struct {
	Fetcher
	cache Cache
	ttl   time.Duration
}

// NewCachedFetcher decorates f.
func NewCachedFetcher(f Fetcher, cache Cache, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{Fetcher: f, cache: cache, ttl: ttl}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() + "+cache" }

func (c *CachedFetcher) lookup(ctx context.Context, key string, dst any) bool {
	hit, err := c.cache.Get(ctx, key, dst)
	if err != nil {
		logger.Warn(ctx, "cache get failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (c *CachedFetcher) store(ctx context.Context, key string, v any) {
	if err := c.cache.Set(ctx, key, v, c.ttl); err != nil {
		logger.Warn(ctx, "cache set failed", "key", key, "error", err)
	}
}

func (c *CachedFetcher) FetchCoin(ctx context.Context, id string) (*model.CoinData, error) {
	key := "coin:" + id
	var cached model.CoinData
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	coin, err := c.Fetcher.FetchCoin(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, coin)
	return coin, nil
}

func (c *CachedFetcher) FetchTopCoins(ctx context.Context, limit int) ([]model.CoinData, error) {
	key := "top:" + strconv.Itoa(limit)
	var cached []model.CoinData
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	coins, err := c.Fetcher.FetchTopCoins(ctx, limit)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, coins)
	return coins, nil
}

func (c *CachedFetcher) SearchCoin(ctx context.Context, query string) (string, error) {
	key := "search:" + strings.ToLower(query)
	var cached string
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	id, err := c.Fetcher.SearchCoin(ctx, query)
	if err != nil {
		return "", err
	}
	c.store(ctx, key, id)
	return id, nil
}
