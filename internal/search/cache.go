package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/capitalize-ai/investor-finder/internal/model"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
	"github.com/capitalize-ai/investor-finder/pkg/metrics"
)

// Cache stores serialized search results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis server at rawURL and verifies it with a
// PING.
func NewRedisCache(ctx context.Context, rawURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Get returns the cached value; ok is false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value under key for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedClient serves repeated searches from a Cache. Cache failures are
// logged and fall through to the wrapped client.
type CachedClient struct {
	Client
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

// WithCache wraps client with a result cache.
func WithCache(client Client, cache Cache, ttl time.Duration, log *logger.Logger) *CachedClient {
	return &CachedClient{Client: client, cache: cache, ttl: ttl, log: log.Named("search.cache")}
}

// Search returns cached results for query when present.
func (c *CachedClient) Search(ctx context.Context, query string, n int) ([]model.SearchResult, error) {
	key := cacheKey(c.Name(), "q", query, fmt.Sprint(n))
	return c.cached(ctx, key, func() ([]model.SearchResult, error) {
		return c.Client.Search(ctx, query, n)
	})
}

// SearchInvestors returns cached results for q when present.
func (c *CachedClient) SearchInvestors(ctx context.Context, q model.InvestorQuery, n int) ([]model.SearchResult, error) {
	key := cacheKey(c.Name(), "investors", strings.Join(q.Sectors, ","), q.Stage, q.Location, fmt.Sprint(n))
	return c.cached(ctx, key, func() ([]model.SearchResult, error) {
		return c.Client.SearchInvestors(ctx, q, n)
	})
}

// Cleanup closes the cache and the wrapped client.
func (c *CachedClient) Cleanup(ctx context.Context) error {
	return errors.Join(c.Client.Cleanup(ctx), c.cache.Close())
}

func (c *CachedClient) cached(ctx context.Context, key string, fetch func() ([]model.SearchResult, error)) ([]model.SearchResult, error) {
	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		metrics.SearchCacheTotal.WithLabelValues("error").Inc()
		c.log.Warn("search cache read failed", zap.Error(err))
	} else if ok {
		var results []model.SearchResult
		if err := json.Unmarshal(raw, &results); err == nil {
			metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
			return results, nil
		}
	}
	metrics.SearchCacheTotal.WithLabelValues("miss").Inc()

	results, err := fetch()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return results, nil
	}

	raw, err := json.Marshal(results)
	if err == nil {
		err = c.cache.Set(ctx, key, raw, c.ttl)
	}
	if err != nil {
		c.log.Warn("search cache write failed", zap.Error(err))
	}
	return results, nil
}

func cacheKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "search:v1:" + hex.EncodeToString(sum[:])
}
