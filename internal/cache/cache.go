// Package cache stores aggregate search results in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobsearch-engine/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "jobsearch:result:"

type ResultCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func New(rdb redis.UniversalClient, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ResultCache{rdb: rdb, ttl: ttl}
}

// Open parses redisURL and verifies connectivity.
func Open(ctx context.Context, redisURL string, ttl time.Duration) (*ResultCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return New(client, ttl), nil
}

func Key(q domain.SearchQuery) string {
	sum := sha256.Sum256([]byte(q.Key()))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached result for q. A miss is (zero, false, nil).
func (c *ResultCache) Get(ctx context.Context, q domain.SearchQuery) (domain.AggregateResult, bool, error) {
	b, err := c.rdb.Get(ctx, Key(q)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.AggregateResult{}, false, nil
	}
	if err != nil {
		return domain.AggregateResult{}, false, err
	}
	var res domain.AggregateResult
	if err := json.Unmarshal(b, &res); err != nil {
		return domain.AggregateResult{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	return res, true, nil
}

func (c *ResultCache) Set(ctx context.Context, q domain.SearchQuery, res domain.AggregateResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(q), b, c.ttl).Err()
}

func (c *ResultCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *ResultCache) Close() error {
	return c.rdb.Close()
}
