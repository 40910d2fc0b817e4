// Package cache is the optional Redis-backed result cache for the
// search API. Concurrent misses for the same key are collapsed through
// singleflight so the engine runs each distinct query once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/arcanalabs/significator/internal/search"
	"github.com/arcanalabs/significator/pkg/config"
	pkgredis "github.com/arcanalabs/significator/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "cardsearch:"

// QueryCache caches ranked result lists keyed by query and options.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a QueryCache on top of an established Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached results for the query, if present.
func (c *QueryCache) Get(ctx context.Context, query string, opts search.Options) ([]search.Result, bool) {
	key := buildKey(query, opts)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var results []search.Result
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return results, true
}

// Set stores the results under the query's key with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, query string, opts search.Options, results []search.Result) {
	key := buildKey(query, opts)
	data, err := json.Marshal(results)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns cached results or runs computeFn exactly once
// per key across concurrent callers, caching its output. The boolean
// reports whether the result came from cache.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	opts search.Options,
	computeFn func() []search.Result,
) ([]search.Result, bool) {
	if results, ok := c.Get(ctx, query, opts); ok {
		return results, true
	}
	key := buildKey(query, opts)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if results, ok := c.Get(ctx, query, opts); ok {
			return results, nil
		}
		results := computeFn()
		c.Set(ctx, query, opts, results)
		return results, nil
	})
	return val.([]search.Result), false
}

// Invalidate removes every cached query result, e.g. after an index
// rebuild.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counters.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the normalized query together with every option that
// changes the result set.
func buildKey(query string, opts search.Options) string {
	raw := fmt.Sprintf("%s|limit=%d|fuzzy=%d|syn=%t|ph=%t|boost=%g|suit=%s|type=%s",
		normalizeQuery(query),
		opts.Limit,
		opts.FuzzyThreshold,
		opts.ExpandSynonyms,
		opts.UsePhonetic,
		opts.BoostExactMatch,
		opts.FilterBySuit,
		opts.FilterByType,
	)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
