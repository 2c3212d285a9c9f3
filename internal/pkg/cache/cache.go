// Package cache is a typed, TTL bound in-process cache with hit/miss counters.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// CacheMetrics tracks cache performance
type CacheMetrics struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// TypedCache stores values of one type under string keys.
type TypedCache[T any] struct {
	items  *gocache.Cache
	name   string
	logger *zap.Logger

	hits, misses, sets atomic.Int64
}

// New creates a cache whose entries live for ttl. Expired entries are swept
// every ttl/2.
func New[T any](ttl time.Duration, name string, logger *zap.Logger) *TypedCache[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypedCache[T]{
		items:  gocache.New(ttl, ttl/2),
		name:   name,
		logger: logger,
	}
}

func (c *TypedCache[T]) Set(key string, value T) {
	c.items.SetDefault(key, value)
	c.sets.Add(1)
	c.logger.Debug("Cache set", zap.String("cache", c.name), zap.String("key", key))
}

func (c *TypedCache[T]) Get(key string) (T, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		c.misses.Add(1)
		c.logger.Debug("Cache miss", zap.String("cache", c.name), zap.String("key", key))
		var zero T
		return zero, false
	}
	c.hits.Add(1)
	c.logger.Debug("Cache hit", zap.String("cache", c.name), zap.String("key", key))
	return v.(T), true
}

func (c *TypedCache[T]) Delete(key string) {
	c.items.Delete(key)
}

func (c *TypedCache[T]) Clear() {
	c.items.Flush()
	c.logger.Info("Cache cleared", zap.String("cache", c.name))
}

func (c *TypedCache[T]) Size() int {
	return c.items.ItemCount()
}

func (c *TypedCache[T]) GetMetrics() CacheMetrics {
	return CacheMetrics{Hits: c.hits.Load(), Misses: c.misses.Load(), Sets: c.sets.Load()}
}

// KeyBuilder hashes an ordered list of named components into a stable key.
type KeyBuilder struct {
	components []map[string]any
}

func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{components: make([]map[string]any, 0, 8)}
}

func (b *KeyBuilder) Add(key string, value any) *KeyBuilder {
	b.components = append(b.components, map[string]any{key: value})
	return b
}

// Build returns the hex SHA-256 of the JSON encoded components.
func (b *KeyBuilder) Build() (string, error) {
	raw, err := json.Marshal(b.components)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache key components: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
