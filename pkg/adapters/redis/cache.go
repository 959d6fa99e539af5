// Package redis caches compiled machine models, keyed by a digest of the
// source document so identical definitions validate once.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/espalier/pkg/machine"
)

// ErrCacheMiss is returned by Get when the document has no cached model.
var ErrCacheMiss = errors.New("model not cached")

// Cache stores compiled models in Redis.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Cache)

// WithTTL sets the expiration for cached models.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached models.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

// New creates a new Redis cache with options.
func New(address, password string, db int, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	cache := &Cache{
		client: client,
		prefix: "espalier:model:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Key returns the cache key for a source document. Whitespace and field
// order matter: the digest covers the raw bytes, not the parsed value.
func (c *Cache) Key(src []byte) string {
	sum := sha256.Sum256(src)
	return c.prefix + hex.EncodeToString(sum[:])
}

// Put stores the compiled model for a source document.
func (c *Cache) Put(ctx context.Context, src []byte, m *machine.StateMachine) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	if err := c.client.Set(ctx, c.Key(src), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Get retrieves the cached model for a source document.
func (c *Cache) Get(ctx context.Context, src []byte) (*machine.StateMachine, error) {
	val, err := c.client.Get(ctx, c.Key(src)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var m machine.StateMachine
	if err := json.Unmarshal([]byte(val), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}

	return &m, nil
}

// Forget drops the cached model for a source document.
func (c *Cache) Forget(ctx context.Context, src []byte) error {
	return c.client.Del(ctx, c.Key(src)).Err()
}

// Close closes the redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
