package testsupport

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"taskmanager/internal/cache"
)

// RecordingCache is an in-memory cache.TaskCache that tracks operations so
// tests can assert on population and invalidation. With FailAll set, every
// operation returns an error, mimicking an unreachable Redis.
type RecordingCache struct {
	mu sync.Mutex

	FailAll bool

	entries           map[string][]byte
	Sets              int
	Deletes           int
	ListInvalidations int
}

var errCacheDown = errors.New("cache unreachable")

func NewRecordingCache() *RecordingCache {
	return &RecordingCache{entries: map[string][]byte{}}
}

func (c *RecordingCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailAll {
		return nil, errCacheDown
	}
	data, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return data, nil
}

func (c *RecordingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailAll {
		return errCacheDown
	}
	c.entries[key] = value
	c.Sets++
	return nil
}

func (c *RecordingCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailAll {
		return errCacheDown
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.Deletes++
	return nil
}

func (c *RecordingCache) InvalidateLists(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailAll {
		return errCacheDown
	}
	for key := range c.entries {
		if strings.HasPrefix(key, "tasks:") {
			delete(c.entries, key)
		}
	}
	c.ListInvalidations++
	return nil
}

func (c *RecordingCache) Ping(ctx context.Context) error {
	if c.FailAll {
		return errCacheDown
	}
	return nil
}

func (c *RecordingCache) Enabled() bool {
	return true
}

// Contains reports whether a key is present.
func (c *RecordingCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Poke overwrites an entry directly, bypassing the service.
func (c *RecordingCache) Poke(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}
