package cache

import (
	"context"
	"time"
)

// Noop is the cache used when no Redis is configured. Reads always miss and
// writes vanish; the service degrades to store-only operation.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (Noop) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (Noop) Delete(ctx context.Context, keys ...string) error {
	return nil
}

func (Noop) InvalidateLists(ctx context.Context) error {
	return nil
}

func (Noop) Ping(ctx context.Context) error {
	return nil
}

func (Noop) Enabled() bool {
	return false
}
