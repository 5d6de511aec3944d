// Package cache provides the key-value layer used for cache-aside reads.
// It is a latency optimization only: every caller must treat a failing or
// absent cache as a miss and carry on against the store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskmanager/internal/models"
)

const (
	// TaskTTL bounds staleness of a single cached task.
	TaskTTL = 60 * time.Second
	// ListTTL bounds staleness of a cached list result.
	ListTTL = 30 * time.Second

	listPrefix = "tasks:"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// TaskCache is the capability interface for the cache layer. The Noop
// implementation stands in when no Redis is configured, so call sites never
// branch on whether caching is enabled.
type TaskCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// InvalidateLists drops every cached list variant. O(number of cached
	// list entries), acceptable given the short TTL keeps cardinality low.
	InvalidateLists(ctx context.Context) error
	Ping(ctx context.Context) error
	Enabled() bool
}

// TaskKey returns the cache key for a single task.
func TaskKey(id int) string {
	return fmt.Sprintf("task:%d", id)
}

// ListKey builds a canonical key from the filter signature so equivalent
// list requests share one cache entry.
func ListKey(f models.TaskFilter) string {
	var parts []string
	if f.Completed != nil {
		parts = append(parts, "completed="+strconv.FormatBool(*f.Completed))
	}
	if f.Priority != nil {
		parts = append(parts, "priority="+strconv.Itoa(*f.Priority))
	}
	if f.Search != "" {
		parts = append(parts, "search="+f.Search)
	}
	if len(parts) == 0 {
		return listPrefix + "all"
	}
	return listPrefix + strings.Join(parts, "&")
}
