// Package flight implements the per-session single-flight request cache:
// at most one generation task runs per variant identity, all concurrent
// callers share that task's outcome, and completed outcomes (including
// failures) stay cached for the rest of the session. The durable on-disk
// cache survives across sessions; this one never does.
package flight

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vk/imagesetgo/internal/metrics"
)

// outcome is a completed task's terminal state.
type outcome[V any] struct {
	val V
	err error
}

// Cache deduplicates generation work by identity. The zero value is not
// usable; construct with New. Safe for concurrent use.
type Cache[V any] struct {
	sf   singleflight.Group
	mu   sync.RWMutex
	done map[string]outcome[V]
}

// New creates an empty request cache scoped to one build/serve session.
func New[V any]() *Cache[V] {
	return &Cache[V]{done: make(map[string]outcome[V])}
}

// GetOrStart returns the outcome for key, invoking start at most once per
// session. Concurrent callers for the same key join the in-flight task;
// later callers observe the completed outcome without re-invoking start.
// A failed task's error is terminal for the key: there is no retry within
// the session.
//
// The context passed to start belongs to the first caller. There is no
// cancellation: once started, a task runs to completion or failure even if
// that caller goes away.
func (c *Cache[V]) GetOrStart(ctx context.Context, key string, start func(context.Context) (V, error)) (V, error) {
	if o, ok := c.completed(key); ok {
		metrics.RequestCacheHits.Inc()
		return o.val, o.err
	}

	v, err, shared := c.sf.Do(key, func() (any, error) {
		// A racing caller may have completed the task between the fast
		// path and acquiring the flight slot.
		if o, ok := c.completed(key); ok {
			return o.val, o.err
		}
		metrics.RequestCacheMisses.Inc()

		val, err := start(ctx)
		c.mu.Lock()
		c.done[key] = outcome[V]{val: val, err: err}
		c.mu.Unlock()
		return val, err
	})
	if shared {
		metrics.RequestCacheShares.Inc()
	}
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Peek returns the completed value for key without starting anything.
func (c *Cache[V]) Peek(key string) (V, bool) {
	o, ok := c.completed(key)
	if !ok || o.err != nil {
		var zero V
		return zero, false
	}
	return o.val, true
}

// Len reports how many tasks have completed.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.done)
}

func (c *Cache[V]) completed(key string) (outcome[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.done[key]
	return o, ok
}
