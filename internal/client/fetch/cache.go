// Package fetch is the console's query cache: entries go stale after a fixed
// time, failed loads are retried once, and concurrent loads of the same key
// share one request.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/storesight/console/internal/client/apiclient"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStaleTime   = 30 * time.Second
	DefaultRetries     = 1
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultLoadTimeout = 30 * time.Second
)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache stores query results by key. Mutations should call Invalidate or
// Set on the keys they affect.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group

	staleTime  time.Duration
	retries    int
	retryDelay time.Duration
	timeout    time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// Option customizes a Cache.
type Option func(*Cache)

func WithStaleTime(d time.Duration) Option { return func(c *Cache) { c.staleTime = d } }
func WithRetries(n int) Option             { return func(c *Cache) { c.retries = n } }
func WithRetryDelay(d time.Duration) Option {
	return func(c *Cache) { c.retryDelay = d }
}

// WithLoadTimeout bounds a shared load, which outlives the callers waiting on it.
func WithLoadTimeout(d time.Duration) Option { return func(c *Cache) { c.timeout = d } }

func WithLogger(l *zap.Logger) Option { return func(c *Cache) { c.logger = l } }

// withClock is used by tests.
func withClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    map[string]entry{},
		staleTime:  DefaultStaleTime,
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		timeout:    DefaultLoadTimeout,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query returns the cached value for key if it is still fresh, otherwise it
// loads it with fn. A failed load is not cached.
//
// Concurrent callers of the same key share one load. The load runs detached
// from every caller's cancellation; a caller whose ctx ends stops waiting
// without failing the others.
func Query[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.fresh(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, c.timeout)
			defer cancel()
		}
		return c.load(lctx, key, func(ctx context.Context) (any, error) { return fn(ctx) })
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("joined in-flight query", zap.String("key", key))
		}
		if res.Err != nil {
			return zero, res.Err
		}
		t, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("query %q: loaded %T, want %T", key, res.Val, zero)
		}
		return t, nil
	}
}

func (c *Cache) load(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	var (
		v   any
		err error
	)
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying query", zap.String("key", key), zap.Int("attempt", attempt), zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
		v, err = fn(ctx)
		if err == nil {
			c.Set(key, v)
			return v, nil
		}
		if !retryable(err) {
			break
		}
	}
	return nil, err
}

// retryable reports whether a failure may succeed on a second try.
// Validation and permission failures will not.
func retryable(err error) bool {
	switch apiclient.KindOf(err) {
	case apiclient.KindValidation, apiclient.KindPermission, apiclient.KindPlanLimit:
		return false
	}
	return true
}

func (c *Cache) fresh(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.staleTime {
		return nil, false
	}
	return e.value, true
}

// Set stores v under key, e.g. the response of a mutation.
func (c *Cache) Set(key string, v any) {
	c.mu.Lock()
	c.entries[key] = entry{value: v, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate drops keys so the next Query refetches.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
}

// InvalidatePrefix drops every key starting with prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
