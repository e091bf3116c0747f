// Package query caches resolver results keyed by operation and parameter.
//
// Concurrent fetches of one key share a single call. A stored result is fresh
// for StaleTime after it settles; past that it is still returned by Peek but
// Fetch runs the resolver again. An entry nobody observes is dropped once it
// has been idle for GCTime.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"infinite-experiment/airtrack/internal/common"
	"infinite-experiment/airtrack/internal/constants"
	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/metrics"
)

// ErrDisabled is returned without touching the cache when a key's input is blank.
var ErrDisabled = errors.New("query disabled: governing input is empty")

type Options struct {
	StaleTime time.Duration
	GCTime    time.Duration
	Now       func() time.Time
	Metrics   *metrics.MetricsRegistry
}

// Cached is a stored result as seen by Peek.
type Cached[T any] struct {
	Data      T
	UpdatedAt time.Time
	Fresh     bool
}

type entry struct {
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type entryMeta struct {
	observers int
	idleSince time.Time
}

type Client struct {
	store common.CacheInterface
	opts  Options
	group singleflight.Group

	mu   sync.Mutex
	meta map[string]*entryMeta
}

func NewClient(store common.CacheInterface, opts Options) *Client {
	if opts.StaleTime <= 0 {
		opts.StaleTime = constants.DefaultStaleTime
	}
	if opts.GCTime <= 0 {
		opts.GCTime = constants.DefaultGCTime
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{
		store: store,
		opts:  opts,
		meta:  make(map[string]*entryMeta),
	}
}

func (c *Client) StaleTime() time.Duration {
	return c.opts.StaleTime
}

// Fetch returns the fresh cached value for key or runs fn once for all concurrent
// callers of the same key. A failed fn leaves any previous value in place.
// Abandoning ctx returns early; the shared call keeps running for the others.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if !key.Enabled() {
		return zero, ErrDisabled
	}

	tag := string(key.Tag)
	if e, ok := c.lookup(key); ok && c.isFresh(e) {
		var v T
		if err := json.Unmarshal(e.Data, &v); err == nil {
			c.opts.Metrics.CacheHit(tag)
			return v, nil
		}
	}
	c.opts.Metrics.CacheMiss(tag)

	ch := c.group.DoChan(key.String(), func() (any, error) {
		// A flight that finished after our lookup may already have stored a fresh value.
		if e, ok := c.lookup(key); ok && c.isFresh(e) {
			var v T
			if err := json.Unmarshal(e.Data, &v); err == nil {
				return v, nil
			}
		}

		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if err := c.put(key, v); err != nil {
			logging.Warn("Query cache: failed to store result", "key", key.String(), "error", err.Error())
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.opts.Metrics.CacheCoalesced(tag)
		}
		if res.Err != nil {
			return zero, res.Err
		}
		v, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("query %s: unexpected result type %T", key, res.Val)
		}
		return v, nil
	}
}

// Peek returns the stored value for key, fresh or stale, without fetching.
func Peek[T any](c *Client, key Key) (Cached[T], bool) {
	if !key.Enabled() {
		return Cached[T]{}, false
	}
	e, ok := c.lookup(key)
	if !ok {
		return Cached[T]{}, false
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return Cached[T]{}, false
	}
	return Cached[T]{Data: v, UpdatedAt: e.UpdatedAt, Fresh: c.isFresh(e)}, true
}

// Observe registers a consumer of key. While any consumer is registered the
// entry is never dropped; the retention window starts when the last one releases.
func (c *Client) Observe(key Key) (release func()) {
	if !key.Enabled() {
		return func() {}
	}

	// Drop an already-expired entry before pinning it.
	c.lookup(key)

	k := key.String()
	c.mu.Lock()
	m := c.metaFor(k)
	m.observers++
	c.mu.Unlock()

	if raw, ok := c.store.Get(k); ok {
		c.store.Set(k, raw, 0)
	}

	var once sync.Once
	return func() {
		once.Do(func() { c.release(key) })
	}
}

// Observers returns the number of registered consumers of key.
func (c *Client) Observers(key Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.meta[key.String()]; ok {
		return m.observers
	}
	return 0
}

// Invalidate drops key so the next Fetch misses.
func (c *Client) Invalidate(key Key) {
	c.store.Delete(key.String())
}

func (c *Client) release(key Key) {
	k := key.String()
	now := c.opts.Now()

	c.mu.Lock()
	m := c.metaFor(k)
	if m.observers > 0 {
		m.observers--
	}
	idle := m.observers == 0
	if idle {
		m.idleSince = now
	}
	c.mu.Unlock()

	if !idle {
		return
	}
	if raw, ok := c.store.Get(k); ok {
		c.store.Set(k, raw, c.opts.GCTime)
		return
	}

	c.mu.Lock()
	if m.observers == 0 {
		delete(c.meta, k)
	}
	c.mu.Unlock()
}

func (c *Client) put(key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	now := c.opts.Now()
	raw, err := json.Marshal(entry{Data: data, UpdatedAt: now})
	if err != nil {
		return err
	}

	k := key.String()
	ttl := c.opts.GCTime
	c.mu.Lock()
	m := c.metaFor(k)
	if m.observers > 0 {
		ttl = 0
	} else {
		m.idleSince = now
	}
	c.mu.Unlock()

	c.store.Set(k, raw, ttl)
	return nil
}

// lookup loads key, deleting it if it has outlived the retention window.
func (c *Client) lookup(key Key) (entry, bool) {
	k := key.String()
	raw, ok := c.store.Get(k)
	if !ok {
		return entry{}, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		logging.Warn("Query cache: dropping unreadable entry", "key", k, "error", err.Error())
		c.store.Delete(k)
		return entry{}, false
	}

	if c.isExpired(k, e) {
		c.store.Delete(k)
		c.opts.Metrics.CacheEvicted(string(key.Tag))
		logging.Debug("Query cache: evicted idle entry", "key", k)
		return entry{}, false
	}
	return e, true
}

func (c *Client) isFresh(e entry) bool {
	return c.opts.Now().Sub(e.UpdatedAt) < c.opts.StaleTime
}

func (c *Client) isExpired(k string, e entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idleSince := e.UpdatedAt
	if m, ok := c.meta[k]; ok {
		if m.observers > 0 {
			return false
		}
		if !m.idleSince.IsZero() {
			idleSince = m.idleSince
		}
	}
	if c.opts.Now().Sub(idleSince) < c.opts.GCTime {
		return false
	}
	if m, ok := c.meta[k]; ok && m.observers == 0 {
		delete(c.meta, k)
	}
	return true
}

// metaFor must be called with c.mu held.
func (c *Client) metaFor(k string) *entryMeta {
	m, ok := c.meta[k]
	if !ok {
		m = &entryMeta{}
		c.meta[k] = m
	}
	return m
}
