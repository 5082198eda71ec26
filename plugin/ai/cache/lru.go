package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

type lruEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
	elem      *list.Element
}

// LRUCache is a bounded map with per-entry expiry. The least recently read
// or written entry is evicted first once capacity is reached.
type LRUCache struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration
	entries    map[string]*lruEntry
	recency    *list.List // front = most recent
	now        func() time.Time
}

// NewLRUCache creates an LRU holding at most capacity entries.
func NewLRUCache(capacity int, defaultTTL time.Duration) *LRUCache {
	return &LRUCache{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*lruEntry, capacity),
		recency:    list.New(),
		now:        time.Now,
	}
}

// Get returns a live entry and marks it most recently used.
// An expired entry is dropped on read.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.drop(e)
		return nil, false
	}
	c.recency.MoveToFront(e.elem)
	return e.value, true
}

// Set writes key, replacing any previous value and refreshing its expiry.
func (c *LRUCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.recency.MoveToFront(e.elem)
		return
	}

	for len(c.entries) >= c.capacity {
		back := c.recency.Back()
		if back == nil {
			break
		}
		c.drop(back.Value.(*lruEntry))
	}

	e := &lruEntry{key: key, value: value, expiresAt: expiresAt}
	e.elem = c.recency.PushFront(e)
	c.entries[key] = e
}

// Delete removes key and reports whether it was present.
func (c *LRUCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok {
		c.drop(e)
	}
	return ok
}

// Invalidate removes keys matching pattern and returns how many were removed.
func (c *LRUCache) Invalidate(pattern string) int {
	prefix, wildcard := strings.CutSuffix(pattern, "*")
	if !wildcard {
		if c.Delete(pattern) {
			return 1
		}
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.drop(e)
			n++
		}
	}
	return n
}

// Expire drops every entry past its deadline and returns the count.
func (c *LRUCache) Expire() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for _, e := range c.entries {
		if now.After(e.expiresAt) {
			c.drop(e)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired or not.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// drop must be called with mu held.
func (c *LRUCache) drop(e *lruEntry) {
	c.recency.Remove(e.elem)
	delete(c.entries, e.key)
}
