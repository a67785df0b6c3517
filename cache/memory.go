package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache is the bounded in-process L1 tier. Entries are evicted
// least-recently-used when capacity is exceeded and expire individually by
// TTL. Expired entries are removed lazily on read; an optional background
// sweeper purges them proactively but is not required for correctness.
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List // front = most recently used
	entries    map[string]*list.Element
	usageBytes int64

	hits   atomic.Uint64
	misses atomic.Uint64

	sweepStop chan struct{}
	sweepOnce sync.Once
}

type memEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates an L1 cache holding at most maxEntries entries.
// maxEntries <= 0 disables the tier: every Set is a no-op.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		maxEntries: maxEntries,
		ll:         list.New(),
		entries:    make(map[string]*list.Element),
		sweepStop:  make(chan struct{}),
	}
}

// Get retrieves a value and refreshes its recency. Returns (nil, false) on
// miss or expiry; an expired entry is removed on the way out.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	el, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}

	ent := el.Value.(*memEntry)
	if time.Now().After(ent.expiresAt) {
		c.removeElement(el)
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}

	c.ll.MoveToFront(el)
	value := ent.value
	c.mu.Unlock()

	c.hits.Add(1)
	return value, true
}

// Set stores a value with the given TTL. ttl <= 0 means no caching. When
// an insert exceeds capacity, exactly one entry - the least recently
// used - is evicted.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 || c.maxEntries <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*memEntry)
		c.usageBytes += int64(len(value)) - int64(len(ent.value))
		ent.value = value
		ent.expiresAt = time.Now().Add(ttl)
		c.ll.MoveToFront(el)
		return nil
	}

	ent := &memEntry{key: key, value: value, expiresAt: time.Now().Add(ttl)}
	c.entries[key] = c.ll.PushFront(ent)
	c.usageBytes += int64(len(key)) + int64(len(value))

	if c.ll.Len() > c.maxEntries {
		if back := c.ll.Back(); back != nil {
			c.removeElement(back)
		}
	}
	return nil
}

// Delete removes a value. Idempotent - no error on miss.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.remove(key)
	return nil
}

// remove deletes key and reports whether it was present.
func (c *MemoryCache) remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeElement(el)
	return true
}

// removeElement must be called with c.mu held.
func (c *MemoryCache) removeElement(el *list.Element) {
	ent := el.Value.(*memEntry)
	c.ll.Remove(el)
	delete(c.entries, ent.key)
	c.usageBytes -= int64(len(ent.key)) + int64(len(ent.value))
}

// Len returns the current number of entries, including any not yet swept.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// MemoryUsage approximates resident bytes as the sum of key and value
// lengths.
func (c *MemoryCache) MemoryUsage() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usageBytes
}

// Hits returns the number of cache hits served.
func (c *MemoryCache) Hits() uint64 { return c.hits.Load() }

// Misses returns the number of misses, including expired reads.
func (c *MemoryCache) Misses() uint64 { return c.misses.Load() }

// Keys returns a snapshot of the current keys.
func (c *MemoryCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// DeleteMatch removes every entry whose key matches the glob pattern and
// returns the removed keys. Matching runs on a key snapshot so the lock is
// never held across the whole scan; concurrent traffic on non-matching
// keys is not serialized behind it.
func (c *MemoryCache) DeleteMatch(pattern string) []string {
	var removed []string
	for _, key := range c.Keys() {
		if !globMatch(pattern, key) {
			continue
		}
		if c.remove(key) {
			removed = append(removed, key)
		}
	}
	return removed
}

// StartSweeper purges expired entries every interval until Close. It is
// optional: lazy expiration on Get keeps results correct without it.
func (c *MemoryCache) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.sweepStop:
				return
			}
		}
	}()
}

func (c *MemoryCache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*memEntry).expiresAt) {
			c.removeElement(el)
		}
		el = prev
	}
}

// Close stops the background sweeper, if running.
func (c *MemoryCache) Close() {
	c.sweepOnce.Do(func() { close(c.sweepStop) })
}
