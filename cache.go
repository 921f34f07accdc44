package gitpress

import (
	"sync"
	"time"
	"unicode/utf8"
)

// snapshotMaxString bounds string values in the debug snapshot.
const snapshotMaxString = 100

type cacheEntry struct {
	value     any
	timestamp time.Time
}

// Cache is the process-wide store of derived content values, keyed by
// string. It has no TTL and no size bound: entries live until an explicit
// Invalidate or process restart. When disabled it is fully transparent,
// nothing is stored or consulted and every Get recomputes.
type Cache struct {
	mu          sync.RWMutex
	enabled     bool
	initialized bool
	entries     map[string]cacheEntry
}

// NewCache creates a Cache. A disabled cache never memoizes.
func NewCache(enabled bool) *Cache {
	return &Cache{
		enabled: enabled,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached value for key, computing and storing it on a miss.
// The miss path runs compute under the write lock, so concurrent misses on
// the same key serialize into a single fetch instead of racing. A compute
// error is returned without caching anything.
func (c *Cache) Get(key string, compute func() (any, error)) (any, error) {
	if !c.enabled {
		return compute()
	}

	c.mu.RLock()
	if e, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		return e.value, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.value, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.entries[key] = cacheEntry{value: v, timestamp: time.Now()}
	c.initialized = true
	return v, nil
}

// Invalidate removes the given keys, or every entry when called with none.
// Either way the initialized flag drops back to false: it tracks "populated
// since the last invalidation of any kind" and feeds only the debug endpoint.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		c.entries = make(map[string]cacheEntry)
	} else {
		for _, k := range keys {
			delete(c.entries, k)
		}
	}
	c.initialized = false
}

// Enabled reports whether the cache memoizes at all.
func (c *Cache) Enabled() bool { return c.enabled }

// Initialized reports whether the cache has been populated since the last
// invalidation.
func (c *Cache) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CacheEntryInfo is one entry of the debug snapshot.
type CacheEntryInfo struct {
	Timestamp time.Time `json:"timestamp"`
	Preview   any       `json:"preview"`
}

// Snapshot returns a display copy of the cache contents. Long strings are
// truncated for readability; stored values are never mutated.
func (c *Cache) Snapshot() map[string]CacheEntryInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]CacheEntryInfo, len(c.entries))
	for k, e := range c.entries {
		out[k] = CacheEntryInfo{
			Timestamp: e.timestamp,
			Preview:   preview(e.value),
		}
	}
	return out
}

// preview produces a truncated view of a cached value for the snapshot.
func preview(v any) any {
	switch val := v.(type) {
	case string:
		return truncate(val)
	case Post:
		return previewPost(val)
	case []Post:
		out := make([]Post, len(val))
		for i, p := range val {
			out[i] = previewPost(p)
		}
		return out
	default:
		return val
	}
}

func previewPost(p Post) Post {
	p.Raw = truncate(p.Raw)
	p.Description = truncate(p.Description)
	return p
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= snapshotMaxString {
		return s
	}
	runes := []rune(s)
	return string(runes[:snapshotMaxString]) + "..."
}
