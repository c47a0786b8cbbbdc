package filter

import (
	"container/list"
	"sync"
)

// cacheEntry pairs a key with its cached value inside the recency list
type cacheEntry struct {
	key   string
	value any
}

// lruCache is a fixed-capacity cache that evicts the least recently used
// entry. All operations take the one mutex; lookups mutate recency order,
// so a read lock would not be enough.
type lruCache struct {
	mu      sync.Mutex
	cap     int
	recency *list.List
	entries map[string]*list.Element
}

// newLRUCache creates an empty cache holding at most cap entries
func newLRUCache(cap int) *lruCache {
	return &lruCache{
		cap:     cap,
		recency: list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Get returns the cached value for key and marks it most recently used
func (c *lruCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.recency.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value, true
}

// Put stores value under key, evicting the oldest entry when full
func (c *lruCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.recency.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	c.entries[key] = c.recency.PushFront(&cacheEntry{key: key, value: value})

	if c.recency.Len() > c.cap {
		oldest := c.recency.Back()
		if oldest != nil {
			c.recency.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Clear removes all entries
func (c *lruCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recency.Init()
	c.entries = make(map[string]*list.Element)
}

// Size returns the number of cached entries
func (c *lruCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.recency.Len()
}
