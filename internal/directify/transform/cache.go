package transform

import "sync"

type cacheEntry struct {
	src string
	out string
}

// Cache remembers the last (input, output) pair per document key. It is safe
// for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry, 64)}
}

// Get returns the cached output for key only if it was produced from exactly src.
func (c *Cache) Get(key, src string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.src != src {
		return "", false
	}
	return e.out, true
}

func (c *Cache) Put(key, src, out string) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{src: src, out: out}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
