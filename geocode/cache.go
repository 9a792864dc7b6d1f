package geocode

import "sync"

// Answer is a cached provider outcome for one query.
type Answer struct {
	Found bool
	Point Point
}

// Cache stores provider answers by query. Lookup errors are never cached.
type Cache interface {
	Get(query string) (Answer, bool, error)
	Put(query string, answer Answer) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	answers map[string]Answer
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{answers: make(map[string]Answer)}
}

func (c *MemoryCache) Get(query string) (Answer, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.answers[query]
	return a, ok, nil
}

func (c *MemoryCache) Put(query string, answer Answer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers[query] = answer
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.answers)
}
