package cache

import (
	"sync"
	"time"
)

// Entry is one cached value and the content hash it was built from
type Entry[T any] struct {
	Value       T
	Hash        string
	Path        string
	CachedAt    time.Time
	LastChecked time.Time
}

// Cache maps file paths to values built from their contents. It is safe
// for concurrent use.
type Cache[T any] struct {
	entries map[string]*Entry[T]
	mu      sync.Mutex
}

// New creates an empty cache
func New[T any]() *Cache[T] {
	return &Cache[T]{entries: make(map[string]*Entry[T])}
}

// Get returns the entry for path regardless of its hash
func (c *Cache[T]) Get(path string) (*Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	return entry, ok
}

// Lookup returns the value for path if it was built from content with the
// given hash.
func (c *Cache[T]) Lookup(path, hash string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok || entry.Hash != hash {
		var zero T
		return zero, false
	}
	entry.LastChecked = time.Now()
	return entry.Value, true
}

// Set stores value for path, replacing any previous entry
func (c *Cache[T]) Set(path, hash string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[path] = &Entry[T]{
		Value:       value,
		Hash:        hash,
		Path:        path,
		CachedAt:    now,
		LastChecked: now,
	}
}

// Invalidate removes an entry from the cache
func (c *Cache[T]) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, path)
}

// InvalidateAll clears the entire cache
func (c *Cache[T]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry[T])
}

// Size returns the number of cached entries
func (c *Cache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Prune removes entries not looked up within maxAge and reports how many
// were dropped.
func (c *Cache[T]) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	pruned := 0
	for path, entry := range c.entries {
		if now.Sub(entry.LastChecked) > maxAge {
			delete(c.entries, path)
			pruned++
		}
	}
	return pruned
}
