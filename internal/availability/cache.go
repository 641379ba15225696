// Package availability decides, best-effort, whether the embed provider
// can play a title, and filters catalog pages down to playable items.
package availability

import (
	"sync"
	"time"

	"marquee/internal/media"
)

// DefaultWindow is how long a decision stays fresh.
const DefaultWindow = 10 * time.Minute

// Clock abstracts time for freshness checks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// CacheKey identifies one availability decision.
type CacheKey struct {
	Kind   media.Kind
	XRefID string
}

// Entry is a cached decision.
type Entry struct {
	Available bool
	CheckedAt time.Time
}

// Cache stores availability decisions shared by every loader in the process.
// Entries older than the window read as absent; nothing else evicts them.
type Cache struct {
	mu      sync.RWMutex
	entries map[CacheKey]Entry
	window  time.Duration
	clock   Clock
}

// NewCache creates a cache. A nil clock uses the system clock; a
// non-positive window uses DefaultWindow.
func NewCache(window time.Duration, clock Clock) *Cache {
	if window <= 0 {
		window = DefaultWindow
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Cache{
		entries: make(map[CacheKey]Entry),
		window:  window,
		clock:   clock,
	}
}

// Get returns a fresh decision for key.
func (c *Cache) Get(key CacheKey) (available, ok bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || c.clock.Now().Sub(e.CheckedAt) >= c.window {
		return false, false
	}
	return e.Available, true
}

// Set records a decision stamped with the current time. Last writer wins.
func (c *Cache) Set(key CacheKey, available bool) {
	c.mu.Lock()
	c.entries[key] = Entry{Available: available, CheckedAt: c.clock.Now()}
	c.mu.Unlock()
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Window returns the freshness window.
func (c *Cache) Window() time.Duration {
	return c.window
}
