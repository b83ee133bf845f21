package backtest

import (
	"context"
	"sync"

	"github.com/aristath/propensity/internal/modules/profile"
)

// Key identifies a cached outcome
type Key struct {
	Fingerprint string
	Category    profile.Category
}

// String returns "<fingerprint>|<category code>"
func (k Key) String() string {
	return k.Fingerprint + "|" + k.Category.Code()
}

// Cache stores outcomes by dataset fingerprint and category.
// Get returns nil and no error on a miss.
type Cache interface {
	Get(ctx context.Context, key Key) (*Outcome, error)
	Put(ctx context.Context, key Key, outcome *Outcome) error
	Purge(ctx context.Context) (int64, error)
	DeleteStale(ctx context.Context, fingerprint string) (int64, error)
}

// MemoryCache is an in-process Cache without expiry
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[Key]*Outcome
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[Key]*Outcome)}
}

// Get returns the cached outcome or nil
func (c *MemoryCache) Get(_ context.Context, key Key) (*Outcome, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[key], nil
}

// Put stores an outcome
func (c *MemoryCache) Put(_ context.Context, key Key, outcome *Outcome) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = outcome
	return nil
}

// Purge removes every entry and returns how many there were
func (c *MemoryCache) Purge(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := int64(len(c.entries))
	c.entries = make(map[Key]*Outcome)
	return n, nil
}

// DeleteStale removes entries computed from any dataset other than fingerprint
func (c *MemoryCache) DeleteStale(_ context.Context, fingerprint string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for k := range c.entries {
		if k.Fingerprint != fingerprint {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of cached outcomes
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
