// Package tokencache provides the in-memory per-environment token cache.
//
// One entry per environment id, last-write-wins, no history. The coordinator
// serializes writers per environment key; the cache's own lock only keeps
// cross-environment reads racefree.
package tokencache

import (
	"sync"
	"time"
)

// Entry is a cached acquisition result for one environment.
type Entry struct {
	// AccessToken is the opaque bearer token.
	AccessToken string

	// Expiry is when the access token stops being accepted.
	Expiry time.Time

	// RefreshToken, when present, allows silent renewal after expiry.
	RefreshToken string

	// Account identifies the provider-side account the refresh context
	// belongs to, when the provider reported one.
	Account string
}

// Valid reports whether the entry's access token can still be used at the
// given instant, leaving the safety margin before the hard expiry.
func (e Entry) Valid(now time.Time, margin time.Duration) bool {
	if e.AccessToken == "" || e.Expiry.IsZero() {
		return false
	}
	return now.Before(e.Expiry.Add(-margin))
}

// Cache maps environment ids to their latest token entry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]Entry),
	}
}

// Get returns the entry for the environment id, if any.
func (c *Cache) Get(environmentID string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[environmentID]
	return entry, ok
}

// Set stores the entry for the environment id, replacing any previous one.
func (c *Cache) Set(environmentID string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[environmentID] = entry
}

// Invalidate removes the entry for the environment id, if present.
func (c *Cache) Invalidate(environmentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, environmentID)
}
